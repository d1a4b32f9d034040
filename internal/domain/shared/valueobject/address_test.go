package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	t.Run("creates address with required fields", func(t *testing.T) {
		addr, err := NewAddress("123 Main St", "Austin", "TX", "78701")
		require.NoError(t, err)
		assert.Equal(t, "123 Main St", addr.Street1())
		assert.Equal(t, "Austin", addr.City())
		assert.Equal(t, "TX", addr.State())
		assert.Equal(t, "78701", addr.PostalCode())
		assert.Equal(t, "US", addr.Country())
	})

	t.Run("applies options", func(t *testing.T) {
		addr, err := NewAddress("500 Elm St", "Dallas", "TX", "75201",
			WithStreet2("Suite 400"), WithCountry("US"))
		require.NoError(t, err)
		assert.Equal(t, "Suite 400", addr.Street2())
	})

	t.Run("normalizes full state names", func(t *testing.T) {
		addr, err := NewAddress("1 Ocean Ave", "Santa Monica", "California", "90401")
		require.NoError(t, err)
		assert.Equal(t, "CA", addr.State())
	})

	t.Run("rejects empty street", func(t *testing.T) {
		_, err := NewAddress("", "Austin", "TX", "78701")
		assert.Error(t, err)
	})

	t.Run("rejects empty city", func(t *testing.T) {
		_, err := NewAddress("123 Main St", "", "TX", "78701")
		assert.Error(t, err)
	})

	t.Run("rejects bad state code", func(t *testing.T) {
		_, err := NewAddress("123 Main St", "Austin", "Texasland", "78701")
		assert.Error(t, err)
	})

	t.Run("rejects empty postal code", func(t *testing.T) {
		_, err := NewAddress("123 Main St", "Austin", "TX", "")
		assert.Error(t, err)
	})
}

func TestAddressFormatting(t *testing.T) {
	addr := MustNewAddress("742 Evergreen Ter", "Springfield", "IL", "62704",
		WithStreet2("Apt 2B"))

	assert.Equal(t, "742 Evergreen Ter Apt 2B, Springfield, IL 62704, US", addr.FullAddress())
	assert.Equal(t, "Springfield, IL 62704", addr.CityStateZip())
	assert.Equal(t, addr.FullAddress(), addr.String())
}

func TestAddressEquality(t *testing.T) {
	a := MustNewAddress("123 Main St", "Austin", "TX", "78701")
	b := MustNewAddress("123 Main St", "Austin", "TX", "78701")
	c := MustNewAddress("456 Oak St", "Austin", "TX", "78702")

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.True(t, a.SameState(c))

	d := MustNewAddress("9 Pine Rd", "Portland", "OR", "97201")
	assert.False(t, a.SameState(d))
}

func TestEmptyAddress(t *testing.T) {
	addr := EmptyAddress()
	assert.True(t, addr.IsEmpty())
	assert.Equal(t, "", addr.FullAddress())
}

func TestAddressJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		addr := MustNewAddress("123 Main St", "Austin", "TX", "78701", WithStreet2("Unit 5"))
		data, err := json.Marshal(addr)
		require.NoError(t, err)

		var decoded Address
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, addr.Equals(decoded))
	})

	t.Run("empty payload yields empty address", func(t *testing.T) {
		var decoded Address
		require.NoError(t, json.Unmarshal([]byte(`{}`), &decoded))
		assert.True(t, decoded.IsEmpty())
	})

	t.Run("invalid payload fails", func(t *testing.T) {
		var decoded Address
		err := json.Unmarshal([]byte(`{"street1":"x","city":"","state":"TX","postalCode":"1"}`), &decoded)
		assert.Error(t, err)
	})
}

func TestAddressScanValue(t *testing.T) {
	t.Run("value stores JSON", func(t *testing.T) {
		addr := MustNewAddress("123 Main St", "Austin", "TX", "78701")
		v, err := addr.Value()
		require.NoError(t, err)
		assert.Contains(t, string(v.([]byte)), "Austin")
	})

	t.Run("empty address stores nil", func(t *testing.T) {
		v, err := EmptyAddress().Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("scan nil yields empty", func(t *testing.T) {
		var addr Address
		require.NoError(t, addr.Scan(nil))
		assert.True(t, addr.IsEmpty())
	})

	t.Run("scan JSON bytes", func(t *testing.T) {
		var addr Address
		err := addr.Scan([]byte(`{"street1":"123 Main St","city":"Austin","state":"TX","postalCode":"78701"}`))
		require.NoError(t, err)
		assert.Equal(t, "Austin", addr.City())
	})

	t.Run("scan unsupported type", func(t *testing.T) {
		var addr Address
		assert.Error(t, addr.Scan(42))
	})
}

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tx", "TX"},
		{"TX", "TX"},
		{"Texas", "TX"},
		{"new york", "NY"},
		{"District of Columbia", "DC"},
		{" ca ", "CA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeState(tt.in), "input %q", tt.in)
	}
}

func TestIsValidUSState(t *testing.T) {
	assert.True(t, IsValidUSState("TX"))
	assert.True(t, IsValidUSState("ca"))
	assert.False(t, IsValidUSState("ZZ"))
	assert.False(t, IsValidUSState(""))
}
