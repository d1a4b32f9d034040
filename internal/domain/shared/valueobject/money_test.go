package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromFloat(t *testing.T) {
	m, err := NewMoneyFromFloat(99.99, CAD)
	require.NoError(t, err)
	assert.Equal(t, CAD, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(99.99)))
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", USD)
		assert.Error(t, err)
	})
}

func TestNewMoneyUSD(t *testing.T) {
	m := NewMoneyUSD(decimal.NewFromFloat(50.00))
	assert.Equal(t, USD, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(50.00)))
}

func TestNewMoneyUSDFromFloat(t *testing.T) {
	m := NewMoneyUSDFromFloat(75.50)
	assert.Equal(t, USD, m.Currency())
	assert.Equal(t, 75.5, m.Float64())
}

func TestNewMoneyUSDFromString(t *testing.T) {
	m, err := NewMoneyUSDFromString("199.99")
	require.NoError(t, err)
	assert.Equal(t, USD, m.Currency())
}

func TestZero(t *testing.T) {
	m := Zero(EUR)
	assert.True(t, m.IsZero())
	assert.Equal(t, EUR, m.Currency())
}

func TestZeroUSD(t *testing.T) {
	m := ZeroUSD()
	assert.True(t, m.IsZero())
	assert.Equal(t, USD, m.Currency())
}

func TestMoneyIsPositiveNegativeZero(t *testing.T) {
	positive := NewMoneyUSDFromFloat(100)
	negative := NewMoneyUSDFromFloat(-100)
	zero := ZeroUSD()

	assert.True(t, positive.IsPositive())
	assert.False(t, positive.IsNegative())
	assert.False(t, positive.IsZero())

	assert.False(t, negative.IsPositive())
	assert.True(t, negative.IsNegative())
	assert.False(t, negative.IsZero())

	assert.False(t, zero.IsPositive())
	assert.False(t, zero.IsNegative())
	assert.True(t, zero.IsZero())
}

func TestMoneyAdd(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		m1 := NewMoneyUSDFromFloat(100.50)
		m2 := NewMoneyUSDFromFloat(50.25)
		result, err := m1.Add(m2)
		require.NoError(t, err)
		assert.True(t, result.Amount().Equal(decimal.NewFromFloat(150.75)))
	})

	t.Run("fails for different currencies", func(t *testing.T) {
		m1, _ := NewMoneyFromFloat(100, USD)
		m2, _ := NewMoneyFromFloat(50, CAD)
		_, err := m1.Add(m2)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")
	})
}

func TestMoneyMustAdd(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		m1 := NewMoneyUSDFromFloat(10)
		m2 := NewMoneyUSDFromFloat(5)
		result := m1.MustAdd(m2)
		assert.Equal(t, 15.0, result.Float64())
	})

	t.Run("panics on currency mismatch", func(t *testing.T) {
		m1, _ := NewMoneyFromFloat(10, USD)
		m2, _ := NewMoneyFromFloat(5, EUR)
		assert.Panics(t, func() {
			m1.MustAdd(m2)
		})
	})
}

func TestMoneySubtract(t *testing.T) {
	t.Run("subtracts same currency", func(t *testing.T) {
		m1 := NewMoneyUSDFromFloat(100)
		m2 := NewMoneyUSDFromFloat(30.50)
		result, err := m1.Subtract(m2)
		require.NoError(t, err)
		assert.True(t, result.Amount().Equal(decimal.NewFromFloat(69.50)))
	})

	t.Run("fails for different currencies", func(t *testing.T) {
		m1, _ := NewMoneyFromFloat(100, USD)
		m2, _ := NewMoneyFromFloat(50, GBP)
		_, err := m1.Subtract(m2)
		assert.Error(t, err)
	})

	t.Run("can produce negative result", func(t *testing.T) {
		m1 := NewMoneyUSDFromFloat(10)
		m2 := NewMoneyUSDFromFloat(25)
		result, err := m1.Subtract(m2)
		require.NoError(t, err)
		assert.True(t, result.IsNegative())
	})
}

func TestMoneyMultiply(t *testing.T) {
	m := NewMoneyUSDFromFloat(89.79)
	result := m.Multiply(decimal.NewFromInt(2))
	assert.True(t, result.Amount().Equal(decimal.NewFromFloat(179.58)))
}

func TestMoneyMultiplyByInt(t *testing.T) {
	m := NewMoneyUSDFromFloat(12.25)
	result := m.MultiplyByInt(4)
	assert.True(t, result.Amount().Equal(decimal.NewFromFloat(49.00)))
}

func TestMoneyNegateAbs(t *testing.T) {
	m := NewMoneyUSDFromFloat(42.42)
	neg := m.Negate()
	assert.True(t, neg.IsNegative())
	assert.True(t, neg.Abs().Equals(m))
}

func TestMoneyRound(t *testing.T) {
	t.Run("rounds half up", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(13.0195)
		assert.Equal(t, "13.02", m.Round(2).StringFixed(2))
	})

	t.Run("tax rounding case", func(t *testing.T) {
		// 179.58 * 0.0725 = 13.01955 -> 13.02
		subtotal := NewMoneyUSDFromFloat(179.58)
		tax := subtotal.Multiply(decimal.NewFromFloat(0.0725)).Round(2)
		assert.Equal(t, "13.02", tax.StringFixed(2))
	})
}

func TestMoneyComparisons(t *testing.T) {
	small := NewMoneyUSDFromFloat(10)
	big := NewMoneyUSDFromFloat(20)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, small.Equals(NewMoneyUSDFromFloat(10)))
	assert.False(t, small.Equals(big))

	other, _ := NewMoneyFromFloat(10, EUR)
	_, err = small.LessThan(other)
	assert.Error(t, err)
}

func TestMoneyString(t *testing.T) {
	m := NewMoneyUSDFromFloat(1234.5)
	assert.Equal(t, "1234.50 USD", m.String())
	assert.Equal(t, "1234.50", m.StringFixed(2))
}

func TestMoneyJSON(t *testing.T) {
	t.Run("marshal", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(99.95)
		data, err := json.Marshal(m)
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":"99.95","currency":"USD"}`, string(data))
	})

	t.Run("unmarshal", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"42.10","currency":"USD"}`), &m)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(42.10)))
	})

	t.Run("unmarshal invalid amount", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"abc","currency":"USD"}`), &m)
		assert.Error(t, err)
	})
}

func TestParseMoneyFromJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := ParseMoneyFromJSON([]byte(`{"amount":"10.00","currency":"USD"}`))
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := ParseMoneyFromJSON([]byte(`{"amount":"10.00","currency":""}`))
		assert.Error(t, err)
	})
}

func TestMoneyScanValue(t *testing.T) {
	t.Run("value returns amount string", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(55.25)
		v, err := m.Value()
		require.NoError(t, err)
		assert.Equal(t, "55.25", v)
	})

	t.Run("scan string", func(t *testing.T) {
		var m Money
		err := m.Scan("123.45")
		require.NoError(t, err)
		assert.Equal(t, DefaultCurrency, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("scan bytes", func(t *testing.T) {
		var m Money
		err := m.Scan([]byte("67.89"))
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(67.89)))
	})

	t.Run("scan nil defaults to zero", func(t *testing.T) {
		var m Money
		err := m.Scan(nil)
		require.NoError(t, err)
		assert.True(t, m.IsZero())
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scan unsupported type", func(t *testing.T) {
		var m Money
		err := m.Scan(true)
		assert.Error(t, err)
	})
}

func TestMoneyAllocate(t *testing.T) {
	t.Run("splits evenly", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(100)
		parts, err := m.Allocate(4)
		require.NoError(t, err)
		require.Len(t, parts, 4)
		for _, p := range parts {
			assert.Equal(t, "25.00", p.StringFixed(2))
		}
	})

	t.Run("distributes remainder cents", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(100)
		parts, err := m.Allocate(3)
		require.NoError(t, err)
		require.Len(t, parts, 3)

		sum := ZeroUSD()
		for _, p := range parts {
			sum = sum.MustAdd(p)
		}
		assert.True(t, sum.Equals(m))
	})

	t.Run("rejects non-positive parts", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(100)
		_, err := m.Allocate(0)
		assert.Error(t, err)
	})
}

func TestMoneyCalculatePercentage(t *testing.T) {
	m := NewMoneyUSDFromFloat(200)
	result := m.CalculatePercentage(decimal.NewFromFloat(7.25))
	assert.Equal(t, "14.50", result.Round(2).StringFixed(2))
}
