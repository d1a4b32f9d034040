package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a value object representing a US-format shipping address
// It is immutable - all operations return new Address instances
type Address struct {
	street1    string
	street2    string
	city       string
	state      string
	postalCode string
	country    string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithStreet2 sets the secondary address line (apartment, suite, unit)
func WithStreet2(street2 string) AddressOption {
	return func(a *Address) {
		a.street2 = strings.TrimSpace(street2)
	}
}

// WithCountry sets the country for the address
func WithCountry(country string) AddressOption {
	return func(a *Address) {
		a.country = strings.TrimSpace(country)
	}
}

// NewAddress creates a new Address with the required fields
// Street, city, state, and postal code are required; street2 is optional
func NewAddress(street1, city, state, postalCode string, opts ...AddressOption) (Address, error) {
	street1 = strings.TrimSpace(street1)
	city = strings.TrimSpace(city)
	state = NormalizeState(state)
	postalCode = strings.TrimSpace(postalCode)

	if err := validateStreet(street1); err != nil {
		return Address{}, err
	}
	if err := validateCity(city); err != nil {
		return Address{}, err
	}
	if err := validateState(state); err != nil {
		return Address{}, err
	}
	if err := validatePostalCode(postalCode); err != nil {
		return Address{}, err
	}

	addr := Address{
		street1:    street1,
		city:       city,
		state:      state,
		postalCode: postalCode,
		country:    "US",
	}

	for _, opt := range opts {
		opt(&addr)
	}

	if addr.country != "" && len(addr.country) > 100 {
		return Address{}, fmt.Errorf("country cannot exceed 100 characters")
	}

	return addr, nil
}

// MustNewAddress creates a new Address, panics on error
func MustNewAddress(street1, city, state, postalCode string, opts ...AddressOption) Address {
	addr, err := NewAddress(street1, city, state, postalCode, opts...)
	if err != nil {
		panic(err)
	}
	return addr
}

// EmptyAddress returns an empty address (for optional address fields)
func EmptyAddress() Address {
	return Address{}
}

// Street1 returns the primary street line
func (a Address) Street1() string {
	return a.street1
}

// Street2 returns the secondary street line
func (a Address) Street2() string {
	return a.street2
}

// City returns the city
func (a Address) City() string {
	return a.city
}

// State returns the two-letter state code
func (a Address) State() string {
	return a.state
}

// PostalCode returns the ZIP code
func (a Address) PostalCode() string {
	return a.postalCode
}

// Country returns the country
func (a Address) Country() string {
	return a.country
}

// IsEmpty returns true if the address is empty (all fields are blank)
func (a Address) IsEmpty() bool {
	return a.street1 == "" && a.city == "" && a.state == "" && a.postalCode == ""
}

// FullAddress returns the complete formatted address string
// Format: Street1 Street2, City, ST ZIP, Country
func (a Address) FullAddress() string {
	if a.IsEmpty() {
		return ""
	}

	street := a.street1
	if a.street2 != "" {
		street += " " + a.street2
	}

	parts := make([]string, 0, 4)
	if street != "" {
		parts = append(parts, street)
	}
	if a.city != "" {
		parts = append(parts, a.city)
	}
	if a.state != "" || a.postalCode != "" {
		parts = append(parts, strings.TrimSpace(a.state+" "+a.postalCode))
	}
	if a.country != "" {
		parts = append(parts, a.country)
	}
	return strings.Join(parts, ", ")
}

// CityStateZip returns the locality line (City, ST ZIP)
func (a Address) CityStateZip() string {
	if a.IsEmpty() {
		return ""
	}
	line := a.city
	tail := strings.TrimSpace(a.state + " " + a.postalCode)
	if tail != "" {
		if line != "" {
			line += ", "
		}
		line += tail
	}
	return line
}

// String returns a string representation of the address
func (a Address) String() string {
	return a.FullAddress()
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a.street1 == other.street1 &&
		a.street2 == other.street2 &&
		a.city == other.city &&
		a.state == other.state &&
		a.postalCode == other.postalCode &&
		a.country == other.country
}

// SameState returns true if both addresses are in the same state
func (a Address) SameState(other Address) bool {
	return a.state == other.state
}

// addressJSON is used for JSON marshaling/unmarshaling
type addressJSON struct {
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Street1:    a.street1,
		Street2:    a.street2,
		City:       a.city,
		State:      a.state,
		PostalCode: a.postalCode,
		Country:    a.country,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Empty addresses are allowed so
// optional address columns deserialize cleanly; non-empty payloads go through
// NewAddress and carry its validation.
func (a *Address) UnmarshalJSON(data []byte) error {
	var v addressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	if v.Street1 == "" && v.City == "" && v.State == "" && v.PostalCode == "" {
		*a = EmptyAddress()
		return nil
	}

	addr, err := NewAddress(v.Street1, v.City, v.State, v.PostalCode,
		WithStreet2(v.Street2), WithCountry(v.Country))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Value implements driver.Valuer for database storage
// Stores as JSON string
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = EmptyAddress()
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*a = EmptyAddress()
		return nil
	}

	return json.Unmarshal(data, a)
}

// Validation functions

func validateStreet(street string) error {
	if street == "" {
		return fmt.Errorf("street cannot be empty")
	}
	if len(street) > 200 {
		return fmt.Errorf("street cannot exceed 200 characters")
	}
	return nil
}

func validateCity(city string) error {
	if city == "" {
		return fmt.Errorf("city cannot be empty")
	}
	if len(city) > 100 {
		return fmt.Errorf("city cannot exceed 100 characters")
	}
	return nil
}

func validateState(state string) error {
	if state == "" {
		return fmt.Errorf("state cannot be empty")
	}
	if len(state) != 2 {
		return fmt.Errorf("state must be a two-letter code")
	}
	return nil
}

func validatePostalCode(postalCode string) error {
	if postalCode == "" {
		return fmt.Errorf("postal code cannot be empty")
	}
	if len(postalCode) > 10 {
		return fmt.Errorf("postal code cannot exceed 10 characters")
	}
	return nil
}

// usStateNames maps full state names to their two-letter codes
var usStateNames = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

// NormalizeState normalizes a state name or code to a two-letter uppercase code
func NormalizeState(state string) string {
	state = strings.TrimSpace(state)
	if len(state) == 2 {
		return strings.ToUpper(state)
	}
	if code, ok := usStateNames[strings.ToLower(state)]; ok {
		return code
	}
	return strings.ToUpper(state)
}

// IsValidUSState checks if the state is a known two-letter US state code
func IsValidUSState(state string) bool {
	state = strings.ToUpper(strings.TrimSpace(state))
	for _, code := range usStateNames {
		if code == state {
			return true
		}
	}
	return false
}
