package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// DefaultCountry is applied when a shipping address omits the country.
const DefaultCountry = "India"

// Address is a shipping destination, stored as a jsonb column.
type Address struct {
	FullName   string  `json:"full_name"`
	Phone      string  `json:"phone"`
	Street     string  `json:"street"`
	Apartment  *string `json:"apartment,omitempty"`
	Landmark   *string `json:"landmark,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

// Normalize trims whitespace and applies the country default.
func (a *Address) Normalize() {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Country == "" {
		a.Country = DefaultCountry
	}
}

// Validate reports the required fields an order shipment cannot do without.
func (a Address) Validate() error {
	if strings.TrimSpace(a.Street) == "" {
		return fmt.Errorf("address: missing street")
	}
	if strings.TrimSpace(a.City) == "" {
		return fmt.Errorf("address: missing city")
	}
	if strings.TrimSpace(a.State) == "" {
		return fmt.Errorf("address: missing state")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		return fmt.Errorf("address: missing postal_code")
	}
	return nil
}

// Value implements driver.Valuer.
func (a Address) Value() (driver.Value, error) {
	a.Normalize()
	return jsonValue(a)
}

// Scan implements sql.Scanner.
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	if err := jsonScan(a, value); err != nil {
		return err
	}
	if strings.TrimSpace(a.Country) == "" {
		a.Country = DefaultCountry
	}
	return nil
}
