package types

import "database/sql/driver"

// Customization is free-form personalization attached to a cart line.
// It does not participate in line identity; two lines for the same product
// and size merge even when their customizations differ.
type Customization struct {
	Text  string `json:"text,omitempty"`
	Color string `json:"color,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func (c Customization) IsZero() bool {
	return c == Customization{}
}

// Value implements driver.Valuer.
func (c Customization) Value() (driver.Value, error) {
	return jsonValue(c)
}

// Scan implements sql.Scanner.
func (c *Customization) Scan(value interface{}) error {
	if value == nil {
		*c = Customization{}
		return nil
	}
	return jsonScan(c, value)
}
