package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is the structured shipping/billing address stored as JSONB.
type Address struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Province   string `json:"province" validate:"required"`
	City       string `json:"city" validate:"required"`
	District   string `json:"district" validate:"required"`
	Line       string `json:"line" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
}

// Value marshals Address into a JSON column value.
func (a Address) Value() (driver.Value, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("address: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan decodes a JSON column value into the Address.
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("address: unsupported scan type %T", value)
	}
}

// IsZero reports whether no address fields were provided.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Name) == "" &&
		strings.TrimSpace(a.Phone) == "" &&
		strings.TrimSpace(a.Province) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.District) == "" &&
		strings.TrimSpace(a.Line) == "" &&
		strings.TrimSpace(a.PostalCode) == ""
}
