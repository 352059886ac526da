package odoo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Many2One is a reference field: Odoo encodes it as [id, "display name"] or false.
type Many2One struct {
	ID    int64
	Name  string
	Valid bool
}

func (m *Many2One) UnmarshalJSON(b []byte) error {
	if isFalsy(b) {
		*m = Many2One{}
		return nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("many2one: %w", err)
	}
	if len(pair) == 0 {
		return fmt.Errorf("many2one: empty reference")
	}

	var id int64
	if err := json.Unmarshal(pair[0], &id); err != nil {
		return fmt.Errorf("many2one id: %w", err)
	}

	var name OptionalString
	if len(pair) > 1 {
		if err := json.Unmarshal(pair[1], &name); err != nil {
			return fmt.Errorf("many2one name: %w", err)
		}
	}

	*m = Many2One{ID: id, Name: name.Value, Valid: true}
	return nil
}

// IDString renders the referenced id as decimal text, or nil for an absent reference.
func (m Many2One) IDString() *string {
	if !m.Valid {
		return nil
	}
	s := strconv.FormatInt(m.ID, 10)
	return &s
}

// OptionalString is a char field: Odoo sends false instead of null for an empty value.
type OptionalString struct {
	Value string
	Valid bool
}

func (s *OptionalString) UnmarshalJSON(b []byte) error {
	if isFalsy(b) {
		*s = OptionalString{}
		return nil
	}

	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("optional string: %w", err)
	}
	*s = OptionalString{Value: v, Valid: true}
	return nil
}

// Ptr returns the value, or nil when absent.
func (s OptionalString) Ptr() *string {
	if !s.Valid {
		return nil
	}
	v := s.Value
	return &v
}

func isFalsy(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("false")) || bytes.Equal(b, []byte("null"))
}

// StockQuant is a stock.quant record.
type StockQuant struct {
	ID               int64           `json:"id"`
	Product          Many2One        `json:"product_id"`
	Location         Many2One        `json:"location_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
}

// Product is a product.product record.
type Product struct {
	ID          int64          `json:"id"`
	DisplayName OptionalString `json:"display_name"`
	Barcode     OptionalString `json:"barcode"`
}

// Location is a stock.location record.
type Location struct {
	ID           int64          `json:"id"`
	CompleteName OptionalString `json:"complete_name"`
}
