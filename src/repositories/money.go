package repositories

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Numeric columns are exchanged as text so that no precision is lost between
// postgres numeric and decimal.Decimal.

func decimalToText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func decimalFromText(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric value %q: %w", *s, err)
	}
	return &d, nil
}
