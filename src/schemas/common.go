package schemas

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date represents a date in YYYY-MM-DD format
type Date struct {
	time.Time
}

// ToTime returns the underlying time.Time value
func (d Date) ToTime() time.Time {
	return d.Time
}

// UnmarshalJSON implements json.Unmarshaler interface
func (d *Date) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("invalid date, expected a YYYY-MM-DD string: %v", err)
	}
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(str))
	if err != nil {
		return fmt.Errorf("invalid date format, expected YYYY-MM-DD: %v", err)
	}
	d.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler interface
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%s"`, d.Format(DateLayout))), nil
}

// DatePtr converts an optional request date to the *time.Time the services take.
func DatePtr(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.ToTime()
	return &t
}

// Amount is money as typed by a person: a JSON string such as "12,50" or a
// plain JSON number. The services do the parsing and rounding.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*a = Amount(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("invalid amount, expected a string or a number")
	}
	*a = Amount(num.String())
	return nil
}

// Page wraps one page of a listing with the total number of matches.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
