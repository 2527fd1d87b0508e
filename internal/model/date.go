package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage layout for calendar dates
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day component.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in t's location
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// AddDays returns the date n days later (earlier for negative n)
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before o
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// Equal compares calendar dates only
func (d Date) Equal(o Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := o.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string in %s format", DateLayout)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("date must be in %s format", DateLayout)
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner. Postgres DATE columns arrive as time.Time
// from lib/pq, text columns as string or []byte.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}
