package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iho/budgetledger/internal/domain"
)

var validate = validator.New()

// Validate checks the struct tags of a decoded request.
func Validate(req any) error {
	return validate.Struct(req)
}

// ErrInvalidDate is returned for dates in none of the accepted layouts.
var ErrInvalidDate = errors.New("invalid date")

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01"}

// ParseDate accepts RFC 3339 timestamps, plain dates and year-month values.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// Date is a JSON date that accepts the layouts of ParseDate.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidDate
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// OptionalID tells an absent field apart from an explicit null.
type OptionalID struct {
	Present bool
	Value   *string
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// Update converts the field into a keep, clear or set update.
func (o OptionalID) Update() domain.FieldUpdate[string] {
	switch {
	case !o.Present:
		return domain.Keep[string]()
	case o.Value == nil:
		return domain.Clear[string]()
	default:
		return domain.Set(*o.Value)
	}
}
