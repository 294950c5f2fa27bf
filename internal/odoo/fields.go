package odoo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// The backend encodes unset scalar fields as JSON false. The types below
// decode such values to their zero value.

var jsonFalse = []byte("false")

func isEmpty(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || bytes.Equal(data, jsonFalse) || bytes.Equal(data, []byte("null"))
}

// String is a char/selection field.
type String string

// UnmarshalJSON implements json.Unmarshaler.
func (s *String) UnmarshalJSON(data []byte) error {
	if isEmpty(data) {
		*s = ""
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = String(v)
	return nil
}

// Int64 is an integer field or record id.
type Int64 int64

// UnmarshalJSON implements json.Unmarshaler.
func (i *Int64) UnmarshalJSON(data []byte) error {
	if isEmpty(data) {
		*i = 0
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*i = Int64(v)
	return nil
}

// Float is a float/monetary field.
type Float float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	if isEmpty(data) {
		*f = 0
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Many2One is a relational value encoded as [id, "display name"].
type Many2One struct {
	ID   int64
	Name string
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Many2One) UnmarshalJSON(data []byte) error {
	if isEmpty(data) {
		*m = Many2One{}
		return nil
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		var id int64
		if errID := json.Unmarshal(data, &id); errID == nil {
			*m = Many2One{ID: id}
			return nil
		}
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("odoo: many2one expects 2 elements, got %d", len(pair))
	}
	var out Many2One
	if err := json.Unmarshal(pair[0], &out.ID); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[1], &out.Name); err != nil {
		return err
	}
	*m = out
	return nil
}

// DateLayout is the backend wire layout for date fields.
const DateLayout = "2006-01-02"

// Date is a date field.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if isEmpty(data) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return fmt.Errorf("odoo: parse date %q: %w", raw, err)
	}
	*d = Date{Time: t}
	return nil
}

// Truthy reports whether a raw result is a truthy backend value. Anything
// that is not literally true, a non-zero number or a non-empty string or
// collection counts as false.
func Truthy(raw json.RawMessage) bool {
	if isEmpty(raw) {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	}
	return false
}
