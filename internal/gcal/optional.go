package gcal

import "encoding/json"

// Optional is a tri-state JSON string field: absent, null, or a value.
// An absent field leaves the remote object untouched; null (or an explicit
// empty string) clears it; a value replaces it.
type Optional struct {
	Set   bool
	Valid bool
	Value string
}

func (o *Optional) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	o.Valid = true
	return json.Unmarshal(b, &o.Value)
}

// Get returns the value to apply and whether the field was supplied at all.
// A null field applies the empty string.
func (o Optional) Get() (string, bool) {
	if !o.Set {
		return "", false
	}
	if !o.Valid {
		return "", true
	}
	return o.Value, true
}
