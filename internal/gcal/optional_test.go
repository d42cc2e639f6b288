package gcal

import (
	"encoding/json"
	"testing"
)

func TestOptionalTriState(t *testing.T) {
	type payload struct {
		Summary     Optional `json:"summary"`
		Description Optional `json:"description"`
		Start       Optional `json:"start"`
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"summary":"Standup","description":null}`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if v, ok := p.Summary.Get(); !ok || v != "Standup" {
		t.Errorf("Summary.Get() = (%q, %v), want supplied value", v, ok)
	}
	if v, ok := p.Description.Get(); !ok || v != "" {
		t.Errorf("Description.Get() = (%q, %v), want explicit clear", v, ok)
	}
	if _, ok := p.Start.Get(); ok {
		t.Error("Start.Get() reports supplied, want absent")
	}
}

func TestOptionalEmptyStringClears(t *testing.T) {
	var o Optional
	if err := json.Unmarshal([]byte(`""`), &o); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if v, ok := o.Get(); !ok || v != "" {
		t.Errorf("Get() = (%q, %v), want empty string supplied", v, ok)
	}
}
