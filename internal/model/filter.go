package model

import (
	"encoding/json"
	"math"
	"strings"

	"voiceshop/internal/utils"
)

// Action is the cart intent of an utterance
type Action string

const (
	ActionAddToCart      Action = utils.ActionAddToCart
	ActionRemoveFromCart Action = utils.ActionRemoveFromCart
	ActionFilter         Action = utils.ActionFilter
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionAddToCart, ActionRemoveFromCart, ActionFilter:
		return true
	}
	return false
}

// Filter is the canonical resolved state of one turn. Nil fields are absent
// and encode as JSON null.
type Filter struct {
	Category   *string  `json:"category"`
	Price      *float64 `json:"price"`
	Color      *string  `json:"color"`
	Product    *string  `json:"product"`
	Action     Action   `json:"action"`
	Transcript string   `json:"transcript"`
}

// Clone returns a deep copy of f.
func (f *Filter) Clone() *Filter {
	if f == nil {
		return &Filter{}
	}
	out := &Filter{Action: f.Action, Transcript: f.Transcript}
	out.Category = cloneString(f.Category)
	out.Color = cloneString(f.Color)
	out.Product = cloneString(f.Product)
	if f.Price != nil {
		p := *f.Price
		out.Price = &p
	}
	return out
}

// UnmarshalJSON decodes leniently: fields of the wrong type or outside their
// vocabulary are dropped, and a value that is not an object decodes as an
// empty Filter.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = nil
	}
	*f = FilterFromMap(raw)
	return nil
}

// FilterFromMap converts an untrusted JSON object into a Filter, applying the
// field invariants: category inside the fixed vocabulary, price a finite
// non-negative number (numeric strings accepted), color lower-cased with grey
// canonicalized, product lower-cased, action one of the known values.
func FilterFromMap(raw map[string]interface{}) Filter {
	var f Filter
	if raw == nil {
		return f
	}

	if s := stringField(raw, "category"); s != "" {
		if c := utils.NormalizeCategory(s); utils.IsCategory(c) {
			f.Category = &c
		}
	}
	f.Price = priceField(raw["price"])
	if s := stringField(raw, "color"); s != "" {
		c := utils.CanonicalColor(s)
		f.Color = &c
	}
	if s := stringField(raw, "product"); s != "" {
		p := strings.ToLower(s)
		f.Product = &p
	}
	if a := Action(stringField(raw, "action")); a.Valid() {
		f.Action = a
	}
	if t, ok := raw["transcript"].(string); ok {
		f.Transcript = t
	}
	return f
}

// stringField returns the trimmed string at key, treating the literal "null"
// and "none" the same as absent.
func stringField(raw map[string]interface{}, key string) string {
	s, ok := raw[key].(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "null", "none":
		return ""
	}
	return s
}

func priceField(v interface{}) *float64 {
	var p float64
	switch t := v.(type) {
	case float64:
		p = t
	case int:
		p = float64(t)
	case string:
		parsed := utils.ParsePriceFromText(t)
		if parsed == nil {
			return nil
		}
		p = *parsed
	default:
		return nil
	}
	if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return nil
	}
	return &p
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
