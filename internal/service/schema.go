package service

import (
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// filterSchemaJSON describes the object the utterance parser is asked to
// return. Properties are validated one by one so a single bad field does not
// discard the rest of the answer.
const filterSchemaJSON = `{
	"type": "object",
	"properties": {
		"category":   {"type": ["string", "null"]},
		"price":      {"type": ["number", "string", "null"], "minimum": 0},
		"color":      {"type": ["string", "null"]},
		"product":    {"type": ["string", "null"]},
		"action":     {"enum": ["add_to_cart", "remove_from_cart", "filter", null]},
		"transcript": {"type": ["string", "null"]}
	}
}`

var filterSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(filterSchemaJSON))
	if err != nil {
		panic("invalid filter schema: " + err.Error())
	}
	return s
}()

// sanitizeParsed removes every top-level field of obj that violates the
// filter schema and returns the names of the removed fields, sorted.
func sanitizeParsed(obj map[string]interface{}) []string {
	if len(obj) == 0 {
		return nil
	}
	result, err := filterSchema.Validate(gojsonschema.NewGoLoader(obj))
	if err != nil || result.Valid() {
		return nil
	}

	dropped := make(map[string]bool)
	for _, e := range result.Errors() {
		field := strings.SplitN(e.Field(), ".", 2)[0]
		if _, ok := obj[field]; ok {
			delete(obj, field)
			dropped[field] = true
		}
	}

	out := make([]string, 0, len(dropped))
	for f := range dropped {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
