package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSONRe    = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlCharRe   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON decodes a JSON object out of model output that may be:
// - pure JSON
// - JSON wrapped in a markdown code block
// - JSON with surrounding prose (first '{' through last '}')
// - that same span with trailing commas or unquoted keys
func ParseAIJSON(input string, target interface{}) error {
	input = strings.TrimPrefix(strings.TrimSpace(input), "\ufeff")
	if input == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []string{input, extractFromMarkdown(input)}
	if span := outerBraceSpan(input); span != "" {
		candidates = append(candidates, span, repairJSON(span))
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if err := json.Unmarshal([]byte(c), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// ExtractJSONObject is the lenient form of ParseAIJSON: any failure, including
// a top-level value that is not an object, yields an empty map.
func ExtractJSONObject(input string) map[string]interface{} {
	var out map[string]interface{}
	if err := ParseAIJSON(input, &out); err != nil || out == nil {
		return map[string]interface{}{}
	}
	return out
}

// extractFromMarkdown returns the body of the first fenced code block if it
// looks like a JSON object.
func extractFromMarkdown(input string) string {
	m := fencedJSONRe.FindStringSubmatch(input)
	if len(m) < 2 {
		return ""
	}
	body := strings.TrimSpace(m[1])
	if !strings.HasPrefix(body, "{") {
		return ""
	}
	return body
}

// outerBraceSpan returns input from the first '{' to the last '}'.
func outerBraceSpan(input string) string {
	start := strings.Index(input, "{")
	end := strings.LastIndex(input, "}")
	if start == -1 || end <= start {
		return ""
	}
	return input[start : end+1]
}

// repairJSON fixes the formatting slips models make most often.
func repairJSON(s string) string {
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	return controlCharRe.ReplaceAllString(s, "")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
