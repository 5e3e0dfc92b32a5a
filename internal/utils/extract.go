package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// Action values produced by ClassifyAction
const (
	ActionAddToCart      = "add_to_cart"
	ActionRemoveFromCart = "remove_from_cart"
	ActionFilter         = "filter"
)

var (
	priceRe    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	nonTokenRe = regexp.MustCompile(`[^a-z0-9\s\-']`)
	colorRes   = compileColorPatterns(knownColors)
)

var (
	menWords   = map[string]bool{"men": true, "man": true, "mens": true, "male": true, "guy": true, "guys": true}
	womenWords = map[string]bool{"women": true, "woman": true, "womens": true, "female": true, "girls": true, "ladies": true}
)

// actionRules are evaluated in order; the first rule with a matching phrase wins.
var actionRules = []struct {
	action  string
	phrases []string
}{
	{ActionAddToCart, []string{"add ", "add to cart", "put in cart", "buy "}},
	{ActionRemoveFromCart, []string{"remove ", "remove from cart", "delete from cart"}},
}

type colorPattern struct {
	name string
	re   *regexp.Regexp
}

func compileColorPatterns(colors []string) []colorPattern {
	out := make([]colorPattern, 0, len(colors))
	for _, c := range colors {
		out = append(out, colorPattern{name: c, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(c) + `\b`)})
	}
	return out
}

// ParsePriceFromText returns the first number in text, commas stripped.
func ParsePriceFromText(text string) *float64 {
	if text == "" {
		return nil
	}
	m := priceRe.FindString(strings.ReplaceAll(text, ",", ""))
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}

// DetectColor returns the canonical form of the first known color that
// appears in text as a whole word.
func DetectColor(text string) *string {
	if text == "" {
		return nil
	}
	t := strings.ToLower(text)
	for _, p := range colorRes {
		if p.re.MatchString(t) {
			c := CanonicalColor(p.name)
			return &c
		}
	}
	return nil
}

// ExtractProductKeyword picks the product keyword of an utterance: the
// synonym-table match of MatchProductSynonym, else the first token that
// survives stopword removal.
func ExtractProductKeyword(text string) *string {
	if p := MatchProductSynonym(text); p != nil {
		return p
	}
	tokens := contentTokens(text)
	if len(tokens) == 0 {
		return nil
	}
	first := tokens[0]
	return &first
}

// MatchProductSynonym returns the canonical form of the first token (or
// multi-word phrase) of text found in the product synonym table.
func MatchProductSynonym(text string) *string {
	tokens := contentTokens(text)
	for i := range tokens {
		for n := maxSynonymWords; n >= 1; n-- {
			if i+n > len(tokens) {
				continue
			}
			if canonical, ok := CanonicalProduct(strings.Join(tokens[i:i+n], " ")); ok {
				return &canonical
			}
		}
	}
	return nil
}

func contentTokens(text string) []string {
	tokens := make([]string, 0)
	for _, w := range tokenize(text) {
		if len(w) > 1 && !IsStopword(w) {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// GuessCategoryFromGenderWords maps gender words to a clothing category.
// Men-words are checked first, so text naming both resolves to men's clothing.
func GuessCategoryFromGenderWords(text string) *string {
	if text == "" {
		return nil
	}
	words := make(map[string]bool)
	for _, w := range tokenize(text) {
		w = strings.TrimSuffix(w, "'s")
		words[strings.ReplaceAll(w, "'", "")] = true
	}
	for w := range menWords {
		if words[w] {
			c := CategoryMen
			return &c
		}
	}
	for w := range womenWords {
		if words[w] {
			c := CategoryWomen
			return &c
		}
	}
	return nil
}

// ClassifyAction detects cart intents. Add-phrases take precedence over
// remove-phrases; everything else is a filter request.
func ClassifyAction(text string) string {
	t := strings.ToLower(text)
	for _, rule := range actionRules {
		for _, p := range rule.phrases {
			if strings.Contains(t, p) {
				return rule.action
			}
		}
	}
	return ActionFilter
}

// tokenize lower-cases text, blanks out punctuation other than hyphen and
// apostrophe, and splits on whitespace.
func tokenize(text string) []string {
	return strings.Fields(nonTokenRe.ReplaceAllString(strings.ToLower(text), " "))
}
