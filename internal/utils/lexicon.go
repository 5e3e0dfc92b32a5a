package utils

import (
	"strings"
)

// Canonical category vocabulary
const (
	CategoryMen         = "men's clothing"
	CategoryWomen       = "women's clothing"
	CategoryElectronics = "electronics"
	CategoryJewelery    = "jewelery"
)

var categories = map[string]bool{
	CategoryMen:         true,
	CategoryWomen:       true,
	CategoryElectronics: true,
	CategoryJewelery:    true,
}

var categorySynonyms = map[string]string{
	"men":          CategoryMen,
	"mens":         CategoryMen,
	"man":          CategoryMen,
	"men clothing": CategoryMen,
	"men's":        CategoryMen,
	"male":         CategoryMen,

	"women":          CategoryWomen,
	"womens":         CategoryWomen,
	"woman":          CategoryWomen,
	"women clothing": CategoryWomen,
	"women's":        CategoryWomen,
	"female":         CategoryWomen,

	"jewelry":     CategoryJewelery,
	"jewellery":   CategoryJewelery,
	"jewelery":    CategoryJewelery,
	"electronics": CategoryElectronics,
}

// productSynonyms collapses specific nouns to one canonical product keyword.
// Every canonical value maps to itself.
var productSynonyms = map[string]string{
	"shoes": "shoes", "shoe": "shoes", "sneakers": "shoes", "trainers": "shoes", "footwear": "shoes",
	"boots": "boots", "sandals": "sandals", "flip flops": "sandals", "slippers": "sandals",
	"heels": "heels", "pumps": "heels", "stilettos": "heels",
	"dress": "dress", "gown": "dress", "frock": "dress",
	"jacket": "jacket", "jackets": "jacket", "coat": "jacket", "blazer": "jacket",
	"pants": "pants", "trousers": "pants", "slacks": "pants",
	"jeans": "jeans", "denim": "jeans",
	"shirt": "shirt", "shirts": "shirt", "tshirt": "shirt", "t-shirt": "shirt", "tee": "shirt",
	"top": "shirt", "blouse": "shirt", "sweater": "shirt", "hoodie": "shirt",
	"ring": "ring", "necklace": "necklace", "bracelet": "bracelet", "bangle": "bracelet", "anklet": "bracelet",
	"bag": "bag", "purse": "bag", "handbag": "bag", "tote": "bag",
	"backpack": "backpack", "knapsack": "backpack",
	"watch": "watch", "wristwatch": "watch", "timepiece": "watch",
	"electronics": "electronics", "tech": "electronics", "gadget": "electronics", "device": "electronics",
	"laptop": "laptop", "notebook": "laptop", "computer": "laptop",
	"monitor": "monitor", "display": "monitor", "screen": "monitor",
	"mouse": "mouse", "keyboard": "keyboard", "headphones": "headphones", "earbuds": "headphones",
	"accessories": "jewelery", "jewelry": "jewelery", "jewellery": "jewelery", "jewelery": "jewelery",
}

var stopwords = map[string]bool{
	"hi": true, "hello": true, "hey": true, "thanks": true, "thank": true, "please": true, "sorry": true,
	"i": true, "me": true, "my": true, "am": true, "you": true, "we": true, "it": true,
	"really": true, "just": true, "looking": true, "for": true, "some": true, "any": true,
	"the": true, "a": true, "an": true, "that": true, "this": true, "is": true,
	"need": true, "want": true, "show": true, "find": true, "get": true, "can": true,
}

// knownColors is checked in order; the first color found in the text wins.
var knownColors = []string{
	"red", "blue", "green", "black", "white", "yellow", "pink", "purple",
	"brown", "orange", "gray", "grey", "beige", "gold", "silver",
}

// colorWorthAsking holds canonical product keywords only; the resolver has
// already folded synonyms such as "sneakers" or "coat" into them.
var colorWorthAsking = map[string]bool{
	"dress": true, "shirt": true, "jacket": true, "skirt": true,
	"jeans": true, "pants": true,
	"ring": true, "necklace": true, "bracelet": true, "bag": true,
	"shoes": true, "boots": true, "heels": true,
}

// maxSynonymWords is the longest product synonym key measured in words.
var maxSynonymWords = func() int {
	n := 1
	for k := range productSynonyms {
		if w := len(strings.Fields(k)); w > n {
			n = w
		}
	}
	return n
}()

// NormalizeCategory case-folds, trims and synonym-maps a category phrase.
// Unmapped input passes through lower-cased.
func NormalizeCategory(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	if canonical, ok := categorySynonyms[t]; ok {
		return canonical
	}
	return t
}

// IsCategory reports whether c belongs to the canonical vocabulary.
func IsCategory(c string) bool {
	return categories[c]
}

// CanonicalProduct returns the synonym-mapped form of a product keyword and
// whether the keyword was a synonym key.
func CanonicalProduct(keyword string) (string, bool) {
	canonical, ok := productSynonyms[keyword]
	if !ok {
		return keyword, false
	}
	return canonical, true
}

// ProductSynonymKeys returns every key of the product synonym table.
func ProductSynonymKeys() []string {
	keys := make([]string, 0, len(productSynonyms))
	for k := range productSynonyms {
		keys = append(keys, k)
	}
	return keys
}

// IsStopword reports whether token is excluded from keyword extraction.
func IsStopword(token string) bool {
	return stopwords[token]
}

// KnownColors returns a copy of the color vocabulary in match order.
func KnownColors() []string {
	out := make([]string, len(knownColors))
	copy(out, knownColors)
	return out
}

// CanonicalColor lower-cases a color name and folds "gray" into "grey".
func CanonicalColor(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "gray" {
		return "grey"
	}
	return c
}

// ColorWorthAsking reports whether a missing color should be asked for when
// the resolved product is keyword.
func ColorWorthAsking(keyword string) bool {
	return colorWorthAsking[keyword]
}
