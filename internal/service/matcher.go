package service

import (
	"sort"
	"strings"

	"voiceshop/internal/model"
	"voiceshop/internal/utils"
)

// ProductMatcher applies a resolved Filter to a catalog. It has no weights:
// hard filters on category, price and product, a soft filter on color, and a
// price-then-title ordering.
type ProductMatcher struct{}

// NewProductMatcher creates a new matcher
func NewProductMatcher() *ProductMatcher {
	return &ProductMatcher{}
}

// Match returns the products satisfying f, sorted ascending by price then
// title. The result is never nil and products is not modified.
func (m *ProductMatcher) Match(products []model.Product, f *model.Filter) []model.Product {
	results := make([]model.Product, 0, len(products))
	results = append(results, products...)
	if f == nil {
		sortProducts(results)
		return results
	}

	if f.Category != nil {
		if cat := utils.NormalizeCategory(*f.Category); cat != "" {
			results = keep(results, func(p model.Product) bool {
				return strings.Contains(strings.ToLower(p.Category), cat)
			})
		}
	}

	if f.Price != nil {
		ceiling := *f.Price
		results = keep(results, func(p model.Product) bool {
			return p.Price <= ceiling
		})
	}

	if f.Product != nil {
		if kw := strings.ToLower(strings.TrimSpace(*f.Product)); kw != "" {
			results = keep(results, func(p model.Product) bool {
				return mentions(p, kw)
			})
		}
	}

	// Color only narrows the set when something survives it.
	if f.Color != nil {
		if color := strings.ToLower(strings.TrimSpace(*f.Color)); color != "" {
			colored := keep(results, func(p model.Product) bool {
				return mentions(p, color)
			})
			if len(colored) > 0 {
				results = colored
			}
		}
	}

	sortProducts(results)
	return results
}

func keep(products []model.Product, pred func(model.Product) bool) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func mentions(p model.Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}

func sortProducts(products []model.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Price != products[j].Price {
			return products[i].Price < products[j].Price
		}
		return products[i].Title < products[j].Title
	})
}
