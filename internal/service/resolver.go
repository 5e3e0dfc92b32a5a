package service

import (
	"context"

	"voiceshop/internal/model"
	"voiceshop/internal/utils"

	"go.uber.org/zap"
)

// UtteranceParser produces a partial Filter from raw text and never fails.
type UtteranceParser interface {
	Parse(ctx context.Context, text string) model.Filter
}

// FilterResolver merges the probabilistic parse with the deterministic
// heuristics into one canonical Filter.
type FilterResolver struct {
	parser    UtteranceParser
	carryOver bool
	logger    *zap.Logger
}

// NewFilterResolver creates a resolver. With carryOver set, an utterance
// that answers the previous turn's pending slot is merged into last_filters.
func NewFilterResolver(parser UtteranceParser, carryOver bool, logger *zap.Logger) *FilterResolver {
	return &FilterResolver{
		parser:    parser,
		carryOver: carryOver,
		logger:    logger,
	}
}

// Resolve builds the Filter for one turn. Parser fields win; heuristics only
// fill the gaps, in a fixed order.
func (r *FilterResolver) Resolve(ctx context.Context, text string, dialog *model.DialogContext) *model.Filter {
	base := model.Filter{}
	if r.parser != nil {
		base = r.parser.Parse(ctx, text)
	}
	f := &base
	productStated := f.Product != nil

	if f.Transcript == "" {
		f.Transcript = text
	}
	if f.Category == nil {
		f.Category = utils.GuessCategoryFromGenderWords(text)
	}
	if f.Category != nil {
		c := utils.NormalizeCategory(*f.Category)
		f.Category = &c
	}
	if f.Price == nil {
		f.Price = utils.ParsePriceFromText(text)
	}
	if f.Color == nil {
		f.Color = utils.DetectColor(text)
	}
	if f.Product == nil {
		if p := utils.MatchProductSynonym(text); p != nil {
			f.Product = p
			productStated = true
		} else {
			f.Product = utils.ExtractProductKeyword(text)
		}
	}
	if f.Product != nil {
		p, _ := utils.CanonicalProduct(*f.Product)
		f.Product = &p
	}
	if f.Action == "" {
		f.Action = model.Action(utils.ClassifyAction(text))
	}

	if r.carryOver {
		if merged, ok := carryOver(f, productStated, dialog); ok {
			r.logger.Debug("merged pending slot answer into previous filters",
				zap.String("slot", dialog.PendingSlot()))
			return merged
		}
	}
	return f
}

// carryOver treats f as the answer to the pending slot of dialog when f
// resolves that slot. A color or price answer is overlaid on last_filters,
// together with any field last_filters lacked, unless the utterance also
// states a value that differs from last_filters. Such a turn is a new query. An answer to "what are you shopping for" is the new query, so
// every field it resolved is overlaid. productStated is false when f.Product
// is only the first leftover token of the utterance.
func carryOver(f *model.Filter, productStated bool, dialog *model.DialogContext) (*model.Filter, bool) {
	if dialog == nil || dialog.LastFilters == nil {
		return nil, false
	}
	last := dialog.LastFilters
	merged := last.Clone()

	switch dialog.PendingSlot() {
	case model.SlotColor:
		if f.Color == nil {
			return nil, false
		}
		if redirects(f, productStated, last) || conflictsPrice(f.Price, last.Price) {
			return nil, false
		}
		merged.Color = f.Color
		fill(merged, f, productStated)
	case model.SlotPrice:
		if f.Price == nil {
			return nil, false
		}
		if redirects(f, productStated, last) || conflicts(f.Color, last.Color) {
			return nil, false
		}
		merged.Price = f.Price
		fill(merged, f, productStated)
	case model.SlotCategoryOrProduct:
		if f.Category == nil && f.Product == nil {
			return nil, false
		}
		overlay(merged, f)
	default:
		return nil, false
	}

	if merged.Product != nil {
		p, _ := utils.CanonicalProduct(*merged.Product)
		merged.Product = &p
	}
	merged.Action = f.Action
	merged.Transcript = f.Transcript
	return merged, true
}

// conflicts reports whether both values are set and differ.
func conflicts(stated, last *string) bool {
	return stated != nil && last != nil && *stated != *last
}

func conflictsPrice(stated, last *float64) bool {
	return stated != nil && last != nil && *stated != *last
}

// redirects reports whether f names a category or product other than last's.
func redirects(f *model.Filter, productStated bool, last *model.Filter) bool {
	if conflicts(f.Category, last.Category) {
		return true
	}
	return productStated && conflicts(f.Product, last.Product)
}

// fill copies the fields of src that dst lacks. src.Product is copied only
// when the utterance stated it.
func fill(dst, src *model.Filter, productStated bool) {
	if dst.Category == nil {
		dst.Category = src.Category
	}
	if dst.Price == nil {
		dst.Price = src.Price
	}
	if dst.Color == nil {
		dst.Color = src.Color
	}
	if dst.Product == nil && productStated {
		dst.Product = src.Product
	}
}

func overlay(dst, src *model.Filter) {
	if src.Category != nil {
		dst.Category = src.Category
	}
	if src.Price != nil {
		dst.Price = src.Price
	}
	if src.Color != nil {
		dst.Color = src.Color
	}
	if src.Product != nil {
		dst.Product = src.Product
	}
}
