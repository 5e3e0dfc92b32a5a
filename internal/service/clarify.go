package service

import (
	"fmt"
	"strings"

	"voiceshop/internal/model"
	"voiceshop/internal/utils"
)

// Clarification prompts
const (
	QuestionCategoryOrProduct = "What are you shopping for? You can say a category like men's clothing, women's clothing, electronics, or jewelery, or name a product like 'dress' or 'backpack'."
	QuestionPrice             = "What price limit should I use?"
	QuestionNoMatches         = "Here's what I found that might interest you. Let me know if you'd like to add any of these to your cart."
)

var priceQualifiers = []string{"under", "less than", "below"}

type clarificationInput struct {
	filter  *model.Filter
	matches []model.Product
	matched bool
}

type clarificationRule struct {
	slot     string
	applies  func(in clarificationInput) bool
	question func(in clarificationInput) string
}

// ClarificationPolicy decides which single slot, if any, to ask about. It
// holds no state: the same filter and match set always yield the same result.
type ClarificationPolicy struct {
	rules []clarificationRule
}

// NewClarificationPolicy creates the policy with its rules in priority order.
func NewClarificationPolicy() *ClarificationPolicy {
	return &ClarificationPolicy{rules: []clarificationRule{
		{
			slot: model.SlotCategoryOrProduct,
			applies: func(in clarificationInput) bool {
				return isBlank(in.filter.Category) && isBlank(in.filter.Product)
			},
			question: constant(QuestionCategoryOrProduct),
		},
		{
			slot:    model.SlotColor,
			applies: needsColor,
			question: func(in clarificationInput) string {
				return fmt.Sprintf("What color %s would you like?", *in.filter.Product)
			},
		},
		{
			slot: model.SlotPrice,
			applies: func(in clarificationInput) bool {
				return in.filter.Price == nil && mentionsPriceLimit(in.filter.Transcript)
			},
			question: constant(QuestionPrice),
		},
		{
			slot: model.SlotCategoryOrProductOrPrice,
			applies: func(in clarificationInput) bool {
				return in.matched && len(in.matches) == 0
			},
			question: constant(QuestionNoMatches),
		},
	}}
}

// Decide evaluates the rules against f and matches. A nil matches slice
// means matching was not performed, so the empty-result rule cannot fire.
func (p *ClarificationPolicy) Decide(f *model.Filter, matches []model.Product) model.ClarificationResult {
	if f == nil {
		f = &model.Filter{}
	}
	in := clarificationInput{filter: f, matches: matches, matched: matches != nil}

	for _, rule := range p.rules {
		if rule.applies(in) {
			return model.ClarificationResult{
				NeedsClarification: true,
				Question:           rule.question(in),
				PendingSlots:       []string{rule.slot},
			}
		}
	}
	return model.ClarificationResult{PendingSlots: []string{}}
}

func needsColor(in clarificationInput) bool {
	if isBlank(in.filter.Product) || !utils.ColorWorthAsking(strings.ToLower(*in.filter.Product)) {
		return false
	}
	return isBlank(in.filter.Color) || strings.EqualFold(*in.filter.Color, "null")
}

func mentionsPriceLimit(transcript string) bool {
	t := strings.ToLower(transcript)
	for _, q := range priceQualifiers {
		if strings.Contains(t, q) {
			return true
		}
	}
	return false
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func constant(s string) func(clarificationInput) string {
	return func(clarificationInput) string { return s }
}
