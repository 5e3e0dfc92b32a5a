package service

import (
	"context"
	"testing"

	"voiceshop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubParser struct {
	filter model.Filter
}

func (s stubParser) Parse(context.Context, string) model.Filter {
	return s.filter
}

func TestFilterResolver_HeuristicsOnly(t *testing.T) {
	r := NewFilterResolver(nil, true, zap.NewNop())

	tests := []struct {
		text     string
		category *string
		price    *float64
		color    *string
		product  *string
		action   model.Action
	}{
		{"show me men's shoes", strPtr("men's clothing"), nil, nil, strPtr("shoes"), model.ActionFilter},
		{"red dress under 40", nil, floatPtr(40), strPtr("red"), strPtr("dress"), model.ActionFilter},
		{"add the blue backpack", nil, nil, strPtr("blue"), strPtr("backpack"), model.ActionAddToCart},
		{"remove the sneakers for women", strPtr("women's clothing"), nil, nil, strPtr("shoes"), model.ActionRemoveFromCart},
		{"", nil, nil, nil, nil, model.ActionFilter},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := r.Resolve(context.Background(), tt.text, nil)
			require.NotNil(t, f)
			assert.Equal(t, tt.category, f.Category)
			assert.Equal(t, tt.price, f.Price)
			assert.Equal(t, tt.color, f.Color)
			assert.Equal(t, tt.product, f.Product)
			assert.Equal(t, tt.action, f.Action)
			assert.Equal(t, tt.text, f.Transcript)
		})
	}
}

func TestFilterResolver_ParserWins(t *testing.T) {
	parsed := model.Filter{
		Category:   strPtr("electronics"),
		Price:      floatPtr(500),
		Product:    strPtr("notebook"),
		Action:     model.ActionFilter,
		Transcript: "cleaned transcript",
	}
	r := NewFilterResolver(stubParser{filter: parsed}, true, zap.NewNop())

	f := r.Resolve(context.Background(), "add a men's red notebook under 200", nil)

	assert.Equal(t, "electronics", *f.Category)
	assert.Equal(t, 500.0, *f.Price)
	// Heuristics fill only what the parser left out.
	assert.Equal(t, "red", *f.Color)
	// Synonyms are applied to parser output too.
	assert.Equal(t, "laptop", *f.Product)
	assert.Equal(t, model.ActionFilter, f.Action)
	assert.Equal(t, "cleaned transcript", f.Transcript)
}

func TestFilterResolver_CategoryStaysInVocabulary(t *testing.T) {
	r := NewFilterResolver(nil, false, zap.NewNop())
	inputs := []string{"men", "for the ladies", "a gift for a guy", "women's jewelry", "laptop"}
	for _, text := range inputs {
		f := r.Resolve(context.Background(), text, nil)
		if f.Category != nil {
			assert.Contains(t, []string{"men's clothing", "women's clothing", "electronics", "jewelery"}, *f.Category, text)
		}
	}
}

func TestFilterResolver_CarryOver(t *testing.T) {
	r := NewFilterResolver(nil, true, zap.NewNop())
	ctx := context.Background()

	previous := &model.Filter{
		Category:   strPtr("men's clothing"),
		Product:    strPtr("shoes"),
		Action:     model.ActionFilter,
		Transcript: "show me men's shoes",
	}

	t.Run("color answer keeps previous filters", func(t *testing.T) {
		dialog := &model.DialogContext{LastFilters: previous, PendingSlots: []string{model.SlotColor}}
		f := r.Resolve(ctx, "red", dialog)

		assert.Equal(t, "men's clothing", *f.Category)
		assert.Equal(t, "shoes", *f.Product)
		assert.Equal(t, "red", *f.Color)
		assert.Equal(t, "red", f.Transcript)
		// The caller's context is not mutated.
		assert.Nil(t, previous.Color)
	})

	t.Run("price answer", func(t *testing.T) {
		dialog := &model.DialogContext{LastFilters: previous, PendingSlots: []string{model.SlotPrice}}
		f := r.Resolve(ctx, "50 dollars", dialog)

		assert.Equal(t, "shoes", *f.Product)
		assert.Equal(t, 50.0, *f.Price)
	})

	t.Run("category or product answer overlays the new query", func(t *testing.T) {
		dialog := &model.DialogContext{LastFilters: &model.Filter{Price: floatPtr(30), Transcript: "under 30"}, PendingSlots: []string{model.SlotCategoryOrProduct}}
		f := r.Resolve(ctx, "a dress", dialog)

		assert.Equal(t, "dress", *f.Product)
		assert.Equal(t, 30.0, *f.Price)
	})

	t.Run("utterance that does not answer the slot is a fresh query", func(t *testing.T) {
		dialog := &model.DialogContext{LastFilters: previous, PendingSlots: []string{model.SlotColor}}
		f := r.Resolve(ctx, "a laptop", dialog)

		assert.Nil(t, f.Category)
		assert.Equal(t, "laptop", *f.Product)
	})

	t.Run("color answer naming a new product is a fresh query", func(t *testing.T) {
		dialog := &model.DialogContext{LastFilters: previous, PendingSlots: []string{model.SlotColor}}
		f := r.Resolve(ctx, "actually show me a blue laptop under 500", dialog)

		assert.Nil(t, f.Category)
		require.NotNil(t, f.Product)
		assert.Equal(t, "laptop", *f.Product)
		require.NotNil(t, f.Color)
		assert.Equal(t, "blue", *f.Color)
		require.NotNil(t, f.Price)
		assert.Equal(t, 500.0, *f.Price)
	})

	t.Run("color answer naming a new category is a fresh query", func(t *testing.T) {
		dialog := &model.DialogContext{LastFilters: previous, PendingSlots: []string{model.SlotColor}}
		f := r.Resolve(ctx, "red for women", dialog)

		require.NotNil(t, f.Category)
		assert.Equal(t, "women's clothing", *f.Category)
		assert.Equal(t, "red", *f.Color)
	})

	t.Run("color answer fills fields the previous filters lacked", func(t *testing.T) {
		dialog := &model.DialogContext{LastFilters: previous, PendingSlots: []string{model.SlotColor}}
		f := r.Resolve(ctx, "red ones under 80", dialog)

		assert.Equal(t, "men's clothing", *f.Category)
		assert.Equal(t, "shoes", *f.Product)
		assert.Equal(t, "red", *f.Color)
		require.NotNil(t, f.Price)
		assert.Equal(t, 80.0, *f.Price)
	})

	t.Run("color answer with a different price is a fresh query", func(t *testing.T) {
		priced := previous.Clone()
		priced.Price = floatPtr(60)
		dialog := &model.DialogContext{LastFilters: priced, PendingSlots: []string{model.SlotColor}}
		f := r.Resolve(ctx, "red under 20", dialog)

		assert.Nil(t, f.Category)
		assert.Equal(t, 20.0, *f.Price)
	})

	t.Run("price answer naming a new product is a fresh query", func(t *testing.T) {
		dialog := &model.DialogContext{LastFilters: previous, PendingSlots: []string{model.SlotPrice}}
		f := r.Resolve(ctx, "boots under 80", dialog)

		assert.Nil(t, f.Category)
		assert.Equal(t, "boots", *f.Product)
		assert.Equal(t, 80.0, *f.Price)
	})

	t.Run("parser product counts as stated", func(t *testing.T) {
		parsed := NewFilterResolver(stubParser{filter: model.Filter{Product: strPtr("watch")}}, true, zap.NewNop())
		dialog := &model.DialogContext{LastFilters: previous, PendingSlots: []string{model.SlotColor}}
		f := parsed.Resolve(ctx, "gold", dialog)

		assert.Nil(t, f.Category)
		assert.Equal(t, "watch", *f.Product)
		assert.Equal(t, "gold", *f.Color)
	})

	t.Run("no-match slot never carries over", func(t *testing.T) {
		dialog := &model.DialogContext{LastFilters: previous, PendingSlots: []string{model.SlotCategoryOrProductOrPrice}}
		f := r.Resolve(ctx, "red", dialog)

		assert.Nil(t, f.Category)
		assert.Equal(t, "red", *f.Color)
	})

	t.Run("disabled", func(t *testing.T) {
		plain := NewFilterResolver(nil, false, zap.NewNop())
		dialog := &model.DialogContext{LastFilters: previous, PendingSlots: []string{model.SlotColor}}
		f := plain.Resolve(ctx, "red", dialog)

		assert.Nil(t, f.Category)
		assert.Equal(t, "red", *f.Product)
	})
}
