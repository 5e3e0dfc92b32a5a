package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"voiceshop/internal/metrics"
	"voiceshop/internal/model"
	"voiceshop/internal/utils"

	"go.uber.org/zap"
)

const parsePromptTemplate = `Parse this shopping utterance into JSON with keys:
category: "men's clothing" | "women's clothing" | "electronics" | "jewelery" if mentioned (map synonyms)
price: number (max price) if present
color: color if present else null
action: "add_to_cart" | "remove_from_cart" | "filter" (default "filter")
product: short keyword/title fragment if present
transcript: echo input
Input: %q
Return ONLY a JSON object.`

// IntentParser is the probabilistic half of filter resolution. It asks the
// completion service for a Filter-shaped object and never fails: any error
// yields an empty Filter.
type IntentParser struct {
	completer Completer
	timeout   time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewIntentParser creates a new intent parser. completer may be nil, in
// which case every Parse returns an empty Filter.
func NewIntentParser(completer Completer, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *IntentParser {
	return &IntentParser{
		completer: completer,
		timeout:   timeout,
		metrics:   m,
		logger:    logger,
	}
}

// BuildPrompt renders the instruction sent to the completion service.
func BuildPrompt(text string) string {
	return fmt.Sprintf(parsePromptTemplate, text)
}

// Parse returns the best-effort structured reading of text.
func (p *IntentParser) Parse(ctx context.Context, text string) model.Filter {
	if strings.TrimSpace(text) == "" {
		p.record(metrics.ParserEmpty)
		return model.Filter{}
	}
	if p.completer == nil || !p.completer.IsEnabled() {
		p.record(metrics.ParserDisabled)
		return model.Filter{}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.completer.Complete(ctx, BuildPrompt(text))
	if err != nil {
		p.logger.Warn("utterance parser unavailable, using heuristics", zap.Error(err))
		p.record(metrics.ParserError)
		return model.Filter{}
	}

	obj := utils.ExtractJSONObject(raw)
	if dropped := sanitizeParsed(obj); len(dropped) > 0 {
		p.logger.Warn("dropped invalid parser fields", zap.Strings("fields", dropped))
	}
	if len(obj) == 0 {
		p.logger.Warn("utterance parser returned no usable object", zap.String("content", truncate(raw, 100)))
		p.record(metrics.ParserEmpty)
		return model.Filter{}
	}

	p.record(metrics.ParserOK)
	return model.FilterFromMap(obj)
}

func (p *IntentParser) record(outcome string) {
	if p.metrics != nil {
		p.metrics.ParserResults.WithLabelValues(outcome).Inc()
	}
}
