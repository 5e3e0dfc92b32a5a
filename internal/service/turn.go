package service

import (
	"context"
	"time"

	"voiceshop/internal/metrics"
	"voiceshop/internal/model"

	"go.uber.org/zap"
)

// TurnService runs one dialog turn: resolve, match, clarify.
type TurnService struct {
	catalog  CatalogSource
	resolver *FilterResolver
	matcher  *ProductMatcher
	policy   *ClarificationPolicy
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewTurnService creates a new turn service
func NewTurnService(
	catalog CatalogSource,
	resolver *FilterResolver,
	matcher *ProductMatcher,
	policy *ClarificationPolicy,
	m *metrics.Metrics,
	logger *zap.Logger,
) *TurnService {
	return &TurnService{
		catalog:  catalog,
		resolver: resolver,
		matcher:  matcher,
		policy:   policy,
		metrics:  m,
		logger:   logger,
	}
}

// ResolveTurn is the core entry point. It always returns a well-formed
// result; a nil catalog is treated as empty.
func (s *TurnService) ResolveTurn(ctx context.Context, text string, dialog *model.DialogContext, catalog []model.Product) *model.TurnResult {
	if catalog == nil {
		catalog = []model.Product{}
	}

	filter := s.resolver.Resolve(ctx, text, dialog)
	matches := s.matcher.Match(catalog, filter)
	decision := s.policy.Decide(filter, matches)

	if s.metrics != nil {
		s.metrics.Turns.WithLabelValues(string(filter.Action)).Inc()
		if decision.NeedsClarification {
			s.metrics.Clarifications.WithLabelValues(decision.PendingSlots[0]).Inc()
		}
	}

	s.logger.Debug("turn resolved",
		zap.String("action", string(filter.Action)),
		zap.Int("catalog_size", len(catalog)),
		zap.Int("matches", len(matches)),
		zap.Bool("clarify", decision.NeedsClarification),
		zap.Strings("pending_slots", decision.PendingSlots),
	)

	return &model.TurnResult{
		Filters:      filter,
		Matches:      matches,
		Clarify:      decision.NeedsClarification,
		Question:     decision.Question,
		PendingSlots: decision.PendingSlots,
		Context: &model.DialogContext{
			LastFilters:  filter,
			PendingSlots: decision.PendingSlots,
		},
	}
}

// HandleUtterance fetches the catalog and resolves the turn described by req.
func (s *TurnService) HandleUtterance(ctx context.Context, req *model.ParseVoiceRequest) *model.TurnResult {
	start := time.Now()
	if req == nil {
		req = &model.ParseVoiceRequest{}
	}

	result := s.ResolveTurn(ctx, req.Text, req.Context, s.Products(ctx))

	if s.metrics != nil {
		s.metrics.TurnDuration.Observe(time.Since(start).Seconds())
	}
	return result
}

// Products returns the current catalog.
func (s *TurnService) Products(ctx context.Context) []model.Product {
	if s.catalog == nil {
		return []model.Product{}
	}
	return s.catalog.Fetch(ctx)
}
