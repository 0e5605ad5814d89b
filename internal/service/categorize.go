package service

import (
	"context"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/infra/observability"
	"github.com/stewardapp/steward-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CategorizeService asks the model for fund/type suggestions on
// uncategorized entries. Suggestions are returned to the caller as-is;
// nothing is written on their basis.
type CategorizeService struct {
	store       port.LedgerStore
	categorizer port.Categorizer
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewCategorizeService creates the categorization service.
func NewCategorizeService(store port.LedgerStore, categorizer port.Categorizer, metrics *observability.Metrics, logger *zap.Logger) *CategorizeService {
	return &CategorizeService{
		store:       store,
		categorizer: categorizer,
		metrics:     metrics,
		logger:      logger,
	}
}

// maxCategorizeItems bounds one model call. Larger batches should be split
// by the caller.
const maxCategorizeItems = 50

// Suggest returns one suggestion per resolvable item.
func (s *CategorizeService) Suggest(ctx context.Context, churchID string, items []domain.CategorizeItem) ([]domain.CategorySuggestion, error) {
	ctx, span := tracer.Start(ctx, "CategorizeService.Suggest")
	defer span.End()
	span.SetAttributes(
		attribute.String("church.id", churchID),
		attribute.Int("items.count", len(items)),
	)

	if len(items) == 0 {
		return nil, &domain.ErrValidation{Field: "items", Message: "must not be empty"}
	}
	if len(items) > maxCategorizeItems {
		return nil, &domain.ErrValidation{Field: "items", Message: "too many items in one request"}
	}
	for _, it := range items {
		if it.Reference == "" {
			return nil, &domain.ErrValidation{Field: "reference", Message: "must not be empty"}
		}
		if it.Description == "" {
			return nil, &domain.ErrValidation{Field: "description", Message: "must not be empty"}
		}
	}

	funds, err := s.store.ListFunds(ctx, churchID, true)
	if err != nil {
		return nil, err
	}
	if len(funds) == 0 {
		return nil, &domain.ErrValidation{Field: "church", Message: "church has no active funds"}
	}

	suggestions, err := s.categorizer.Suggest(ctx, funds, items)
	if err != nil {
		s.metrics.IncrCategorizerCall("error")
		s.metrics.IncrExternalError("gemini")
		return nil, err
	}
	s.metrics.IncrCategorizerCall("success")

	s.logger.Info("categorization suggestions produced",
		zap.String("church_id", churchID),
		zap.Int("requested", len(items)),
		zap.Int("suggested", len(suggestions)),
	)
	return suggestions, nil
}
