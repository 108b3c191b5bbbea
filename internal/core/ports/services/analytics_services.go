package services

import (
	"context"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
)

// AnalyticsSvcFacade computes dashboard aggregations over the caller's
// visibility-scoped orders. Managers get the company summary, workers their
// own.
type AnalyticsSvcFacade interface {
	CompanySummary(ctx context.Context, caller *domain.Profile) (*domain.CompanySummary, error)
	WorkerSummary(ctx context.Context, caller *domain.Profile) (*domain.WorkerSummary, error)
}
