package service

import (
	"context"
	"errors"

	"billwise/internal/models"
	"billwise/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ComparisonResolver struct {
	reports ReportStore
	logger  *zap.Logger
}

func NewComparisonResolver(reports ReportStore, logger *zap.Logger) *ComparisonResolver {
	return &ComparisonResolver{
		reports: reports,
		logger:  logger,
	}
}

// ResolvePrevious returns the user's most recent report when a comparison was
// requested, or nil. It never fails: a missing or unreadable history turns the
// request into a standalone analysis.
func (r *ComparisonResolver) ResolvePrevious(ctx context.Context, userID uuid.UUID, compare bool) *models.Report {
	if !compare {
		return nil
	}

	previous, err := r.reports.MostRecentByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		r.logger.Info("No previous report, falling back to standalone analysis",
			zap.String("user_id", userID.String()),
		)
		return nil
	}
	if err != nil {
		r.logger.Warn("Previous report lookup failed, falling back to standalone analysis",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil
	}

	return previous
}
