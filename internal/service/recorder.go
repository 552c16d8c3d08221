package service

import (
	"context"
	"fmt"
	"time"

	"billwise/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReportRecorder struct {
	reports ReportStore
	now     func() time.Time
	logger  *zap.Logger
}

func NewReportRecorder(reports ReportStore, logger *zap.Logger) *ReportRecorder {
	return &ReportRecorder{
		reports: reports,
		now:     time.Now,
		logger:  logger,
	}
}

// Record stores a new report. Reports are append-only; there is no update path.
func (r *ReportRecorder) Record(ctx context.Context, userID uuid.UUID, bill, analysis string) (*models.Report, error) {
	report := &models.Report{
		ID:        uuid.New(),
		UserID:    userID,
		Bill:      sanitizeUTF8(bill),
		Analysis:  sanitizeUTF8(analysis),
		CreatedAt: r.now().UTC(),
	}

	if err := r.reports.Create(ctx, report); err != nil {
		r.logger.Error("Failed to save report",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	r.logger.Info("Report saved",
		zap.String("report_id", report.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return report, nil
}
