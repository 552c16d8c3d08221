package service

import (
	"context"

	"billwise/internal/models"

	"github.com/google/uuid"
)

// UserStore is implemented by repository.UserRepository and sqlite.Store.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ReportStore is implemented by repository.ReportRepository and sqlite.Reports.
// Lookups return repository.ErrNotFound when nothing matches; lists are
// ordered newest first.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Report, error)
	MostRecentByUserID(ctx context.Context, userID uuid.UUID) (*models.Report, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Report, error)
}
