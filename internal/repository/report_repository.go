package repository

import (
	"context"
	"errors"
	"fmt"

	"billwise/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var reportColumns = []string{"id", "user_id", "bill", "analysis", "created_at"}

// newestFirst orders by timestamp and breaks ties by insertion sequence.
var newestFirst = []string{"created_at DESC", "seq DESC"}

type ReportRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReportRepository(db *pgxpool.Pool, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the report in a single statement; the seq column is assigned by the database.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := squirrel.Insert("reports").
		Columns(reportColumns...).
		Values(report.ID, report.UserID, report.Bill, report.Analysis, report.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Report, error) {
	query := squirrel.Select(reportColumns...).
		From("reports").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryOne(ctx, query)
}

func (r *ReportRepository) MostRecentByUserID(ctx context.Context, userID uuid.UUID) (*models.Report, error) {
	query := squirrel.Select(reportColumns...).
		From("reports").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy(newestFirst...).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryOne(ctx, query)
}

func (r *ReportRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Report, error) {
	query := squirrel.Select(reportColumns...).
		From("reports").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy(newestFirst...).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer rows.Close()

	reports := []*models.Report{}
	for rows.Next() {
		var report models.Report
		if err := rows.Scan(&report.ID, &report.UserID, &report.Bill, &report.Analysis, &report.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

func (r *ReportRepository) queryOne(ctx context.Context, query squirrel.SelectBuilder) (*models.Report, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var report models.Report
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&report.ID, &report.UserID, &report.Bill, &report.Analysis, &report.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select report: %w", err)
	}

	return &report, nil
}
