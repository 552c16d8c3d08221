package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"billwise/internal/models"
	"billwise/internal/repository"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var reportColumns = []string{"id", "user_id", "bill", "analysis", "created_at"}

// Equal timestamps fall back to insertion order via rowid.
var newestFirst = []string{"created_at DESC", "rowid DESC"}

// Reports exposes the report half of the store under the method names the
// service layer expects, so one Store value can back both interfaces.
type Reports struct {
	*Store
}

func (s *Store) Reports() Reports {
	return Reports{s}
}

func (r Reports) Create(ctx context.Context, report *models.Report) error {
	query := r.sb.Insert("reports").
		Columns(reportColumns...).
		Values(report.ID.String(), report.UserID.String(), report.Bill, report.Analysis, toUnix(report.CreatedAt))

	if err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r Reports) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Report, error) {
	query := r.sb.Select(reportColumns...).
		From("reports").
		Where(squirrel.Eq{"id": id.String(), "user_id": userID.String()})

	return r.queryOne(ctx, query)
}

func (r Reports) MostRecentByUserID(ctx context.Context, userID uuid.UUID) (*models.Report, error) {
	query := r.sb.Select(reportColumns...).
		From("reports").
		Where(squirrel.Eq{"user_id": userID.String()}).
		OrderBy(newestFirst...).
		Limit(1)

	return r.queryOne(ctx, query)
}

func (r Reports) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Report, error) {
	sqlStr, args, err := r.sb.Select(reportColumns...).
		From("reports").
		Where(squirrel.Eq{"user_id": userID.String()}).
		OrderBy(newestFirst...).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer rows.Close()

	reports := []*models.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

func (r Reports) queryOne(ctx context.Context, query squirrel.SelectBuilder) (*models.Report, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	report, err := scanReport(r.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return report, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*models.Report, error) {
	var (
		report        models.Report
		id, userID    string
		createdAtNano int64
	)
	if err := row.Scan(&id, &userID, &report.Bill, &report.Analysis, &createdAtNano); err != nil {
		return nil, err
	}

	var err error
	if report.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("corrupt report id %q: %w", id, err)
	}
	if report.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("corrupt report user id %q: %w", userID, err)
	}
	report.CreatedAt = fromUnix(createdAtNano)

	return &report, nil
}
