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

var userColumns = []string{"id", "username", "email", "password", "created_at", "updated_at"}

func (s *Store) Create(ctx context.Context, user *models.User) error {
	query := s.sb.Insert("users").
		Columns(userColumns...).
		Values(user.ID.String(), user.Username, user.Email, user.Password, toUnix(user.CreatedAt), toUnix(user.UpdatedAt))

	if err := s.exec(ctx, query); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, squirrel.Eq{"email": email})
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, squirrel.Eq{"id": id.String()})
}

func (s *Store) getUser(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	sqlStr, args, err := s.sb.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	var (
		user                 models.User
		id                   string
		createdAt, updatedAt int64
	)
	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&id, &user.Username, &user.Email, &user.Password, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	if user.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", id, err)
	}
	user.CreatedAt = fromUnix(createdAt)
	user.UpdatedAt = fromUnix(updatedAt)

	return &user, nil
}
