package models

import (
	"time"

	"github.com/google/uuid"
)

// Report pairs an analyzed bill with the generated analysis. Reports are
// written once and never updated.
type Report struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Bill      string    `db:"bill"`
	Analysis  string    `db:"analysis"`
	CreatedAt time.Time `db:"created_at"`
}
