package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"billwise/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

func TestResolvePrevious(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	withHistory := func() *memoryReports {
		store := &memoryReports{}
		for i, bill := range []string{"jan", "feb"} {
			_ = store.Create(ctx, &models.Report{
				ID: uuid.New(), UserID: userID, Bill: bill, Analysis: "a",
				CreatedAt: base.AddDate(0, i, 0),
			})
		}
		_ = store.Create(ctx, &models.Report{
			ID: uuid.New(), UserID: uuid.New(), Bill: "someone else", Analysis: "a",
			CreatedAt: base.AddDate(1, 0, 0),
		})
		return store
	}

	t.Run("compare off never looks up", func(t *testing.T) {
		store := withHistory()
		r := NewComparisonResolver(store, zaptest.NewLogger(t))

		if got := r.ResolvePrevious(ctx, userID, false); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
		if store.lookups != 0 {
			t.Errorf("expected no lookup, got %d", store.lookups)
		}
	})

	t.Run("compare on returns most recent own report", func(t *testing.T) {
		r := NewComparisonResolver(withHistory(), zaptest.NewLogger(t))

		got := r.ResolvePrevious(ctx, userID, true)
		if got == nil || got.Bill != "feb" {
			t.Fatalf("expected feb report, got %+v", got)
		}
	})

	t.Run("first submission downgrades", func(t *testing.T) {
		r := NewComparisonResolver(&memoryReports{}, zaptest.NewLogger(t))

		if got := r.ResolvePrevious(ctx, userID, true); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("lookup failure downgrades", func(t *testing.T) {
		store := withHistory()
		store.lookupErr = errors.New("connection reset")
		r := NewComparisonResolver(store, zaptest.NewLogger(t))

		if got := r.ResolvePrevious(ctx, userID, true); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}
