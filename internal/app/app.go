// Package app wires storage and the analysis pipeline from configuration.
// Both the API server and the seeding tool start from here.
package app

import (
	"context"
	"fmt"

	"billwise/internal/repository"
	"billwise/internal/repository/sqlite"
	"billwise/internal/service"
	"billwise/pkg/config"
	"billwise/pkg/metrics"
	"billwise/pkg/postgres"

	"go.uber.org/zap"
)

// Storage holds the user and report stores of the configured driver.
type Storage struct {
	Users   service.UserStore
	Reports service.ReportStore
	close   func()
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

func OpenStorage(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*Storage, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Users:   store,
			Reports: store.Reports(),
			close: func() {
				if err := store.Close(); err != nil {
					logger.Warn("Failed to close sqlite store", zap.Error(err))
				}
			},
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Users:   repository.NewUserRepository(pool, logger),
			Reports: repository.NewReportRepository(pool, logger),
			close:   pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// NewAnalysisService assembles extract -> resolve -> generate -> record on
// top of the given storage and generation backend.
func NewAnalysisService(
	cfg *config.ExtractionConfig,
	storage *Storage,
	backend service.TextGenerator,
	m *metrics.Metrics,
	logger *zap.Logger,
) *service.AnalysisService {
	extractor := service.NewTextExtractor(
		service.NewPageParser(cfg.PDFEngine, logger),
		cfg.MaxUploadBytes,
		m,
		logger,
	)
	resolver := service.NewComparisonResolver(storage.Reports, logger)
	llm := service.NewLLMService(backend, m, logger)
	recorder := service.NewReportRecorder(storage.Reports, logger)

	return service.NewAnalysisService(extractor, resolver, llm, recorder, storage.Reports, m, logger)
}
