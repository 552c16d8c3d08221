package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"billwise/internal/models"
	"billwise/internal/repository"
	"billwise/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalysisResult is the outcome of one analysis request. When Saved is false
// Report is nil and the analysis text is still valid.
type AnalysisResult struct {
	Analysis       string
	UsedComparison bool
	Report         *models.Report
	Saved          bool
}

type AnalysisService struct {
	extractor *TextExtractor
	resolver  *ComparisonResolver
	llm       *LLMService
	recorder  *ReportRecorder
	reports   ReportStore
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewAnalysisService(
	extractor *TextExtractor,
	resolver *ComparisonResolver,
	llm *LLMService,
	recorder *ReportRecorder,
	reports ReportStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		extractor: extractor,
		resolver:  resolver,
		llm:       llm,
		recorder:  recorder,
		reports:   reports,
		metrics:   m,
		logger:    logger,
	}
}

// Analyze runs extract -> resolve -> compose -> generate -> record.
//
// If the report cannot be saved, the result is returned together with an
// error wrapping ErrPersistence so the caller can still show the analysis.
func (s *AnalysisService) Analyze(ctx context.Context, userID uuid.UUID, sub *Submission) (*AnalysisResult, error) {
	// 1. Extract bill text
	billText, err := s.extractor.Extract(sub)
	if err != nil {
		s.metrics.ObserveAnalysis(metrics.ModeNone, extractionOutcome(err))
		return nil, err
	}

	// 2. Previous report, if a comparison was requested
	previous := s.resolver.ResolvePrevious(ctx, userID, sub.Compare)
	mode := metrics.ModeStandalone
	if previous != nil {
		mode = metrics.ModeComparative
	}

	// 3. Prompt
	language := strings.TrimSpace(sub.Language)
	if language == "" {
		language = DefaultLanguage
	}
	prompt := ComposePrompt(billText, language, PreviousBillFrom(previous))

	// 4. Generate
	analysis, err := s.llm.GenerateAnalysis(ctx, prompt)
	if err != nil {
		s.metrics.ObserveAnalysis(mode, metrics.OutcomeGenerationError)
		return nil, err
	}

	result := &AnalysisResult{
		Analysis:       analysis,
		UsedComparison: previous != nil,
	}

	// 5. Record
	report, err := s.recorder.Record(ctx, userID, billText, analysis)
	if err != nil {
		s.metrics.ObserveAnalysis(mode, metrics.OutcomeUnsaved)
		return result, err
	}
	result.Report = report
	result.Saved = true

	s.metrics.ObserveAnalysis(mode, metrics.OutcomeSuccess)
	s.logger.Info("Bill analyzed",
		zap.String("user_id", userID.String()),
		zap.String("mode", mode),
		zap.String("language", language),
	)

	return result, nil
}

// History returns every report of the user, newest first.
func (s *AnalysisService) History(ctx context.Context, userID uuid.UUID) ([]*models.Report, error) {
	reports, err := s.reports.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (s *AnalysisService) GetReport(ctx context.Context, userID, reportID uuid.UUID) (*models.Report, error) {
	report, err := s.reports.GetByID(ctx, userID, reportID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

func extractionOutcome(err error) string {
	switch {
	case errors.Is(err, ErrEmptySubmission):
		return metrics.OutcomeEmpty
	case errors.Is(err, ErrOversizeUpload):
		return metrics.OutcomeOversize
	default:
		return metrics.OutcomeExtractionError
	}
}
