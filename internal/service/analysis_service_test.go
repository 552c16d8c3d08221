package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"billwise/internal/models"
	"billwise/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

type pipeline struct {
	service   *AnalysisService
	reports   *memoryReports
	generator *stubGenerator
	parser    *stubPageParser
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	logger := zaptest.NewLogger(t)
	m := metrics.New()

	p := &pipeline{
		reports:   &memoryReports{},
		generator: &stubGenerator{response: "1) Summary: all good."},
		parser:    &stubPageParser{},
	}
	extractor := NewTextExtractor(p.parser, testMaxUpload, m, logger)
	extractor.tempDir = t.TempDir()

	p.service = NewAnalysisService(
		extractor,
		NewComparisonResolver(p.reports, logger),
		NewLLMService(p.generator, m, logger),
		NewReportRecorder(p.reports, logger),
		p.reports,
		m,
		logger,
	)
	return p
}

func TestAnalyzeStandalone(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	userID := uuid.New()

	result, err := p.service.Analyze(ctx, userID, &Submission{PastedText: "  Netflix $15.99  "})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Analysis != "1) Summary: all good." {
		t.Errorf("unexpected analysis %q", result.Analysis)
	}
	if result.UsedComparison {
		t.Error("expected standalone mode")
	}
	if !result.Saved || result.Report == nil {
		t.Fatal("expected report to be saved")
	}
	if result.Report.Bill != "Netflix $15.99" || result.Report.Analysis != result.Analysis {
		t.Errorf("unexpected report %+v", result.Report)
	}
	if result.Report.UserID != userID {
		t.Error("report saved under the wrong user")
	}

	prompt := p.generator.lastPrompt()
	if !strings.Contains(prompt, "Respond in English.") {
		t.Error("expected default language in prompt")
	}
	if !strings.Contains(prompt, "Bill text:\nNetflix $15.99") {
		t.Errorf("bill text missing from prompt:\n%s", prompt)
	}

	history, err := p.service.History(ctx, userID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 || history[0].ID != result.Report.ID {
		t.Errorf("expected the new report in history, got %d entries", len(history))
	}
}

func TestAnalyzeComparative(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	userID := uuid.New()

	_ = p.reports.Create(ctx, &models.Report{
		ID: uuid.New(), UserID: userID, Bill: "OLD", Analysis: "old analysis",
		CreatedAt: time.Date(2025, time.February, 3, 12, 0, 0, 0, time.UTC),
	})

	result, err := p.service.Analyze(ctx, userID, &Submission{PastedText: "NEW", Language: "French", Compare: true})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !result.UsedComparison {
		t.Error("expected comparative mode")
	}

	prompt := p.generator.lastPrompt()
	for _, want := range []string{"Respond in French.", "(from February 2025)", "Last bill text:\nOLD", "This bill text:\nNEW"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected %q in prompt", want)
		}
	}

	// the new report becomes the comparison baseline for the next submission
	if _, err := p.service.Analyze(ctx, userID, &Submission{PastedText: "NEWER", Compare: true}); err != nil {
		t.Fatalf("second Analyze failed: %v", err)
	}
	if !strings.Contains(p.generator.lastPrompt(), "Last bill text:\nNEW\n") {
		t.Errorf("expected previous submission as baseline:\n%s", p.generator.lastPrompt())
	}
}

func TestAnalyzeCompareWithoutHistory(t *testing.T) {
	p := newPipeline(t)

	result, err := p.service.Analyze(context.Background(), uuid.New(), &Submission{PastedText: "NEW", Compare: true})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.UsedComparison {
		t.Error("first submission must fall back to standalone")
	}
	if strings.Contains(p.generator.lastPrompt(), "Comparison Summary") {
		t.Error("standalone prompt expected")
	}
}

func TestAnalyzeCompareIgnoresOtherUsers(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	_ = p.reports.Create(ctx, &models.Report{
		ID: uuid.New(), UserID: uuid.New(), Bill: "FOREIGN", Analysis: "a", CreatedAt: time.Now().UTC(),
	})

	result, err := p.service.Analyze(ctx, uuid.New(), &Submission{PastedText: "NEW", Compare: true})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.UsedComparison || strings.Contains(p.generator.lastPrompt(), "FOREIGN") {
		t.Error("another user's report leaked into the prompt")
	}
}

func TestAnalyzeEmptySubmission(t *testing.T) {
	p := newPipeline(t)

	_, err := p.service.Analyze(context.Background(), uuid.New(), &Submission{PastedText: " \n "})
	if !errors.Is(err, ErrEmptySubmission) {
		t.Fatalf("expected ErrEmptySubmission, got %v", err)
	}
	if p.generator.calls() != 0 {
		t.Error("generator must not be called for an empty submission")
	}
	if p.reports.count() != 0 {
		t.Error("no report must be written for an empty submission")
	}
}

func TestAnalyzePDFUpload(t *testing.T) {
	p := newPipeline(t)
	p.parser.pages = []string{"Page one ", "Page two"}

	result, err := p.service.Analyze(context.Background(), uuid.New(), &Submission{
		PastedText: "ignored",
		File:       upload("march.PDF", "%PDF-1.7 fake"),
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Report.Bill != "Page one Page two" {
		t.Errorf("unexpected stored bill %q", result.Report.Bill)
	}
}

func TestAnalyzeExtractionFailure(t *testing.T) {
	p := newPipeline(t)
	p.parser.err = errors.New("corrupt xref table")

	_, err := p.service.Analyze(context.Background(), uuid.New(), &Submission{File: upload("bill.pdf", "garbage")})
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if p.generator.calls() != 0 || p.reports.count() != 0 {
		t.Error("pipeline must stop at extraction")
	}
}

func TestAnalyzeGenerationFailure(t *testing.T) {
	p := newPipeline(t)
	p.generator.err = errors.New("rate limited")

	_, err := p.service.Analyze(context.Background(), uuid.New(), &Submission{PastedText: "Netflix $15.99"})
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if p.reports.count() != 0 {
		t.Error("no report must be written when generation fails")
	}
}

func TestAnalyzePersistenceFailure(t *testing.T) {
	p := newPipeline(t)
	p.reports.createErr = errors.New("disk full")

	result, err := p.service.Analyze(context.Background(), uuid.New(), &Submission{PastedText: "Netflix $15.99"})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if result == nil || result.Analysis != "1) Summary: all good." {
		t.Fatalf("analysis must survive a failed save, got %+v", result)
	}
	if result.Saved || result.Report != nil {
		t.Error("result must be marked unsaved")
	}
}

func TestGetReport(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	owner := uuid.New()

	result, err := p.service.Analyze(ctx, owner, &Submission{PastedText: "Netflix $15.99"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	got, err := p.service.GetReport(ctx, owner, result.Report.ID)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.Bill != "Netflix $15.99" {
		t.Errorf("unexpected bill %q", got.Bill)
	}

	if _, err := p.service.GetReport(ctx, uuid.New(), result.Report.ID); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound for another user, got %v", err)
	}
}
