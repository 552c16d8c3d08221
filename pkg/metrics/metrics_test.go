package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.ObserveAnalysis(ModeStandalone, OutcomeSuccess)
	m.ObserveAnalysis(ModeStandalone, OutcomeSuccess)
	m.ObserveAnalysis(ModeComparative, OutcomeGenerationError)
	m.ObserveExtraction("pdf")
	m.ObserveGeneration(1500 * time.Millisecond)

	if got := testutil.ToFloat64(m.analyses.WithLabelValues(ModeStandalone, OutcomeSuccess)); got != 2 {
		t.Errorf("expected 2 standalone successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.analyses.WithLabelValues(ModeComparative, OutcomeGenerationError)); got != 1 {
		t.Errorf("expected 1 comparative failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.extractions.WithLabelValues("pdf")); got != 1 {
		t.Errorf("expected 1 pdf extraction, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "billwise_generation_duration_seconds_count 1") {
		t.Errorf("histogram missing from exposition:\n%s", body)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAnalysis(ModeNone, OutcomeEmpty)
	m.ObserveExtraction("text")
	m.ObserveGeneration(time.Second)
}
