package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/trendscanner-api/internal/metrics"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.KeywordOutcome("created")
	m.KeywordOutcome("created")
	m.KeywordOutcome("draft_invalid")
	m.Run("autopost", "completed")
	m.KeywordsCollected(3, 7)
	m.ImageLookupFailed()
	m.ObserveExternal("openai", time.Now().Add(-2*time.Second))

	count, err := testutil.GatherAndCount(reg,
		"trendscanner_autopost_keywords_total",
		"trendscanner_autopost_runs_total",
		"trendscanner_keywords_collected_total",
		"trendscanner_image_lookup_failures_total",
		"trendscanner_external_request_duration_seconds",
	)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	// 2 outcome series + 1 run series + 2 collected series + 1 failure counter + 1 histogram
	if count != 7 {
		t.Errorf("Expected 7 series, got %d", count)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.KeywordOutcome("created")
	m.Run("autopost", "failed")
	m.KeywordsCollected(1, 1)
	m.ImageLookupFailed()
	m.ObserveExternal("unsplash", time.Now())
}
