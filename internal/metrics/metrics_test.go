package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"expansion-monitor/internal/signals"
)

func TestObserveScan(t *testing.T) {
	m := New("test")

	ranked := []signals.Signal{
		{Symbol: "SOLUSDT", Action: signals.ActionLong, Tier: signals.TierAPlus},
		{Symbol: "SOLUSDT", Action: signals.ActionLong, Tier: signals.TierAPlus},
		{Symbol: "BTCUSDT", Action: signals.ActionWait, Tier: signals.TierWait},
		{Symbol: "XRPUSDT", Action: signals.ActionSkip, Tier: signals.TierWait, Failure: signals.FailureInsufficientData},
	}
	finished := time.Unix(1700000000, 0)
	m.ObserveScan(3, 250*time.Millisecond, finished, ranked)

	if got := testutil.ToFloat64(m.ScansTotal); got != 1 {
		t.Errorf("Expected 1 scan, got %v", got)
	}
	if got := testutil.ToFloat64(m.SignalsTotal.WithLabelValues("A+", "LONG")); got != 2 {
		t.Errorf("Expected 2 A+ LONG signals, got %v", got)
	}
	if got := testutil.ToFloat64(m.FailuresTotal.WithLabelValues("insufficient_data")); got != 1 {
		t.Errorf("Expected 1 insufficient_data failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.SignalsTotal.WithLabelValues("Wait", "SKIP")); got != 0 {
		t.Errorf("SKIP signals should not count as signals, got %v", got)
	}
	if got := testutil.ToFloat64(m.LastScan); got != 1700000000 {
		t.Errorf("Unexpected last scan gauge %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("expansion_monitor")
	m.ScansTotal.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "expansion_monitor_scans_total 1") {
		t.Errorf("scans_total not exposed:\n%s", body)
	}

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "expansion_monitor_scans_total" {
			found = true
		}
	}
	if !found {
		t.Error("scans_total missing from registry")
	}
}
