package signals

import (
	"errors"
	"testing"

	"expansion-monitor/internal/analysis"
	"expansion-monitor/internal/indicators"
	"expansion-monitor/internal/market"
)

func TestInspect(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	report, err := engine.Inspect(market.TF3m, candlesFor(market.TF3m, breakoutCloses(0.1, 2.0)))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !report.Expanding {
		t.Error("breakout series should be expanding")
	}
	if !report.Confirmation.Elephant {
		t.Error("last breakout bar should be an elephant candle")
	}
	if report.Gap <= 0 {
		t.Errorf("gap = %v, want positive after an upside cross", report.Gap)
	}
	if report.Latest.Candle.Close <= report.Previous.Candle.Close {
		t.Errorf("latest close %v should exceed previous %v", report.Latest.Candle.Close, report.Previous.Candle.Close)
	}

	trend, err := engine.Inspect(market.TF1h, candlesFor(market.TF1h, linearCloses(110, 100, 1)))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if trend.Bias != analysis.BiasBull {
		t.Errorf("bias = %s, want BULL", trend.Bias)
	}

	_, err = engine.Inspect(market.TF1h, candlesFor(market.TF1h, linearCloses(50, 100, 1)))
	if !errors.Is(err, indicators.ErrInsufficientData) {
		t.Errorf("short series: got %v, want ErrInsufficientData", err)
	}
}
