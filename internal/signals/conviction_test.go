package signals

import (
	"testing"

	"expansion-monitor/internal/analysis"
)

func TestScore(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name   string
		setup  Setup
		action Action
		tier   Tier
		reason string
	}{
		{
			name:   "no expansion",
			setup:  Setup{Expanding: false, Confirmed: true, Close: 110, FastSMA: 100, RSI: 80, Bias: analysis.BiasBull, MacroAligned: true},
			action: ActionWait, tier: TierWait, reason: ReasonNoSetup,
		},
		{
			name:   "no confirmation",
			setup:  Setup{Expanding: true, Confirmed: false, Close: 110, FastSMA: 100, RSI: 80, Bias: analysis.BiasBull, MacroAligned: true},
			action: ActionWait, tier: TierWait, reason: ReasonNoSetup,
		},
		{
			name:   "long with macro and void",
			setup:  Setup{Expanding: true, Confirmed: true, Close: 110, FastSMA: 100, RSI: 70, Bias: analysis.BiasBull, MacroAligned: true},
			action: ActionLong, tier: TierAPlus, reason: ReasonAPlus,
		},
		{
			name:   "long with macro but no void",
			setup:  Setup{Expanding: true, Confirmed: true, Close: 110, FastSMA: 100, RSI: 65, Bias: analysis.BiasBull, MacroAligned: true},
			action: ActionLong, tier: TierA, reason: ReasonA,
		},
		{
			name:   "long with void but no macro",
			setup:  Setup{Expanding: true, Confirmed: true, Close: 110, FastSMA: 100, RSI: 70, Bias: analysis.BiasBull, MacroAligned: false},
			action: ActionLong, tier: TierA, reason: ReasonA,
		},
		{
			name:   "short with macro and void",
			setup:  Setup{Expanding: true, Confirmed: true, Close: 90, FastSMA: 100, RSI: 30, Bias: analysis.BiasBear, MacroAligned: true},
			action: ActionShort, tier: TierAPlus, reason: ReasonAPlus,
		},
		{
			name:   "short against bull bias",
			setup:  Setup{Expanding: true, Confirmed: true, Close: 90, FastSMA: 100, RSI: 30, Bias: analysis.BiasBull, MacroAligned: true},
			action: ActionShort, tier: TierCaution, reason: ReasonCounterTrend,
		},
		{
			name:   "close equal to fast sma is short",
			setup:  Setup{Expanding: true, Confirmed: true, Close: 100, FastSMA: 100, RSI: 50, Bias: analysis.BiasBear},
			action: ActionShort, tier: TierA, reason: ReasonA,
		},
		{
			name:   "neutral bias is a conflict",
			setup:  Setup{Expanding: true, Confirmed: true, Close: 110, FastSMA: 100, RSI: 60, Bias: analysis.BiasNeutral},
			action: ActionLong, tier: TierCaution, reason: ReasonCounterTrend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Score(tt.setup, cfg)
			if v.Action != tt.action || v.Tier != tt.tier || v.Reason != tt.reason {
				t.Errorf("Expected %s/%s/%q, got %s/%s/%q", tt.action, tt.tier, tt.reason, v.Action, v.Tier, v.Reason)
			}
		})
	}
}

func TestTierRank(t *testing.T) {
	order := []Tier{TierAPlus, TierA, TierCaution, TierWait}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("%s should rank before %s", order[i-1], order[i])
		}
	}
	if !TierAPlus.AtLeast(TierA) || TierCaution.AtLeast(TierA) {
		t.Error("AtLeast does not follow rank order")
	}
	if _, ok := ParseTier("B"); ok {
		t.Error("Unknown tier should not parse")
	}
}

func TestRankIsStable(t *testing.T) {
	in := []Signal{
		{Symbol: "BTC", Timeframe: "3m", Tier: TierWait},
		{Symbol: "BTC", Timeframe: "5m", Tier: TierA},
		{Symbol: "ETH", Timeframe: "3m", Tier: TierCaution},
		{Symbol: "ETH", Timeframe: "5m", Tier: TierAPlus},
		{Symbol: "SOL", Timeframe: "3m", Tier: TierA},
		{Symbol: "SOL", Timeframe: "5m", Tier: TierWait},
	}

	out := Rank(in)

	for i := 1; i < len(out); i++ {
		if out[i-1].Tier.Rank() > out[i].Tier.Rank() {
			t.Fatalf("Tier order broken at %d: %s before %s", i, out[i-1].Tier, out[i].Tier)
		}
	}

	expected := []string{"ETH/5m", "BTC/5m", "SOL/3m", "ETH/3m", "BTC/3m", "SOL/5m"}
	for i, s := range out {
		if got := s.Symbol + "/" + string(s.Timeframe); got != expected[i] {
			t.Errorf("Position %d: expected %s, got %s", i, expected[i], got)
		}
	}

	if in[0].Tier != TierWait {
		t.Error("Rank must not reorder its input")
	}
}
