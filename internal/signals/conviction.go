package signals

import "expansion-monitor/internal/analysis"

// Setup gathers the per-evaluation facts the scorer needs
type Setup struct {
	Expanding    bool
	Confirmed    bool
	Close        float64 // execution timeframe latest close
	FastSMA      float64 // execution timeframe latest fast SMA
	RSI          float64 // execution timeframe latest RSI
	Bias         analysis.Bias
	MacroAligned bool
}

// Verdict is the scorer output
type Verdict struct {
	Action Action
	Tier   Tier
	Reason string
}

// Score combines expansion, confirmation, bias and macro alignment into a tier
func Score(s Setup, cfg Config) Verdict {
	if !s.Expanding || !s.Confirmed {
		return Verdict{Action: ActionWait, Tier: TierWait, Reason: ReasonNoSetup}
	}

	dir := ActionShort
	if s.Close > s.FastSMA {
		dir = ActionLong
	}

	void := (dir == ActionLong && s.RSI > cfg.VoidLongRSI) ||
		(dir == ActionShort && s.RSI < cfg.VoidShortRSI)

	agrees := (dir == ActionLong && s.Bias == analysis.BiasBull) ||
		(dir == ActionShort && s.Bias == analysis.BiasBear)

	switch {
	case agrees && s.MacroAligned && void:
		return Verdict{Action: dir, Tier: TierAPlus, Reason: ReasonAPlus}
	case agrees:
		return Verdict{Action: dir, Tier: TierA, Reason: ReasonA}
	default:
		return Verdict{Action: dir, Tier: TierCaution, Reason: ReasonCounterTrend}
	}
}
