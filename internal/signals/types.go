package signals

import (
	"time"

	"expansion-monitor/internal/market"
)

// Action is the directional outcome of one evaluation
type Action string

const (
	ActionLong  Action = "LONG"
	ActionShort Action = "SHORT"
	ActionWait  Action = "WAIT"
	ActionSkip  Action = "SKIP"
)

// Tier is the conviction label attached to a signal
type Tier string

const (
	TierAPlus   Tier = "A+"
	TierA       Tier = "A"
	TierCaution Tier = "Caution"
	TierWait    Tier = "Wait"
)

var tierRanks = map[Tier]int{
	TierAPlus:   0,
	TierA:       1,
	TierCaution: 2,
	TierWait:    3,
}

// Rank orders tiers for display, A+ first. Unknown tiers sort last.
func (t Tier) Rank() int {
	if r, ok := tierRanks[t]; ok {
		return r
	}
	return len(tierRanks)
}

// AtLeast reports whether t ranks at or above other
func (t Tier) AtLeast(other Tier) bool {
	return t.Rank() <= other.Rank()
}

// ParseTier validates a tier label
func ParseTier(s string) (Tier, bool) {
	t := Tier(s)
	_, ok := tierRanks[t]
	return t, ok
}

// FailureKind explains why a symbol produced a SKIP signal
type FailureKind string

const (
	FailureNone                FailureKind = ""
	FailureInsufficientData    FailureKind = "insufficient_data"
	FailureProviderUnavailable FailureKind = "provider_unavailable"
)

// Reasons attached to evaluated signals
const (
	ReasonNoSetup      = "no expansion/confirmation"
	ReasonAPlus        = "expansion+bias+macro+void"
	ReasonA            = "expansion+bias+confirmation"
	ReasonCounterTrend = "counter-trend conflict"
)

// Signal is the result for one (symbol, execution timeframe) pair.
// A new value is created on every evaluation.
type Signal struct {
	Symbol    string           `json:"symbol"`
	Timeframe market.Timeframe `json:"timeframe"`
	Action    Action           `json:"action"`
	Tier      Tier             `json:"tier"`
	Reason    string           `json:"reason"`
	Timestamp time.Time        `json:"timestamp"`
	Price     float64          `json:"price"`
	Volume    float64          `json:"volume"`
	Failure   FailureKind      `json:"failure,omitempty"`
}

// Actionable is true for LONG and SHORT signals
func (s Signal) Actionable() bool {
	return s.Action == ActionLong || s.Action == ActionShort
}
