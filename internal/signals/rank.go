package signals

import "sort"

// Rank stable-sorts signals by tier, A+ first.
// Equal tiers keep their (symbol, timeframe) enumeration order.
func Rank(signals []Signal) []Signal {
	out := make([]Signal, len(signals))
	copy(out, signals)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tier.Rank() < out[j].Tier.Rank()
	})
	return out
}

// Flatten concatenates per-symbol results in symbol order and ranks them
func Flatten(perSymbol [][]Signal) []Signal {
	var all []Signal
	for _, s := range perSymbol {
		all = append(all, s...)
	}
	return Rank(all)
}
