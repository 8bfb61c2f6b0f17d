package market

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe represents a chart interval
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF3m  Timeframe = "3m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

var timeframeDurations = map[Timeframe]time.Duration{
	TF1m:  time.Minute,
	TF3m:  3 * time.Minute,
	TF5m:  5 * time.Minute,
	TF15m: 15 * time.Minute,
	TF1h:  time.Hour,
	TF4h:  4 * time.Hour,
	TF1d:  24 * time.Hour,
}

// Duration returns the bar length, or zero for unknown timeframes
func (tf Timeframe) Duration() time.Duration {
	return timeframeDurations[tf]
}

// Valid reports whether the timeframe is supported
func (tf Timeframe) Valid() bool {
	_, ok := timeframeDurations[tf]
	return ok
}

// ParseTimeframe validates a single interval string
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.TrimSpace(s))
	if !tf.Valid() {
		return "", fmt.Errorf("unsupported timeframe %q", s)
	}
	return tf, nil
}

// ParseTimeframes parses a comma separated list such as "3m,5m"
func ParseTimeframes(s string) ([]Timeframe, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]Timeframe, 0, len(parts))
	for _, p := range parts {
		tf, err := ParseTimeframe(p)
		if err != nil {
			return nil, err
		}
		out = append(out, tf)
	}
	return out, nil
}

// JoinTimeframes renders a list back to "3m,5m" form
func JoinTimeframes(tfs []Timeframe) string {
	parts := make([]string, len(tfs))
	for i, tf := range tfs {
		parts[i] = string(tf)
	}
	return strings.Join(parts, ",")
}

// CacheTTL returns how long a fetched series of this timeframe stays fresh
func (tf Timeframe) CacheTTL() time.Duration {
	switch tf {
	case TF1m:
		return 15 * time.Second
	case TF3m:
		return 30 * time.Second
	case TF5m:
		return time.Minute
	case TF15m:
		return 2 * time.Minute
	case TF1h:
		return 10 * time.Minute
	case TF4h:
		return 30 * time.Minute
	case TF1d:
		return 2 * time.Hour
	default:
		return 30 * time.Second
	}
}
