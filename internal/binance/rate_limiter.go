package binance

import (
	"context"
	"sync"
	"time"

	"expansion-monitor/internal/logging"
)

// Request weights for the spot endpoints this client calls
var endpointWeights = map[string]int{
	"/api/v3/klines": 2,
	"/api/v3/ping":   1,
}

// AcquireResult represents the result of a non-blocking TryAcquire attempt
type AcquireResult struct {
	Acquired     bool          // Whether the weight was reserved
	WaitTime     time.Duration // Suggested wait time if not acquired
	Reason       string        // Explanation for denial (empty if acquired)
	WeightBudget int           // Remaining weight budget after this request
}

// RateLimiter tracks the exchange's per-minute request weight and the ban
// window reported by 418/429 responses
type RateLimiter struct {
	mu sync.Mutex

	maxWeight     int
	currentWeight int
	weightResetAt time.Time

	banUntil          time.Time
	consecutiveErrors int

	now func() time.Time
}

// NewRateLimiter creates a limiter with the given per-minute weight budget
func NewRateLimiter(maxWeight int) *RateLimiter {
	if maxWeight <= 0 {
		maxWeight = 1200
	}
	return &RateLimiter{
		maxWeight: maxWeight,
		now:       time.Now,
	}
}

// TryAcquire atomically checks the budget and records the endpoint weight
func (r *RateLimiter) TryAcquire(endpoint string) AcquireResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	if now.Before(r.banUntil) {
		return AcquireResult{
			WaitTime: r.banUntil.Sub(now),
			Reason:   "banned by exchange",
		}
	}

	if !now.Before(r.weightResetAt) {
		r.currentWeight = 0
		r.weightResetAt = now.Add(time.Minute)
	}

	weight := getEndpointWeight(endpoint)
	if r.currentWeight+weight > r.maxWeight {
		return AcquireResult{
			WaitTime:     r.weightResetAt.Sub(now),
			Reason:       "weight budget exhausted",
			WeightBudget: r.maxWeight - r.currentWeight,
		}
	}

	r.currentWeight += weight
	return AcquireResult{
		Acquired:     true,
		WeightBudget: r.maxWeight - r.currentWeight,
	}
}

// Wait blocks until the endpoint weight can be reserved or ctx ends
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	for {
		res := r.TryAcquire(endpoint)
		if res.Acquired {
			return nil
		}

		logging.WithComponent("binance").Debug("Rate limit wait",
			"endpoint", endpoint,
			"reason", res.Reason,
			"wait", res.WaitTime.String())

		timer := time.NewTimer(res.WaitTime)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RecordSuccess clears the error streak
func (r *RateLimiter) RecordSuccess() {
	r.mu.Lock()
	r.consecutiveErrors = 0
	r.mu.Unlock()
}

// RecordRateLimitError opens the ban window. retryAfter of zero falls back
// to exponential backoff on consecutive errors, capped at 30 minutes.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.consecutiveErrors++
	if retryAfter <= 0 {
		retryAfter = time.Duration(1<<uint(r.consecutiveErrors)) * time.Second
		if retryAfter > 30*time.Minute {
			retryAfter = 30 * time.Minute
		}
	}
	r.banUntil = r.now().Add(retryAfter)

	logging.WithComponent("binance").Warn("Rate limited by exchange",
		"ban_until", r.banUntil.Format(time.RFC3339),
		"consecutive_errors", r.consecutiveErrors)
}

// UpdateFromHeaders syncs the local counter with X-MBX-USED-WEIGHT-1M
func (r *RateLimiter) UpdateFromHeaders(usedWeight1m int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if usedWeight1m > r.currentWeight {
		r.currentWeight = usedWeight1m
	}
}

// Banned reports whether the exchange ban window is still open
func (r *RateLimiter) Banned() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Before(r.banUntil)
}

// GetStatus returns the current limiter state
func (r *RateLimiter) GetStatus() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	status := map[string]interface{}{
		"current_weight":     r.currentWeight,
		"max_weight":         r.maxWeight,
		"weight_usage_pct":   float64(r.currentWeight) / float64(r.maxWeight) * 100,
		"consecutive_errors": r.consecutiveErrors,
		"banned":             now.Before(r.banUntil),
	}
	if now.Before(r.banUntil) {
		status["ban_remaining_sec"] = int(r.banUntil.Sub(now).Seconds())
	}
	return status
}

func getEndpointWeight(endpoint string) int {
	if weight, ok := endpointWeights[endpoint]; ok {
		return weight
	}
	return 1
}
