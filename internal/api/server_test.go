package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"expansion-monitor/internal/auth"
	"expansion-monitor/internal/database"
	"expansion-monitor/internal/events"
	"expansion-monitor/internal/market"
	"expansion-monitor/internal/scanner"
	"expansion-monitor/internal/signals"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
)

var base = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func candles(tf market.Timeframe, closes []float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		out[i] = market.Candle{
			Timestamp: base.Add(time.Duration(i) * tf.Duration()),
			Open:      open,
			High:      math.Max(open, c),
			Low:       math.Min(open, c),
			Close:     c,
			Volume:    1000,
		}
	}
	return out
}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func breakout() []float64 {
	closes := make([]float64, 110)
	for i := 0; i < 90; i++ {
		closes[i] = 100
	}
	for i := 90; i < 109; i++ {
		closes[i] = 100 + 0.1*float64(i-89)
	}
	closes[109] = closes[108] + 2
	return closes
}

var testProvider = market.ProviderFunc(func(ctx context.Context, symbol string, tf market.Timeframe, minCount int) ([]market.Candle, error) {
	switch symbol {
	case "SOLUSDT":
		if tf == market.TF3m || tf == market.TF5m {
			return candles(tf, breakout()), nil
		}
		return candles(tf, rising(110)), nil
	case "SHORTUSDT":
		return candles(tf, rising(50)), nil
	}
	return nil, errors.New("unknown symbol " + symbol)
})

type fakeHistory struct {
	healthErr error
	records   []database.SignalRecord
	gotLimit  int
}

func (f *fakeHistory) HealthCheck(context.Context) error { return f.healthErr }

func (f *fakeHistory) RecentSignals(_ context.Context, symbol string, limit int) ([]database.SignalRecord, error) {
	f.gotLimit = limit
	var out []database.SignalRecord
	for _, r := range f.records {
		if r.Symbol == symbol {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, cfg ServerConfig, mutate func(*Dependencies)) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine, err := signals.NewEngine(signals.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	ev := signals.NewEvaluator(testProvider, engine, 110)
	sc := scanner.NewScanner(ev, scanner.ScannerConfig{
		WorkerCount: 2,
		Symbols:     []string{"SOL/USDT", "BAD/USDT"},
	})

	deps := Dependencies{Scanner: sc, Evaluator: ev, Provider: testProvider}
	if mutate != nil {
		mutate(&deps)
	}
	return NewServer(cfg, deps)
}

type envelope struct {
	Success bool            `json:"success"`
	Error   bool            `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path, token string, body []byte) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, ServerConfig{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["status"] != "healthy" || response["database"] != "disabled" {
		t.Errorf("unexpected health %v", response)
	}

	sick := newTestServer(t, ServerConfig{}, func(d *Dependencies) {
		d.History = &fakeHistory{healthErr: errors.New("down")}
	})
	w = httptest.NewRecorder()
	sick.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 with failing database, got %d", w.Code)
	}
}

func TestScanAndSignals(t *testing.T) {
	s := newTestServer(t, ServerConfig{}, nil)
	h := s.Handler()

	if code, _ := do(t, h, http.MethodGet, "/api/signals", "", nil); code != http.StatusNotFound {
		t.Errorf("before scan: status %d, want 404", code)
	}

	code, env := do(t, h, http.MethodPost, "/api/scan", "", nil)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("scan: status %d, message %q", code, env.Message)
	}
	var result scanner.ScanResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode scan: %v", err)
	}
	if result.Failures != 1 || len(result.Signals) != 3 {
		t.Fatalf("unexpected scan result %+v", result)
	}

	code, env = do(t, h, http.MethodGet, "/api/signals?actionable=true", "", nil)
	if code != http.StatusOK {
		t.Fatalf("signals: status %d", code)
	}
	var payload struct {
		ScanID  string           `json:"scan_id"`
		Signals []signals.Signal `json:"signals"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode signals: %v", err)
	}
	if payload.ScanID != result.ScanID {
		t.Errorf("scan_id = %s, want %s", payload.ScanID, result.ScanID)
	}
	if len(payload.Signals) != 2 {
		t.Fatalf("actionable signals = %d, want 2", len(payload.Signals))
	}
	for _, sig := range payload.Signals {
		if sig.Symbol != "SOLUSDT" || sig.Action != signals.ActionLong || sig.Tier != signals.TierAPlus {
			t.Errorf("unexpected signal %+v", sig)
		}
	}

	code, env = do(t, h, http.MethodGet, "/api/status", "", nil)
	if code != http.StatusOK || !strings.Contains(string(env.Data), result.ScanID) {
		t.Errorf("status: %d %s", code, env.Data)
	}
}

func TestEvaluateSymbolEndpoint(t *testing.T) {
	h := newTestServer(t, ServerConfig{}, nil).Handler()

	tests := []struct {
		name  string
		path  string
		want  int
		count int
	}{
		{"defaults", "/api/signals/sol-usdt", http.StatusOK, 2},
		{"custom timeframes", "/api/signals/SOLUSDT?exec=5m&bias=15m,1h", http.StatusOK, 1},
		{"bad timeframe", "/api/signals/SOLUSDT?exec=7m", http.StatusBadRequest, 0},
		{"single bias timeframe", "/api/signals/SOLUSDT?bias=15m", http.StatusOK, 2},
		{"bad bias timeframe", "/api/signals/SOLUSDT?bias=15m,2h", http.StatusBadRequest, 0},
		{"provider failure is a skip", "/api/signals/BADUSDT", http.StatusOK, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, h, http.MethodGet, tt.path, "", nil)
			if code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", code, tt.want, env.Message)
			}
			if tt.want != http.StatusOK {
				return
			}
			var payload struct {
				Signals []signals.Signal `json:"signals"`
			}
			if err := json.Unmarshal(env.Data, &payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(payload.Signals) != tt.count {
				t.Errorf("signals = %d, want %d", len(payload.Signals), tt.count)
			}
		})
	}
}

func TestIndicatorsEndpoint(t *testing.T) {
	h := newTestServer(t, ServerConfig{}, nil).Handler()

	tests := []struct {
		path string
		want int
	}{
		{"/api/indicators/SOLUSDT/3m", http.StatusOK},
		{"/api/indicators/SOLUSDT/7m", http.StatusBadRequest},
		{"/api/indicators/SHORTUSDT/1h", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		if code, env := do(t, h, http.MethodGet, tt.path, "", nil); code != tt.want {
			t.Errorf("%s: status = %d, want %d (%s)", tt.path, code, tt.want, env.Message)
		}
	}

	_, env := do(t, h, http.MethodGet, "/api/indicators/SOLUSDT/3m", "", nil)
	var payload struct {
		Report signals.TimeframeReport `json:"report"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Report.Expanding || !payload.Report.Confirmation.Elephant {
		t.Errorf("unexpected report %+v", payload.Report)
	}
}

func TestStatusForProviderErrors(t *testing.T) {
	err := errors.New("boom")
	if got := statusFor(err); got != http.StatusInternalServerError {
		t.Errorf("plain error: %d", got)
	}
	wrapped := errors.Join(market.ErrProviderUnavailable, err)
	if got := statusFor(wrapped); got != http.StatusBadGateway {
		t.Errorf("provider error: %d, want 502", got)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	disabled := newTestServer(t, ServerConfig{}, nil).Handler()
	if code, _ := do(t, disabled, http.MethodGet, "/api/history/SOLUSDT", "", nil); code != http.StatusServiceUnavailable {
		t.Errorf("disabled journal: status %d, want 503", code)
	}

	store := &fakeHistory{records: []database.SignalRecord{
		{ID: 2, Symbol: "SOLUSDT", Action: "LONG", Tier: "A+"},
		{ID: 1, Symbol: "ETHUSDT", Action: "WAIT", Tier: "Wait"},
	}}
	h := newTestServer(t, ServerConfig{}, func(d *Dependencies) { d.History = store }).Handler()

	code, env := do(t, h, http.MethodGet, "/api/history/sol-usdt?limit=9999", "", nil)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if store.gotLimit != maxHistoryLimit {
		t.Errorf("limit = %d, want clamp to %d", store.gotLimit, maxHistoryLimit)
	}
	var payload struct {
		Signals []database.SignalRecord `json:"signals"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Signals) != 1 || payload.Signals[0].ID != 2 {
		t.Errorf("unexpected records %+v", payload.Signals)
	}

	if code, _ := do(t, h, http.MethodGet, "/api/history/SOLUSDT?limit=abc", "", nil); code != http.StatusBadRequest {
		t.Errorf("bad limit: status %d, want 400", code)
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, ServerConfig{RateLimit: 2}, nil).Handler()

	for i := 0; i < 2; i++ {
		if code, _ := do(t, h, http.MethodGet, "/api/status", "", nil); code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, code)
		}
	}
	if code, _ := do(t, h, http.MethodGet, "/api/status", "", nil); code != http.StatusTooManyRequests {
		t.Errorf("third request: status %d, want 429", code)
	}
	if code, _ := do(t, h, http.MethodGet, "/health", "", nil); code != http.StatusOK {
		t.Errorf("health is not rate limited: status %d", code)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("k") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("k") {
		t.Fatal("second request inside the window should fail")
	}
	if !rl.Allow("other") {
		t.Fatal("keys are independent")
	}
	now = now.Add(61 * time.Second)
	if !rl.Allow("k") {
		t.Error("request after the window should pass")
	}
}

func TestAuthenticatedRoutes(t *testing.T) {
	const key = "monitor-client-key-0001"
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := auth.NewService(auth.Config{JWTSecret: "secret", APIKeyHash: string(hash), AccessTokenDuration: time.Minute})
	h := newTestServer(t, ServerConfig{}, func(d *Dependencies) { d.Auth = svc }).Handler()

	if code, _ := do(t, h, http.MethodGet, "/api/status", "", nil); code != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", code)
	}

	body, _ := json.Marshal(auth.TokenRequest{APIKey: key})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("token: status %d %s", w.Code, w.Body.String())
	}
	var tok auth.TokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &tok); err != nil {
		t.Fatalf("decode token: %v", err)
	}

	if code, _ := do(t, h, http.MethodGet, "/api/status", tok.AccessToken, nil); code != http.StatusOK {
		t.Errorf("with token: status %d, want 200", code)
	}
	if code, _ := do(t, h, http.MethodPost, "/api/scan", tok.AccessToken, nil); code != http.StatusOK {
		t.Errorf("scan with token: status %d, want 200", code)
	}
}

func TestMetricsRoute(t *testing.T) {
	h := newTestServer(t, ServerConfig{}, func(d *Dependencies) {
		d.Metrics = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("expansion_monitor_scans_total 0\n"))
		})
	}).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "scans_total") {
		t.Errorf("metrics: %d %q", w.Code, w.Body.String())
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	bus := events.NewEventBus()
	s := newTestServer(t, ServerConfig{}, func(d *Dependencies) { d.EventBus = bus })
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	defer s.Shutdown(context.Background())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello map[string]interface{}
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	if hello["type"] != "CONNECTED" {
		t.Fatalf("greeting = %v", hello)
	}

	bus.PublishScanStarted("scan-1", 3)

	var ev events.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != events.EventScanStarted || ev.Data["scan_id"] != "scan-1" {
		t.Errorf("unexpected event %+v", ev)
	}
}
