package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"expansion-monitor/internal/market"
	"expansion-monitor/internal/signals"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
	evaluateTimeout     = 30 * time.Second
)

// handleStatus reports the watchlist and the last scan summary
func (s *Server) handleStatus(c *gin.Context) {
	cfg := s.evaluator.Engine().Config()
	status := gin.H{
		"symbols":              s.scanner.Symbols(),
		"execution_timeframes": cfg.ExecutionTimeframes,
		"bias_timeframes":      cfg.BiasTimeframes,
		"bias_mode":            cfg.BiasMode,
		"candle_limit":         s.evaluator.CandleLimit(),
	}
	if last := s.scanner.LastResult(); last != nil {
		status["last_scan"] = gin.H{
			"scan_id":         last.ScanID,
			"finished_at":     last.EndTime,
			"duration_ms":     last.Duration.Milliseconds(),
			"symbols_scanned": last.SymbolsScanned,
			"signals":         len(last.Signals),
			"failures":        last.Failures,
		}
	}
	if s.wsHub != nil {
		status["ws_clients"] = s.wsHub.GetClientCount()
	}
	successResponse(c, status)
}

// handleGetSignals returns the ranked signals of the latest scan
// GET /api/signals?actionable=true
func (s *Server) handleGetSignals(c *gin.Context) {
	last := s.scanner.LastResult()
	if last == nil {
		errorResponse(c, http.StatusNotFound, "no scan has completed yet")
		return
	}

	out := last.Signals
	if c.Query("actionable") == "true" {
		out = last.Actionable()
	}
	if out == nil {
		out = []signals.Signal{}
	}

	successResponse(c, gin.H{
		"scan_id":  last.ScanID,
		"scanned":  last.EndTime,
		"failures": last.Failures,
		"signals":  out,
	})
}

// handleScan runs a scan immediately and returns its result
// POST /api/scan
func (s *Server) handleScan(c *gin.Context) {
	result, err := s.scanner.Scan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	successResponse(c, result)
}

// handleEvaluateSymbol evaluates one symbol on demand
// GET /api/signals/:symbol?exec=3m,5m&bias=15m,1h,4h
func (s *Server) handleEvaluateSymbol(c *gin.Context) {
	cfg := s.evaluator.Engine().Config()

	exec := cfg.ExecutionTimeframes
	if q := c.Query("exec"); q != "" {
		tfs, err := market.ParseTimeframes(q)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		exec = tfs
	}
	bias := cfg.BiasTimeframes
	if q := c.Query("bias"); q != "" {
		tfs, err := market.ParseTimeframes(q)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		bias = tfs
	}

	symbol := market.NormalizeSymbol(c.Param("symbol"))
	ctx, cancel := context.WithTimeout(c.Request.Context(), evaluateTimeout)
	defer cancel()

	sigs, err := s.evaluator.Evaluate(ctx, symbol, exec, bias)
	if err != nil {
		respondError(c, err)
		return
	}
	successResponse(c, gin.H{
		"symbol":  symbol,
		"signals": signals.Rank(sigs),
	})
}

// handleIndicators returns the latest indicator readings for one timeframe
// GET /api/indicators/:symbol/:timeframe
func (s *Server) handleIndicators(c *gin.Context) {
	tf, err := market.ParseTimeframe(c.Param("timeframe"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	symbol := market.NormalizeSymbol(c.Param("symbol"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), evaluateTimeout)
	defer cancel()

	candles, err := s.provider.FetchCandles(ctx, symbol, tf, s.evaluator.CandleLimit())
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := s.evaluator.Engine().Inspect(tf, candles)
	if err != nil {
		respondError(c, err)
		return
	}
	successResponse(c, gin.H{
		"symbol": symbol,
		"report": report,
	})
}

// handleHistory returns journaled signals for a symbol, newest first
// GET /api/history/:symbol?limit=50
func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		errorResponse(c, http.StatusServiceUnavailable, "signal journal is disabled")
		return
	}

	limit := defaultHistoryLimit
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			errorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxHistoryLimit {
			n = maxHistoryLimit
		}
		limit = n
	}

	symbol := market.NormalizeSymbol(c.Param("symbol"))
	records, err := s.history.RecentSignals(c.Request.Context(), symbol, limit)
	if err != nil {
		s.log.WithError(err).Error("Failed to read signal history", "symbol", symbol)
		errorResponse(c, http.StatusInternalServerError, "failed to read signal history")
		return
	}
	successResponse(c, gin.H{
		"symbol":  symbol,
		"signals": records,
	})
}
