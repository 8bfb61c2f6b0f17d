package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"expansion-monitor/config"
	"expansion-monitor/internal/binance"
	"expansion-monitor/internal/logging"
	"expansion-monitor/internal/market"
	"expansion-monitor/internal/scanner"
	"expansion-monitor/internal/signals"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/transform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Flags
	symbols := flag.String("symbols", strings.Join(cfg.ScannerConfig.Watchlist, ","), "Comma separated watchlist")
	symbolsFile := flag.String("symbols-file", "", "File with one symbol per line (UTF-8 or UTF-16 with BOM)")
	execTFs := flag.String("exec", strings.Join(cfg.SignalConfig.ExecutionTimeframes, ","), "Execution timeframes")
	biasTFs := flag.String("bias", strings.Join(cfg.SignalConfig.BiasTimeframes, ","), "Bias timeframes, first is the bias timeframe")
	mode := flag.String("mode", cfg.SignalConfig.BiasMode, "Bias mode: strict or loose")
	mock := flag.Bool("mock", cfg.BinanceConfig.MockMode, "Use simulated candles")
	workers := flag.Int("workers", cfg.ScannerConfig.WorkerCount, "Concurrent symbols")
	timeout := flag.Duration("timeout", time.Duration(cfg.ScannerConfig.SymbolTimeout)*time.Second, "Per-symbol timeout")
	actionable := flag.Bool("actionable", false, "Only print LONG and SHORT signals")
	asJSON := flag.Bool("json", false, "Print JSON instead of a table")
	verbose := flag.Bool("verbose", false, "Enable debug logging on stderr")
	writeConfig := flag.String("write-config", "", "Write a sample config (.json or .yaml) to this path and exit")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.GenerateSampleConfig(*writeConfig); err != nil {
			fatal(err)
		}
		fmt.Printf("Sample config written to %s\n", *writeConfig)
		return
	}

	level := "WARN"
	if *verbose {
		level = "DEBUG"
	}
	logging.SetDefault(logging.New(&logging.Config{Level: level, Output: "stderr", Component: "scan"}))

	watchlist := splitList(*symbols)
	if *symbolsFile != "" {
		f, err := os.Open(*symbolsFile)
		if err != nil {
			fatal(err)
		}
		watchlist, err = readWatchlist(f)
		f.Close()
		if err != nil {
			fatal(err)
		}
	}

	cfg.SignalConfig.ExecutionTimeframes = splitList(*execTFs)
	cfg.SignalConfig.BiasTimeframes = splitList(*biasTFs)
	cfg.SignalConfig.BiasMode = *mode
	cfg.BinanceConfig.MockMode = *mock

	engineCfg, err := cfg.SignalConfig.ToEngineConfig()
	if err != nil {
		fatal(err)
	}
	engine, err := signals.NewEngine(engineCfg)
	if err != nil {
		fatal(err)
	}

	provider := market.NewCachedProvider(
		binance.NewProvider(binance.NewKlineSource(cfg.BinanceConfig), cfg.SignalConfig.CandleLimit),
		market.NewMemoryCache(),
	)
	evaluator := signals.NewEvaluator(provider, engine, cfg.SignalConfig.CandleLimit)

	sc := scanner.NewScanner(evaluator, scanner.ScannerConfig{
		WorkerCount:   *workers,
		SymbolTimeout: *timeout,
		Symbols:       watchlist,
	})

	result, err := sc.Scan(context.Background())
	if err != nil {
		fatal(err)
	}

	out := result.Signals
	if *actionable {
		out = result.Actionable()
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fatal(err)
		}
		return
	}

	p := message.NewPrinter(language.English)
	renderTable(os.Stdout, p, out)
	p.Fprintf(os.Stdout, "\n%d symbols, %d signals, %d skipped in %v (%s bias)\n",
		result.SymbolsScanned, len(out), result.Failures, result.Duration.Round(time.Millisecond), *mode)
}

// renderTable prints signals in rank order with locale-grouped numbers
func renderTable(w io.Writer, p *message.Printer, sigs []signals.Signal) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSYMBOL\tTF\tACTION\tTIER\tPRICE\tVOLUME\tCANDLE\tREASON")
	for i, s := range sigs {
		candle := "-"
		if !s.Timestamp.IsZero() {
			candle = s.Timestamp.UTC().Format("01-02 15:04")
		}
		fmt.Fprintln(tw, p.Sprintf("%d\t%s\t%s\t%s\t%s\t%.4f\t%.2f\t%s\t%s",
			i+1, s.Symbol, s.Timeframe, s.Action, s.Tier, s.Price, s.Volume, candle, s.Reason))
	}
	tw.Flush()
}

// readWatchlist reads one symbol per line, skipping blanks and # comments
func readWatchlist(r io.Reader) ([]string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	var out []string
	sc := bufio.NewScanner(decoded)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("read watchlist: no symbols")
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "scan: %v\n", err)
	os.Exit(1)
}
