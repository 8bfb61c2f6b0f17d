package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"expansion-monitor/internal/market"
	"expansion-monitor/internal/signals"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestReadWatchlist(t *testing.T) {
	const list = "# majors\nBTC/USDT\n\n  eth-usdt  \nSOLUSDT\n"

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(list)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	for name, input := range map[string]string{"utf8": list, "utf16": utf16} {
		t.Run(name, func(t *testing.T) {
			got, err := readWatchlist(strings.NewReader(input))
			if err != nil {
				t.Fatalf("readWatchlist: %v", err)
			}
			want := []string{"BTC/USDT", "eth-usdt", "SOLUSDT"}
			if len(got) != len(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], want[i])
				}
			}
		})
	}

	if _, err := readWatchlist(strings.NewReader("# nothing\n")); err == nil {
		t.Error("expected error for an empty watchlist")
	}
}

func TestRenderTable(t *testing.T) {
	sigs := []signals.Signal{
		{
			Symbol:    "BTCUSDT",
			Timeframe: market.TF3m,
			Action:    signals.ActionLong,
			Tier:      signals.TierAPlus,
			Reason:    signals.ReasonAPlus,
			Timestamp: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
			Price:     104500.5,
			Volume:    1234567.891,
		},
		{Symbol: "XRPUSDT", Timeframe: market.TF1h, Action: signals.ActionSkip, Tier: signals.TierWait, Reason: "provider_unavailable"},
	}

	var buf bytes.Buffer
	renderTable(&buf, message.NewPrinter(language.English), sigs)
	out := buf.String()

	for _, want := range []string{"SYMBOL", "104,500.5000", "1,234,567.89", "03-01 12:30", "A+", "SKIP"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 3 {
		t.Errorf("got %d lines, want 3", lines)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" 3m, ,5m ,")
	if len(got) != 2 || got[0] != "3m" || got[1] != "5m" {
		t.Errorf("splitList = %v", got)
	}
}
