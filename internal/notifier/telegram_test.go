package notifier

import (
	"strings"
	"testing"
	"time"

	"alphascan/internal/models"
)

func sampleAlert() models.Alert {
	return models.Alert{
		ID:           "a1",
		PairAddress:  "So11111111111111111111111111111111111111112",
		ChainID:      "solana",
		Name:         "Alpha Token",
		Symbol:       "ALPHA",
		URL:          "https://dexscreener.com/solana/pair1",
		Score:        60,
		SniperLevel:  models.SniperMedium,
		BundleRisk:   76,
		Trending:     false,
		AgeMinutes:   3,
		LiquidityUSD: 12000,
		MarketCapUSD: 50000,
		Volume5mUSD:  11000,
		DetectedAt:   time.Now(),
	}
}

func TestFormatAlert(t *testing.T) {
	msg := FormatAlert(sampleAlert())

	for _, want := range []string{
		"NEW ALPHA",
		"Age: 3m",
		"Alpha Score: 60/100",
		"$50000",
		"$12000",
		"$11000",
		"Bundles: 76%",
		"Snipers: Medium",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatAlert_TrendingHeadline(t *testing.T) {
	a := sampleAlert()
	a.Trending = true

	if msg := FormatAlert(a); !strings.Contains(msg, "HOT ALPHA") {
		t.Errorf("trending alert should use the HOT headline:\n%s", msg)
	}
}

func TestFormatAlert_FallsBackToNameAndAddress(t *testing.T) {
	a := sampleAlert()
	a.Symbol = ""
	if msg := FormatAlert(a); !strings.Contains(msg, "Alpha Token") {
		t.Errorf("expected name fallback:\n%s", msg)
	}

	a.Name = ""
	if msg := FormatAlert(a); !strings.Contains(msg, escapeMarkdownV2(a.PairAddress)) {
		t.Errorf("expected pair address fallback:\n%s", msg)
	}
}

func TestFormatAlert_EscapesMarkdown(t *testing.T) {
	a := sampleAlert()
	a.Symbol = "A*B_C"

	msg := FormatAlert(a)
	if !strings.Contains(msg, `A\*B\_C`) {
		t.Errorf("special characters must be escaped for MarkdownV2:\n%s", msg)
	}
}

type stubHistory struct {
	alerts []models.Alert
	err    error
}

func (s *stubHistory) TopAlerts(k int) ([]models.Alert, error) {
	if s.err != nil {
		return nil, s.err
	}
	if k < len(s.alerts) {
		return s.alerts[:k], nil
	}
	return s.alerts, nil
}

func TestTopMessage(t *testing.T) {
	second := sampleAlert()
	second.Symbol = "BETA"
	second.Score = 45

	tg := &Telegram{history: &stubHistory{alerts: []models.Alert{sampleAlert(), second}}}
	msg := tg.topMessage(5)

	for _, want := range []string{
		"Top 2 alerts",
		`1\. ALPHA \(60/100\)`,
		`2\. BETA \(45/100\)`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestTopMessage_Empty(t *testing.T) {
	tg := &Telegram{history: &stubHistory{}}
	if msg := tg.topMessage(5); !strings.Contains(msg, "No alerts recorded") {
		t.Errorf("unexpected message for empty history: %s", msg)
	}
}

func TestTopMessage_NoHistory(t *testing.T) {
	tg := &Telegram{}
	if msg := tg.topMessage(5); !strings.Contains(msg, "unavailable") {
		t.Errorf("unexpected message without history backend: %s", msg)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"50.5%", `50\.5%`},
		{"a_b*c[d]", `a\_b\*c\[d\]`},
		{"", ""},
	}
	for _, tc := range cases {
		if got := escapeMarkdownV2(tc.in); got != tc.want {
			t.Errorf("escapeMarkdownV2(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
