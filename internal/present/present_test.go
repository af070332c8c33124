package present

import (
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/pkg/models"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   null.Float
		want string
	}{
		{null.FloatFrom(1.52e9), "$1.52B"},
		{null.FloatFrom(2.5e12), "$2.50T"},
		{null.FloatFrom(750e6), "$750.00M"},
		{null.FloatFrom(-3e6), "-$3.00M"},
		{null.Float{}, NA},
	}
	for _, tc := range tests {
		if got := Money(tc.in); got != tc.want {
			t.Errorf("Money(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCountAndNumber(t *testing.T) {
	if got := Count(null.FloatFrom(2345678)); got != "2,345,678" {
		t.Errorf("Count = %q", got)
	}
	if got := Number(null.FloatFrom(1234.25)); got != "1,234.25" {
		t.Errorf("Number = %q", got)
	}
	if Count(null.Float{}) != NA || Number(null.Float{}) != NA || Price(null.Float{}) != NA {
		t.Error("null values should render as n/a")
	}
	if got := Percent(-12.5); got != "-12.50%" {
		t.Errorf("Percent = %q", got)
	}
}

func TestText(t *testing.T) {
	if got := Text(null.StringFrom("Semiconductors"), 6); got != "Semic…" {
		t.Errorf("Text = %q", got)
	}
	if got := Text(null.StringFrom(""), 0); got != NA {
		t.Errorf("empty text = %q", got)
	}
}

func TestAgo(t *testing.T) {
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	if got := Ago(now.Add(-3*time.Hour), now); got != "3 hours ago" {
		t.Errorf("Ago = %q", got)
	}
	if got := Ago(time.Time{}, now); got != NA {
		t.Errorf("zero time = %q", got)
	}
}

func TestDropTable(t *testing.T) {
	table := &models.DropTable{
		Threshold: 0.10,
		Sector:    "Technology",
		Rows: []models.DropRecord{
			{Symbol: "DDD", ChangePercent: -15, MarketCap: null.FloatFrom(1.5e9), Volume: null.FloatFrom(2e6)},
			{Symbol: "CCC", ChangePercent: -12, Sector: null.StringFrom("Technology")},
		},
	}
	out := DropTable(table)
	for _, want := range []string{"Drops beyond 10% in Technology", "DDD", "-15.00%", "$1.50B", "2,000,000", "CCC", NA} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "DDD") > strings.Index(out, "CCC") {
		t.Error("row order not preserved")
	}
}

func TestDropTableEmpty(t *testing.T) {
	out := DropTable(&models.DropTable{Threshold: 0.2})
	if !strings.Contains(out, "No data for drops.") {
		t.Errorf("empty table = %q", out)
	}
}

func TestBenchmarkTable(t *testing.T) {
	table := &models.BenchmarkTable{
		Symbol:  "AAA",
		Columns: []string{"marketCap", "sector", "trailingPE"},
		Rows: []models.BenchmarkRow{{
			Symbol: "AAA",
			Name:   null.StringFrom("Aaa Inc"),
			Values: map[string]models.Cell{
				"marketCap":  models.NumberCell(null.FloatFrom(3e9)),
				"sector":     models.TextCell(null.StringFrom("Technology")),
				"trailingPE": models.NumberCell(null.Float{}),
			},
		}},
		Skipped: []models.SkippedPeer{{Symbol: "DDD", Reason: "missing column marketCap"}},
	}
	out := BenchmarkTable(table)
	for _, want := range []string{"Competitors of AAA", "Aaa Inc", "$3.00B", "Technology", NA, "skipped DDD: missing column marketCap"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSentimentLine(t *testing.T) {
	got := SentimentLine(models.SentimentSummary{Symbol: "XYZ", Score: null.FloatFrom(-0.025), Label: "Neutral", Rows: 2})
	if !strings.Contains(got, "-0.025") || !strings.Contains(got, "Neutral") || !strings.Contains(got, "2 articles") {
		t.Errorf("SentimentLine = %q", got)
	}
	if got := SentimentLine(models.SentimentSummary{Symbol: "XYZ", NoData: true}); !strings.Contains(got, "no data") {
		t.Errorf("no data line = %q", got)
	}
}

func TestNewsTable(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	report := &models.NewsReport{
		Symbol: "XYZ",
		Articles: []models.NewsRow{{
			URL: "https://news.example.com/1", Title: "XYZ beats", Source: "Wire",
			TimePublished: now.Add(-2 * time.Hour), RelevanceScore: null.FloatFrom(0.5), SentimentScore: null.FloatFrom(0.2),
		}},
		Sentiment: models.SentimentSummary{Symbol: "XYZ", NoData: true},
	}
	out := NewsTable(report, now)
	for _, want := range []string{"News for XYZ", "XYZ beats", "2 hours ago", "0.50", "+0.200"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTradesTable(t *testing.T) {
	report := &models.InsiderTradeReport{
		Symbol:       "NVDA",
		LookbackDays: 365,
		House:        []models.InsiderTrade{{Chamber: "house", Filer: "Hon. Jane Doe", TransactionDate: "2024-01-15"}},
		Senate:       []models.InsiderTrade{{Chamber: "senate", Filer: "A Senator", TransactionDate: "2024-03-15"}},
	}
	out := TradesTable(report)
	if strings.Index(out, "Hon. Jane Doe") > strings.Index(out, "A Senator") {
		t.Errorf("house should come first:\n%s", out)
	}
	if !strings.Contains(out, "last 365 days") {
		t.Errorf("missing heading:\n%s", out)
	}
}

func TestHeadlinesTable(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	hs := []models.Headline{
		{Title: "XYZ plunges", Source: "Reuters", Published: now.Add(-time.Hour), Tone: null.FloatFrom(-1)},
		{Title: "XYZ explained"},
	}
	out := HeadlinesTable("XYZ", hs, now)
	for _, want := range []string{"Why did XYZ drop?", "XYZ plunges", "-1.00", "1 hour ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDashboard(t *testing.T) {
	d := &models.StockDashboard{
		Symbol: "XYZ",
		Range:  "6 months",
		Profile: models.CompanyProfile{
			Name:   null.StringFrom("Xyz Corp"),
			Sector: null.StringFrom("Technology"),
		},
		Prices: []models.PriceBar{
			{Date: "2024-01-02", Close: 100},
			{Date: "2024-06-03", Close: 90},
		},
		NextEarnings: &models.EarningsEvent{Date: "2024-07-25", EPSEstimated: null.FloatFrom(1.6)},
		Trend: &models.Trend{
			Last:        90,
			MaxDrawdown: null.FloatFrom(-10),
			RSI14:       null.FloatFrom(25),
			Signal:      models.SignalOversold,
		},
	}
	out := Dashboard(d)
	for _, want := range []string{"XYZ  Xyz Corp", "Close 90.00 on 2024-06-03", "-10.00%", "SMA20 n/a", "RSI14 25.00 (oversold)",
		"Next earnings 2024-07-25", "No data for XYZ earnings."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
