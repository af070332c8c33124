package present

import (
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/stockdash/pkg/models"
)

// DropTable renders the day's decliners.
func DropTable(t *models.DropTable) string {
	heading := fmt.Sprintf("Drops beyond %.0f%%", t.Threshold*100)
	var filters []string
	for _, f := range []string{t.Sector, t.Industry, t.Type} {
		if f != "" {
			filters = append(filters, f)
		}
	}
	if len(filters) > 0 {
		heading += " in " + strings.Join(filters, " / ")
	}
	if len(t.Rows) == 0 {
		return join(title(heading), NoData("drops"))
	}

	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = []string{
			r.Symbol,
			Text(r.Name, 28),
			change(r.ChangePercent),
			Price(r.Price),
			Text(r.Sector, 22),
			Text(r.Industry, 28),
			Money(r.MarketCap),
			Count(r.Volume),
			Price(r.FiftyTwoWeekLow) + " - " + Price(r.FiftyTwoWeekHigh),
		}
	}
	return join(title(heading), render(
		[]string{"Symbol", "Name", "Change", "Price", "Sector", "Industry", "Market cap", "Volume", "52w range"},
		rows,
	))
}

// moneyColumns are benchmark columns rendered as dollar amounts.
var moneyColumns = map[string]bool{
	"marketCap": true, "totalCash": true, "totalRevenue": true, "operatingCashflow": true,
	"grossProfits": true, "freeCashflow": true,
}

// countColumns are benchmark columns rendered as whole quantities.
var countColumns = map[string]bool{
	"fullTimeEmployees": true, "sharesShort": true, "sharesOutstanding": true,
}

// BenchmarkTable renders a competitor comparison, one row per company.
func BenchmarkTable(t *models.BenchmarkTable) string {
	heading := "Competitors of " + t.Symbol
	if len(t.Rows) == 0 {
		return join(title(heading), NoData(t.Symbol+" competitors"))
	}
	headers := append([]string{"Symbol", "Name"}, t.Columns...)
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		row := []string{r.Symbol, Text(r.Name, 24)}
		for _, c := range t.Columns {
			row = append(row, cell(c, r.Values[c]))
		}
		rows[i] = row
	}
	out := []string{title(heading), render(headers, rows)}
	for _, s := range t.Skipped {
		out = append(out, mutedStyle.Render(fmt.Sprintf("skipped %s: %s", s.Symbol, s.Reason)))
	}
	return join(out...)
}

func cell(column string, c models.Cell) string {
	switch {
	case c.Text.Valid:
		return Text(c.Text, 32)
	case moneyColumns[column]:
		return Money(c.Num)
	case countColumns[column]:
		return Count(c.Num)
	default:
		return Number(c.Num)
	}
}

// PeerStats renders the per-metric peer summary of a benchmark.
func PeerStats(stats []models.PeerStat) string {
	if len(stats) == 0 {
		return NoData("peer statistics")
	}
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{s.Metric, Number(s.Base), Number(s.PeerMedian), Number(s.PeerMean), Number(s.Percentile), fmt.Sprint(s.Count)}
	}
	return render([]string{"Metric", "Base", "Peer median", "Peer mean", "Percentile", "Peers"}, rows)
}

// SentimentLine renders a one-line sentiment summary.
func SentimentLine(s models.SentimentSummary) string {
	if s.NoData || !s.Score.Valid {
		return fmt.Sprintf("%s sentiment: %s", s.Symbol, mutedStyle.Render("no data"))
	}
	score := fmt.Sprintf("%+.3f", s.Score.Float64)
	if s.Score.Float64 < 0 {
		score = lossStyle.Render(score)
	} else {
		score = gainStyle.Render(score)
	}
	return fmt.Sprintf("%s sentiment: %s (%s) from %d articles", s.Symbol, score, s.Label, s.Rows)
}

// NewsTable renders the news report with its sentiment line on top.
func NewsTable(r *models.NewsReport, now time.Time) string {
	head := join(title("News for "+r.Symbol), SentimentLine(r.Sentiment))
	if len(r.Articles) == 0 {
		return join(head, NoData(r.Symbol+" news"))
	}
	rows := make([][]string, len(r.Articles))
	for i, a := range r.Articles {
		rows[i] = []string{
			Ago(a.TimePublished, now),
			truncate(a.Title, 60),
			a.Source,
			Price(a.RelevanceScore),
			signedScore(a.SentimentScore),
			a.URL,
		}
	}
	return join(head, render([]string{"Published", "Title", "Source", "Relevance", "Sentiment", "URL"}, rows))
}

// TradesTable renders congressional trades, House first.
func TradesTable(r *models.InsiderTradeReport) string {
	heading := fmt.Sprintf("Congressional trades in %s, last %d days", r.Symbol, r.LookbackDays)
	if r.Len() == 0 {
		return join(title(heading), NoData(r.Symbol+" trades"))
	}
	var rows [][]string
	for _, group := range [][]models.InsiderTrade{r.House, r.Senate} {
		for _, tr := range group {
			rows = append(rows, []string{
				tr.Chamber,
				tr.TransactionDate,
				Text(tr.DisclosureDate, 0),
				tr.Filer,
				Text(tr.Party, 12),
				Text(tr.Type, 16),
				Text(tr.Amount, 24),
				Text(tr.Owner, 10),
			})
		}
	}
	return join(title(heading), render(
		[]string{"Chamber", "Traded", "Disclosed", "Filer", "Party", "Type", "Amount", "Owner"},
		rows,
	))
}

// HeadlinesTable renders search headlines with their keyword tone.
func HeadlinesTable(symbol string, hs []models.Headline, now time.Time) string {
	heading := "Why did " + symbol + " drop?"
	if len(hs) == 0 {
		return join(title(heading), NoData(symbol+" headlines"))
	}
	rows := make([][]string, len(hs))
	for i, h := range hs {
		tone := NA
		if h.Tone.Valid {
			tone = fmt.Sprintf("%+.2f", h.Tone.Float64)
		}
		rows[i] = []string{Ago(h.Published, now), truncate(h.Title, 70), h.Source, tone}
	}
	return join(title(heading), render([]string{"Published", "Headline", "Source", "Tone"}, rows))
}

// Dashboard renders the per-symbol page: profile, last close, price change
// over the window, trend and earnings.
func Dashboard(d *models.StockDashboard) string {
	p := d.Profile
	out := []string{
		title(fmt.Sprintf("%s  %s", d.Symbol, Text(p.Name, 0))),
		fmt.Sprintf("%s / %s  cap %s", Text(p.Sector, 0), Text(p.Industry, 0), Money(p.MarketCap)),
	}
	if n := len(d.Prices); n > 0 {
		firstBar, last := d.Prices[0], d.Prices[n-1]
		line := fmt.Sprintf("Close %.2f on %s", last.Close, last.Date)
		if firstBar.Close != 0 {
			line += fmt.Sprintf(", %s over %s", change((last.Close-firstBar.Close)/firstBar.Close*100), d.Range)
		}
		out = append(out, line)
	}
	if t := d.Trend; t != nil {
		drawdown := NA
		if t.MaxDrawdown.Valid {
			drawdown = change(t.MaxDrawdown.Float64)
		}
		out = append(out, fmt.Sprintf("SMA20 %s  SMA50 %s  RSI14 %s (%s)  max drawdown %s",
			Price(t.SMA20), Price(t.SMA50), Price(t.RSI14), t.Signal, drawdown))
	}
	if d.NextEarnings != nil {
		out = append(out, fmt.Sprintf("Next earnings %s, EPS estimate %s", d.NextEarnings.Date, Number(d.NextEarnings.EPSEstimated)))
	}
	if len(d.Earnings) == 0 {
		return join(append(out, NoData(d.Symbol+" earnings"))...)
	}
	rows := make([][]string, len(d.Earnings))
	for i, e := range d.Earnings {
		surprise := NA
		if e.SurprisePct.Valid {
			surprise = change(e.SurprisePct.Float64)
		}
		rows[i] = []string{e.Date, Number(e.EPSEstimated), Number(e.EPSActual), surprise, Money(e.RevenueActual)}
	}
	return join(append(out, render([]string{"Date", "EPS est.", "EPS", "Surprise", "Revenue"}, rows))...)
}
