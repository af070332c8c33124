// Package models defines the canonical rows produced by the normalizer and
// consumed by the aggregation pipeline.
package models

import "github.com/guregu/null/v6"

// DateLayout is the canonical trading-day date representation.
const DateLayout = "2006-01-02"

// PriceBar is one daily close for a symbol. Bars are ordered by date
// ascending; PercentChange is null on the first bar of a series.
type PriceBar struct {
	Symbol        string     `json:"symbol"`
	Date          string     `json:"date"` // YYYY-MM-DD, America/New_York
	Close         float64    `json:"close"`
	PercentChange null.Float `json:"percent_change"` // percent, e.g. -2.5
}

// EarningsEvent is one reported or scheduled earnings release.
type EarningsEvent struct {
	Symbol           string     `json:"symbol"`
	Date             string     `json:"date"`
	Time             string     `json:"time,omitempty"` // "bmo", "amc" when known
	EPSEstimated     null.Float `json:"eps_estimated"`
	EPSActual        null.Float `json:"eps_actual"`
	SurprisePct      null.Float `json:"surprise_pct"`
	RevenueEstimated null.Float `json:"revenue_estimated"`
	RevenueActual    null.Float `json:"revenue_actual"`
}

// Reported reports whether the event already has an actual EPS.
func (e EarningsEvent) Reported() bool { return e.EPSActual.Valid }

// CompanyProfile is slow-changing reference data for a symbol. Every field
// besides Symbol is nullable because it is left-joined onto dynamic rows.
type CompanyProfile struct {
	Symbol            string      `json:"symbol"`
	Name              null.String `json:"name"`
	Sector            null.String `json:"sector"`
	Industry          null.String `json:"industry"`
	Exchange          null.String `json:"exchange"`
	Type              null.String `json:"type"` // "stock", "etf", ...
	Description       null.String `json:"description"`
	Website           null.String `json:"website"`
	MarketCap         null.Float  `json:"market_cap"`
	SharesOutstanding null.Float  `json:"shares_outstanding"`
	Employees         null.Float  `json:"employees"`
	Address           null.String `json:"address"`
	City              null.String `json:"city"`
	State             null.String `json:"state"`
	Country           null.String `json:"country"`
}

// CompanyInfo pairs a profile with the flattened metric record it came from.
// Fields keeps every vendor key (absent keys are simply missing, present
// keys with no value are nil).
type CompanyInfo struct {
	Profile CompanyProfile `json:"profile"`
	Fields  map[string]any `json:"fields"`
}

// Has reports whether the vendor payload carried the given key at all.
func (c CompanyInfo) Has(key string) bool {
	_, ok := c.Fields[key]
	return ok
}

// StockDashboard is the per-symbol page: profile, price window and earnings.
type StockDashboard struct {
	Symbol       string          `json:"symbol"`
	Range        string          `json:"range"`
	Days         int             `json:"days"`
	ShowNext     bool            `json:"show_next"`
	Profile      CompanyProfile  `json:"profile"`
	Prices       []PriceBar      `json:"prices"`
	Earnings     []EarningsEvent `json:"earnings"`
	NextEarnings *EarningsEvent  `json:"next_earnings,omitempty"`
	Trend        *Trend          `json:"trend,omitempty"`
}

// TrendSignal classifies the latest RSI reading.
type TrendSignal string

const (
	SignalOverbought TrendSignal = "overbought"
	SignalOversold   TrendSignal = "oversold"
	SignalNeutral    TrendSignal = "neutral"
)

// Trend summarizes the closes of a dashboard's price window. Indicators
// that need more bars than the window holds are null.
type Trend struct {
	Last           float64     `json:"last"`
	PeriodChange   null.Float  `json:"period_change"` // percent, first to last close
	MaxDrawdown    null.Float  `json:"max_drawdown"`  // percent, <= 0
	SMA20          null.Float  `json:"sma_20"`
	SMA50          null.Float  `json:"sma_50"`
	EMA20          null.Float  `json:"ema_20"`
	RSI14          null.Float  `json:"rsi_14"`
	BollingerUpper null.Float  `json:"bollinger_upper"`
	BollingerLower null.Float  `json:"bollinger_lower"`
	Signal         TrendSignal `json:"signal"`
}
