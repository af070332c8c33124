package models

import "github.com/guregu/null/v6"

// DropRecord is one top-loser row after the reference join and live-metric
// enrichment. Reference and live fields stay null when a lookup missed.
type DropRecord struct {
	Symbol           string      `json:"symbol"`
	Name             null.String `json:"name"`
	Change           null.Float  `json:"change"`
	ChangePercent    float64     `json:"change_percent"`
	Price            null.Float  `json:"price"`
	Exchange         null.String `json:"exchange"`
	Sector           null.String `json:"sector"`
	Industry         null.String `json:"industry"`
	Type             null.String `json:"type"`
	MarketCap        null.Float  `json:"market_cap"`
	Volume           null.Float  `json:"volume"`
	FiftyTwoWeekLow  null.Float  `json:"fifty_two_week_low"`
	FiftyTwoWeekHigh null.Float  `json:"fifty_two_week_high"`
}

// DropTable is the result of a drop query.
type DropTable struct {
	Threshold           float64      `json:"threshold"`
	Sector              string       `json:"sector,omitempty"`
	Industry            string       `json:"industry,omitempty"`
	Type                string       `json:"type,omitempty"`
	MarketCapPercentile float64      `json:"market_cap_percentile,omitempty"`
	Rows                []DropRecord `json:"rows"`
}

// InsiderTrade is one congressional trading disclosure.
type InsiderTrade struct {
	Chamber          string      `json:"chamber"` // "house" or "senate"
	Filer            string      `json:"filer"`
	Ticker           string      `json:"ticker"`
	TransactionDate  string      `json:"transaction_date"`
	DisclosureDate   null.String `json:"disclosure_date"`
	AssetDescription null.String `json:"asset_description"`
	Type             null.String `json:"type"`
	Amount           null.String `json:"amount"`
	Owner            null.String `json:"owner"`
	Party            null.String `json:"party"`
	Sector           null.String `json:"sector"`
	State            null.String `json:"state"`
	Link             null.String `json:"link"`
}

// Chamber names.
const (
	ChamberHouse  = "house"
	ChamberSenate = "senate"
)

// InsiderTradeReport groups a symbol's disclosures by chamber, newest first.
type InsiderTradeReport struct {
	Symbol       string         `json:"symbol"`
	LookbackDays int            `json:"lookback_days"`
	House        []InsiderTrade `json:"house"`
	Senate       []InsiderTrade `json:"senate"`
}

// Len returns the total number of trades across both chambers.
func (r InsiderTradeReport) Len() int { return len(r.House) + len(r.Senate) }
