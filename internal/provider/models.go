package provider

// ModelType identifies a standard data model that a Fetcher serves.
type ModelType string

// --- Equity / Price ---
const (
	ModelEquityHistorical ModelType = "EquityHistorical" // daily closes for a look-back window
	ModelEquityInfo       ModelType = "EquityInfo"       // profile plus valuation metrics
)

// --- Equity / Calendar ---
const (
	ModelCalendarEarnings ModelType = "CalendarEarnings"
)

// --- Equity / Discovery ---
const (
	ModelEquityLosers ModelType = "EquityLosers"
	ModelEquityPeers  ModelType = "EquityPeers"
)

// --- Reference ---
const (
	ModelReferenceTickers ModelType = "ReferenceTickers" // static symbol/sector/industry snapshot
)

// --- News ---
const (
	ModelCompanyNews   ModelType = "CompanyNews"   // articles with per-ticker sentiment
	ModelDropHeadlines ModelType = "DropHeadlines" // search-feed headlines about a move
)

// --- Equity / Ownership ---
const (
	ModelGovernmentTrades ModelType = "GovernmentTrades" // congressional disclosures
)

// AllModels lists every model type in display order.
func AllModels() []ModelType {
	return []ModelType{
		ModelEquityHistorical,
		ModelEquityInfo,
		ModelCalendarEarnings,
		ModelEquityLosers,
		ModelEquityPeers,
		ModelReferenceTickers,
		ModelCompanyNews,
		ModelDropHeadlines,
		ModelGovernmentTrades,
	}
}
