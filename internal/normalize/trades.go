package normalize

import (
	"sort"
	"strings"

	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// InsiderTrades converts one chamber's disclosure records into trades for
// symbol, newest transaction first. When since (YYYY-MM-DD) is set, only
// trades dated strictly after it are kept; undated trades are dropped.
func InsiderTrades(chamber, symbol, since string, records []provider.Record) []models.InsiderTrade {
	chamber = strings.ToLower(chamber)
	symbol = utils.NormalizeSymbol(symbol)

	trades := make([]models.InsiderTrade, 0, len(records))
	for _, rec := range records {
		ticker := symbolOf(rec, "ticker", "symbol")
		if symbol != "" && ticker != symbol {
			continue
		}
		date := Date(rec["transaction_date"])
		if since != "" && (date == "" || date <= since) {
			continue
		}
		trade := models.InsiderTrade{
			Chamber:          chamber,
			Filer:            String(first(rec, "representative", "senator", "name")).ValueOrZero(),
			Ticker:           ticker,
			TransactionDate:  date,
			AssetDescription: String(rec["asset_description"]),
			Type:             String(rec["type"]),
			Amount:           String(rec["amount"]),
			Owner:            String(rec["owner"]),
			Party:            String(rec["party"]),
			Sector:           String(rec["sector"]),
			State:            String(first(rec, "state", "district")),
			Link:             String(rec["ptr_link"]),
		}
		if d := Date(rec["disclosure_date"]); d != "" {
			trade.DisclosureDate.SetValid(d)
		}
		trades = append(trades, trade)
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].TransactionDate > trades[j].TransactionDate
	})
	return trades
}
