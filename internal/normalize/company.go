package normalize

import (
	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// infoModules is the merge order of quoteSummary modules. Earlier modules
// win when two carry the same key.
var infoModules = []string{"price", "assetProfile", "summaryDetail", "defaultKeyStatistics", "financialData"}

// fieldAliases maps other vendors' profile keys onto the Yahoo names used
// by benchmark columns. An alias only fills a key that is absent.
var fieldAliases = map[string]string{
	"companyName":       "longName",
	"mktCap":            "marketCap",
	"volAvg":            "averageVolume",
	"price":             "currentPrice",
	"description":       "longBusinessSummary",
	"address":           "address1",
	"exchangeShortName": "exchange",
}

// CompanyInfo merges an EquityInfo payload into one flat field map and
// derives the profile from it. An empty payload is NoDataFound.
func CompanyInfo(symbol string, records []provider.Record) (models.CompanyInfo, error) {
	symbol = utils.NormalizeSymbol(symbol)
	if len(records) == 0 {
		return models.CompanyInfo{}, provider.NoData("no company info for %s", symbol)
	}
	fields := mergeModules(records[0])
	for from, to := range fieldAliases {
		if v, ok := fields[from]; ok {
			if _, exists := fields[to]; !exists {
				fields[to] = v
			}
		}
	}
	return models.CompanyInfo{
		Profile: Profile(symbol, fields),
		Fields:  fields,
	}, nil
}

// mergeModules flattens each nested module into a single namespace.
// Top-level scalars are kept as they are.
func mergeModules(rec provider.Record) map[string]any {
	out := make(map[string]any)
	add := func(k string, v any) {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}

	seen := make(map[string]bool, len(infoModules))
	order := make([]string, 0, len(rec))
	for _, m := range infoModules {
		if _, ok := rec[m]; ok {
			order = append(order, m)
			seen[m] = true
		}
	}
	for _, k := range sortedKeys(rec) {
		if !seen[k] {
			order = append(order, k)
		}
	}

	for _, k := range order {
		v := rec[k]
		obj, ok := v.(map[string]any)
		if !ok {
			add(k, v)
			continue
		}
		flat := Flatten(obj)
		for _, fk := range sortedKeys(flat) {
			add(fk, flat[fk])
		}
	}
	return out
}

// Profile reads a company profile from a flat record of any vendor.
// Missing fields stay null.
func Profile(symbol string, rec map[string]any) models.CompanyProfile {
	if symbol == "" {
		symbol = symbolOf(rec)
	}
	return models.CompanyProfile{
		Symbol:            utils.NormalizeSymbol(symbol),
		Name:              String(first(rec, "longName", "shortName", "companyName", "name")),
		Sector:            String(rec["sector"]),
		Industry:          String(rec["industry"]),
		Exchange:          String(first(rec, "exchange", "exchangeName", "exchangeShortName")),
		Type:              String(first(rec, "type", "quoteType")),
		Description:       String(first(rec, "longBusinessSummary", "description")),
		Website:           String(rec["website"]),
		MarketCap:         Float(first(rec, "marketCap", "mktCap")),
		SharesOutstanding: Float(rec["sharesOutstanding"]),
		Employees:         Float(rec["fullTimeEmployees"]),
		Address:           String(first(rec, "address1", "address")),
		City:              String(rec["city"]),
		State:             String(rec["state"]),
		Country:           String(rec["country"]),
	}
}

// FloatField returns the first of keys present in fields as a float.
func FloatField(fields map[string]any, keys ...string) null.Float {
	return Float(first(fields, keys...))
}

// ReferenceIndex indexes a reference snapshot by normalized symbol. The
// first row for a symbol wins.
func ReferenceIndex(records []provider.Record) map[string]models.CompanyProfile {
	idx := make(map[string]models.CompanyProfile, len(records))
	for _, rec := range records {
		sym := symbolOf(rec)
		if sym == "" {
			continue
		}
		if _, dup := idx[sym]; dup {
			continue
		}
		idx[sym] = Profile(sym, rec)
	}
	return idx
}

// Losers converts top-loser records into unjoined drop rows, keeping the
// vendor order. Rows without a symbol or a parseable percent change are
// skipped.
func Losers(records []provider.Record) []models.DropRecord {
	rows := make([]models.DropRecord, 0, len(records))
	for _, rec := range records {
		sym := symbolOf(rec, "symbol", "ticker")
		pct := Float(first(rec, "changesPercentage", "changePercent", "change_percentage"))
		if sym == "" || !pct.Valid {
			continue
		}
		rows = append(rows, models.DropRecord{
			Symbol:        sym,
			Name:          String(first(rec, "name", "companyName")),
			Change:        Float(first(rec, "change", "change_amount")),
			ChangePercent: pct.Float64,
			Price:         Float(rec["price"]),
			Exchange:      String(rec["exchange"]),
		})
	}
	return rows
}

// Peers builds the competitor set: the base symbol first, then the
// vendor's peers in order without repeats.
func Peers(symbol string, records []provider.Record) models.CompetitorSet {
	symbol = utils.NormalizeSymbol(symbol)
	list := make([]string, 0, len(records)+1)
	list = append(list, symbol)
	for _, rec := range records {
		list = append(list, symbolOf(rec))
	}
	return models.CompetitorSet{Symbol: symbol, Peers: utils.DedupeSymbols(list)}
}
