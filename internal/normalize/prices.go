package normalize

import (
	"sort"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// PriceBars converts daily chart records into bars ordered by date.
// Records with no close or no parseable date are skipped; when a vendor
// repeats a date the last record wins. PercentChange is the change from
// the previous kept bar and is null on the first.
func PriceBars(symbol string, records []provider.Record) []models.PriceBar {
	symbol = utils.NormalizeSymbol(symbol)
	byDate := make(map[string]float64, len(records))
	for _, rec := range records {
		date := Date(rec["date"])
		closePrice := Float(rec["close"])
		if date == "" || !closePrice.Valid {
			continue
		}
		byDate[date] = closePrice.Float64
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	bars := make([]models.PriceBar, len(dates))
	for i, d := range dates {
		bars[i] = models.PriceBar{Symbol: symbol, Date: d, Close: byDate[d]}
		if i > 0 {
			bars[i].PercentChange = percentChange(bars[i-1].Close, bars[i].Close)
		}
	}
	return bars
}

// percentChange is (cur-prev)/prev in percent, null when prev is zero.
func percentChange(prev, cur float64) null.Float {
	if prev == 0 {
		return null.Float{}
	}
	return null.FloatFrom((cur - prev) / prev * 100)
}
