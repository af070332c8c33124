package fmp

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/stockdash/internal/provider"
)

// defaultEarningsLimit covers about five years of quarterly reports plus the
// next scheduled ones.
const defaultEarningsLimit = 20

// --- CalendarEarnings fetcher ---

type calendarEarningsFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newCalendarEarningsFetcher(p *Provider, deps provider.Deps) *calendarEarningsFetcher {
	return &calendarEarningsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimit(
			providerName,
			provider.ModelCalendarEarnings,
			"Historical and upcoming earnings dates with EPS from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			deps, 5, time.Second,
		),
		p: p,
	}
}

func (f *calendarEarningsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	limit := defaultEarningsLimit
	if n, err := strconv.Atoi(params[provider.ParamLimit]); err == nil && n > 0 {
		limit = n
	}

	return f.Load(ctx, params, func(ctx context.Context) (*provider.RawPayload, error) {
		u := f.p.url("/v3/historical/earning_calendar/"+url.PathEscape(symbol),
			url.Values{"limit": {strconv.Itoa(limit)}})
		v, err := fetchJSON(ctx, &f.BaseFetcher, u)
		if err != nil {
			return nil, err
		}
		records, err := provider.RecordsFromArray(v)
		if err != nil {
			return nil, err
		}
		return &provider.RawPayload{Records: records}, nil
	})
}
