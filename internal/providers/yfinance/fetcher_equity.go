package yfinance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/stockdash/internal/provider"
)

// infoModules are the quoteSummary modules merged into one company record.
var infoModules = []string{"price", "assetProfile", "summaryDetail", "defaultKeyStatistics", "financialData"}

const defaultDays = 30

// --- EquityHistorical fetcher ---

type equityHistoricalFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newEquityHistoricalFetcher(p *Provider, deps provider.Deps) *equityHistoricalFetcher {
	return &equityHistoricalFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimit(
			providerName,
			provider.ModelEquityHistorical,
			"Daily closing prices from Yahoo Finance",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamDays},
			deps, 5, time.Second,
		),
		p: p,
	}
}

// Fetch returns one record per trading day: {"date": unix seconds,
// "close": float64 or nil, "volume": int64 or nil}. ParamDays is the
// number of trading days requested.
func (f *equityHistoricalFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	days := defaultDays
	if n, err := strconv.Atoi(params[provider.ParamDays]); err == nil && n > 0 {
		days = n
	}

	return f.Load(ctx, params, func(ctx context.Context) (*provider.RawPayload, error) {
		q := url.Values{"range": {fmt.Sprintf("%dd", days)}, "interval": {"1d"}}
		u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.p.baseURL, url.PathEscape(symbol), q.Encode())
		_, body, err := envelope(ctx, &f.BaseFetcher, u, "chart", symbol)
		if err != nil {
			return nil, err
		}
		var resp yfChartResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, provider.Malformed("chart: %w", err)
		}
		if len(resp.Chart.Result) == 0 {
			return nil, provider.NoData("no chart result for %s", symbol)
		}
		return &provider.RawPayload{Records: chartRecords(resp.Chart.Result[0])}, nil
	})
}

// chartRecords aligns timestamps with the close and volume series.
func chartRecords(result yfChartResult) []provider.Record {
	var q yfQuoteSeries
	if len(result.Indicators.Quote) > 0 {
		q = result.Indicators.Quote[0]
	}
	records := make([]provider.Record, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		rec := provider.Record{"date": ts, "close": nil, "volume": nil}
		if i < len(q.Close) && q.Close[i] != nil {
			rec["close"] = *q.Close[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			rec["volume"] = *q.Volume[i]
		}
		if tz := result.Meta.ExchangeTimezoneName; tz != "" {
			rec["timezone"] = tz
		}
		records = append(records, rec)
	}
	return records
}

// --- EquityInfo fetcher ---

type equityInfoFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newEquityInfoFetcher(p *Provider, deps provider.Deps) *equityInfoFetcher {
	return &equityInfoFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimit(
			providerName,
			provider.ModelEquityInfo,
			"Company profile, valuation and financial metrics from Yahoo Finance",
			[]string{provider.ParamSymbol},
			nil,
			deps, 5, time.Second,
		),
		p: p,
	}
}

// Fetch returns a single record holding the quoteSummary modules as nested
// objects, e.g. {"assetProfile": {...}, "summaryDetail": {...}}.
func (f *equityInfoFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	return f.Load(ctx, params, func(ctx context.Context) (*provider.RawPayload, error) {
		q := url.Values{"modules": {strings.Join(infoModules, ",")}}
		u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", f.p.baseURL, url.PathEscape(symbol), q.Encode())
		first, _, err := envelope(ctx, &f.BaseFetcher, u, "quoteSummary", symbol)
		if err != nil {
			return nil, err
		}
		obj, ok := first.(map[string]any)
		if !ok {
			return nil, provider.Malformed("quoteSummary result: expected object")
		}
		return &provider.RawPayload{Records: []provider.Record{obj}}, nil
	})
}
