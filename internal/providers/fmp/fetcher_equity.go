package fmp

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/seenimoa/stockdash/internal/provider"
)

// --- EquityLosers fetcher ---

type equityLosersFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newEquityLosersFetcher(p *Provider, deps provider.Deps) *equityLosersFetcher {
	return &equityLosersFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimit(
			providerName,
			provider.ModelEquityLosers,
			"Today's largest decliners from Financial Modeling Prep",
			nil, nil,
			deps, 5, time.Second,
		),
		p: p,
	}
}

func (f *equityLosersFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Load(ctx, params, func(ctx context.Context) (*provider.RawPayload, error) {
		v, err := fetchJSON(ctx, &f.BaseFetcher, f.p.url("/v3/stock_market/losers", nil))
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
			"Company profile from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			nil,
			deps, 5, time.Second,
		),
		p: p,
	}
}

func (f *equityInfoFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	return f.Load(ctx, params, func(ctx context.Context) (*provider.RawPayload, error) {
		v, err := fetchJSON(ctx, &f.BaseFetcher, f.p.url("/v3/profile/"+url.PathEscape(symbol), nil))
		if err != nil {
			return nil, err
		}
		records, err := provider.RecordsFromArray(v)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, provider.NoData("no profile for %s", symbol)
		}
		return &provider.RawPayload{Records: records[:1]}, nil
	})
}

// --- EquityPeers fetcher ---

type equityPeersFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newEquityPeersFetcher(p *Provider, deps provider.Deps) *equityPeersFetcher {
	return &equityPeersFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimit(
			providerName,
			provider.ModelEquityPeers,
			"Stock peers from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			nil,
			deps, 5, time.Second,
		),
		p: p,
	}
}

func (f *equityPeersFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	return f.Load(ctx, params, func(ctx context.Context) (*provider.RawPayload, error) {
		u := f.p.url("/v4/stock_peers", url.Values{"symbol": {symbol}})
		body, err := f.Get(ctx, u, provider.JSONHeaders())
		if err != nil {
			return nil, err
		}
		v, err := provider.DecodeJSON(body)
		if err != nil {
			return nil, err
		}
		if err := checkErrorBody(v); err != nil {
			return nil, err
		}

		var results []fmpStockPeers
		if err := json.Unmarshal(body, &results); err != nil {
			return nil, provider.Malformed("stock_peers: %w", err)
		}
		if len(results) == 0 || len(results[0].PeersList) == 0 {
			return nil, provider.NoData("no peers for %s", symbol)
		}

		records := make([]provider.Record, 0, len(results[0].PeersList))
		for _, peer := range results[0].PeersList {
			records = append(records, provider.Record{"symbol": peer})
		}
		return &provider.RawPayload{Records: records}, nil
	})
}
