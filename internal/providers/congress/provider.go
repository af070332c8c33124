// Package congress implements the congressional trade disclosure provider
// backed by the public House Stock Watcher and Senate Stock Watcher feeds.
// Each feed is a single JSON document covering every ticker; it is
// downloaded once per cache lifetime and filtered per symbol.
package congress

import (
	"context"
	"strings"
	"time"

	"github.com/seenimoa/stockdash/internal/provider"
)

const (
	providerName = "congress"

	ChamberHouse  = "house"
	ChamberSenate = "senate"

	DefaultHouseURL  = "https://house-stock-watcher-data.s3-us-west-2.amazonaws.com/data/all_transactions.json"
	DefaultSenateURL = "https://senate-stock-watcher-data.s3-us-west-2.amazonaws.com/aggregate/all_ticker_transactions.json"
)

// Provider implements provider.Provider for the disclosure feeds.
type Provider struct {
	provider.BaseProvider
	houseURL  string
	senateURL string
}

// New creates the provider. Empty URLs use the public feeds.
func New(houseURL, senateURL string, deps provider.Deps) *Provider {
	if houseURL == "" {
		houseURL = DefaultHouseURL
	}
	if senateURL == "" {
		senateURL = DefaultSenateURL
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"House and Senate stock watcher disclosure feeds",
			"https://housestockwatcher.com",
			nil,
		),
		houseURL:  houseURL,
		senateURL: senateURL,
	}
	p.RegisterFetcher(newGovernmentTradesFetcher(p, deps))
	return p
}

// --- GovernmentTrades fetcher ---

type governmentTradesFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newGovernmentTradesFetcher(p *Provider, deps provider.Deps) *governmentTradesFetcher {
	return &governmentTradesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimit(
			providerName,
			provider.ModelGovernmentTrades,
			"Congressional stock transactions for one ticker",
			[]string{provider.ParamSymbol, provider.ParamChamber},
			nil,
			deps, 2, time.Second,
		),
		p: p,
	}
}

// Fetch returns the chamber's transactions whose ticker equals the symbol.
// Each record carries a "chamber" field.
func (f *governmentTradesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	chamber := strings.ToLower(params[provider.ParamChamber])

	var load func(context.Context) (*provider.RawPayload, error)
	switch chamber {
	case ChamberHouse:
		load = f.loadHouse
	case ChamberSenate:
		load = f.loadSenate
	default:
		return nil, &provider.ErrMissingParam{Param: provider.ParamChamber}
	}

	// The whole feed is cached once per chamber, not per symbol.
	all, err := f.Load(ctx, provider.QueryParams{provider.ParamChamber: chamber}, load)
	if err != nil {
		return nil, provider.Classify(providerName, f.ModelType(), symbol, err)
	}

	var matched []provider.Record
	for _, rec := range all.Payload.Records {
		if t, _ := rec["ticker"].(string); strings.EqualFold(strings.TrimSpace(t), symbol) {
			matched = append(matched, rec)
		}
	}
	return &provider.FetchResult{
		Model: f.ModelType(),
		Payload: &provider.RawPayload{
			Vendor:  providerName,
			Model:   f.ModelType(),
			Symbol:  symbol,
			Records: matched,
		},
		FetchedAt: all.FetchedAt,
		Cached:    all.Cached,
	}, nil
}

// loadHouse reads the flat array of House transactions.
func (f *governmentTradesFetcher) loadHouse(ctx context.Context) (*provider.RawPayload, error) {
	v, err := f.GetJSON(ctx, f.p.houseURL)
	if err != nil {
		return nil, err
	}
	records, err := provider.RecordsFromArray(v)
	if err != nil {
		return nil, err
	}
	out := make([]provider.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, withChamber(rec, ChamberHouse, ""))
	}
	return &provider.RawPayload{Records: out}, nil
}

// loadSenate reads the per-ticker aggregate and flattens it into one record
// per transaction.
func (f *governmentTradesFetcher) loadSenate(ctx context.Context) (*provider.RawPayload, error) {
	v, err := f.GetJSON(ctx, f.p.senateURL)
	if err != nil {
		return nil, err
	}
	groups, err := provider.RecordsFromArray(v)
	if err != nil {
		return nil, err
	}

	var out []provider.Record
	for i, g := range groups {
		ticker, _ := g["ticker"].(string)
		txs, err := provider.ObjectField(map[string]any(g), "transactions")
		if err != nil {
			return nil, provider.Malformed("senate group %d: %w", i, err)
		}
		records, err := provider.RecordsFromArray(txs)
		if err != nil {
			return nil, provider.Malformed("senate group %d (%s): %w", i, ticker, err)
		}
		for _, rec := range records {
			out = append(out, withChamber(rec, ChamberSenate, ticker))
		}
	}
	return &provider.RawPayload{Records: out}, nil
}

// withChamber copies rec, tags it with the chamber and fills a missing
// ticker from the enclosing group.
func withChamber(rec provider.Record, chamber, ticker string) provider.Record {
	out := make(provider.Record, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	out["chamber"] = chamber
	if t, _ := out["ticker"].(string); (t == "" || t == "--") && ticker != "" {
		out["ticker"] = ticker
	}
	return out
}
