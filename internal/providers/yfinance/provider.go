// Package yfinance implements the Yahoo Finance data provider.
// It wraps Yahoo Finance's public APIs (v8 chart, v10 quoteSummary) into
// the standard provider/fetcher framework.
//
// Yahoo Finance is a free, no-API-key provider.
package yfinance

import (
	"context"
	"strings"

	"github.com/seenimoa/stockdash/internal/provider"
)

const (
	providerName   = "yfinance"
	DefaultBaseURL = "https://query2.finance.yahoo.com"
)

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// New creates a new YFinance provider and registers all fetchers. An
// empty baseURL uses DefaultBaseURL.
func New(baseURL string, deps provider.Deps) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance - free daily prices and company metrics",
			"https://finance.yahoo.com",
			nil, // no credentials required
		),
		baseURL: strings.TrimRight(baseURL, "/"),
	}

	// --- Equity / Price ---
	p.RegisterFetcher(newEquityHistoricalFetcher(p, deps))

	// --- Equity / Profile + metrics ---
	p.RegisterFetcher(newEquityInfoFetcher(p, deps))

	return p
}

// --- Shared helpers ---

// envelope returns obj[outer].result after checking both keys exist. A
// non-null error object means Yahoo does not know the symbol.
func envelope(ctx context.Context, f *provider.BaseFetcher, url, outer, symbol string) (any, []byte, error) {
	body, err := f.Get(ctx, url, provider.JSONHeaders())
	if err != nil {
		return nil, nil, err
	}
	v, err := provider.DecodeJSON(body)
	if err != nil {
		return nil, nil, err
	}
	inner, err := provider.ObjectField(v, outer)
	if err != nil {
		return nil, nil, err
	}
	if obj, ok := inner.(map[string]any); ok {
		if e, ok := obj["error"].(map[string]any); ok {
			return nil, nil, provider.NoData("%s: %v", symbol, e["description"])
		}
	}
	result, err := provider.ObjectField(inner, "result")
	if err != nil {
		return nil, nil, err
	}
	arr, ok := result.([]any)
	if !ok || len(arr) == 0 {
		return nil, nil, provider.NoData("no %s result for %s", outer, symbol)
	}
	return arr[0], body, nil
}
