// Package fmp implements the Financial Modeling Prep (FMP) data provider.
// It serves the day's top losers, the historical earnings calendar, company
// profiles and a fallback peer list.
//
// Free tier: 250 requests/day.
// Docs: https://financialmodelingprep.com/developer/docs
package fmp

import (
	"context"
	"net/url"
	"strings"

	"github.com/seenimoa/stockdash/internal/provider"
)

const (
	providerName   = "fmp"
	DefaultBaseURL = "https://financialmodelingprep.com/api"
	credAPIKey     = "api_key"
)

// Provider implements provider.Provider for FMP.
type Provider struct {
	provider.BaseProvider
	baseURL string
	apiKey  string
}

// New creates a new FMP provider and registers all fetchers. An empty
// baseURL uses DefaultBaseURL.
func New(baseURL string, deps provider.Deps) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Financial Modeling Prep - market movers, earnings and profiles",
			"https://financialmodelingprep.com",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "FMP API key from financialmodelingprep.com",
					Required:    true,
					EnvVar:      "FMP_API_KEY",
				},
			},
		),
		baseURL: strings.TrimRight(baseURL, "/"),
	}

	// --- Equity / Discovery ---
	p.RegisterFetcher(newEquityLosersFetcher(p, deps))
	p.RegisterFetcher(newEquityPeersFetcher(p, deps))

	// --- Equity / Profile ---
	p.RegisterFetcher(newEquityInfoFetcher(p, deps))

	// --- Equity / Calendar ---
	p.RegisterFetcher(newCalendarEarningsFetcher(p, deps))

	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// APIKey returns the stored API key (used by fetchers).
func (p *Provider) APIKey() string {
	return p.apiKey
}

// --- Shared helpers ---

// url builds a full FMP API URL with the API key appended. path starts
// with the API version, e.g. "/v3/profile/AAPL".
func (p *Provider) url(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", p.apiKey)
	return p.baseURL + path + "?" + query.Encode()
}

// fetchJSON performs a GET request to FMP and decodes the response into a
// generic value, turning FMP's in-band error object into a source error.
func fetchJSON(ctx context.Context, f *provider.BaseFetcher, u string) (any, error) {
	v, err := f.GetJSON(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := checkErrorBody(v); err != nil {
		return nil, err
	}
	return v, nil
}

// checkErrorBody recognises {"Error Message": "..."} bodies, which FMP
// sends with status 200 for bad keys and exhausted quotas.
func checkErrorBody(v any) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	msg, ok := obj["Error Message"].(string)
	if !ok {
		return nil
	}
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "limit") || strings.Contains(lower, "upgrade") {
		return provider.RateLimited("fmp: %s", msg)
	}
	return provider.Malformed("fmp: %s", msg)
}
