// Package finnhub implements the Finnhub.io data provider. Only the
// company peers endpoint is used: it returns the symbols Finnhub groups
// with a company by sub-industry.
//
// Free tier: 60 calls/minute.
// Docs: https://finnhub.io/docs/api/company-peers
package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/stockdash/internal/provider"
)

const (
	providerName   = "finnhub"
	DefaultBaseURL = "https://finnhub.io/api/v1"
	credAPIKey     = "api_key"
)

// Provider implements provider.Provider for Finnhub.
type Provider struct {
	provider.BaseProvider
	baseURL string
	token   string
}

// New creates a new Finnhub provider. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, deps provider.Deps) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Finnhub - company peers",
			"https://finnhub.io",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Finnhub API token",
					Required:    true,
					EnvVar:      "FINNHUB_API_KEY",
				},
			},
		),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	p.RegisterFetcher(newEquityPeersFetcher(p, deps))
	return p
}

// Init stores the API token.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.token = credentials[credAPIKey]
	return nil
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
			"Company peers in the same sub-industry from Finnhub",
			[]string{provider.ParamSymbol},
			nil,
			deps, 60, time.Minute,
		),
		p: p,
	}
}

func (f *equityPeersFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	return f.Load(ctx, params, func(ctx context.Context) (*provider.RawPayload, error) {
		q := url.Values{"symbol": {symbol}, "token": {f.p.token}}
		v, err := f.GetJSON(ctx, f.p.baseURL+"/stock/peers?"+q.Encode())
		if err != nil {
			return nil, err
		}
		if obj, ok := v.(map[string]any); ok {
			if msg, ok := obj["error"].(string); ok {
				return nil, provider.RateLimited("finnhub: %s", msg)
			}
		}
		arr, ok := v.([]any)
		if !ok {
			return nil, provider.Malformed("expected array of symbols, got %T", v)
		}
		if len(arr) == 0 {
			return nil, provider.NoData("no peers for %s", symbol)
		}

		records := make([]provider.Record, 0, len(arr))
		for i, el := range arr {
			s, ok := el.(string)
			if !ok {
				return nil, provider.Malformed("peer %d: expected string, got %s", i, fmt.Sprint(el))
			}
			records = append(records, provider.Record{"symbol": s})
		}
		return &provider.RawPayload{Records: records}, nil
	})
}
