// Package alphavantage implements the Alpha Vantage NEWS_SENTIMENT
// provider: market news articles with per-ticker relevance and sentiment
// scores.
//
// Free tier: 25 requests/day; throttling is reported in a 200 body.
// Docs: https://www.alphavantage.co/documentation/#news-sentiment
package alphavantage

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/stockdash/internal/provider"
)

const (
	providerName   = "alphavantage"
	DefaultBaseURL = "https://www.alphavantage.co/query"
	credAPIKey     = "api_key"

	defaultLimit = 50
	defaultSort  = "LATEST"
)

// Provider implements provider.Provider for Alpha Vantage.
type Provider struct {
	provider.BaseProvider
	baseURL string
	apiKey  string
}

// New creates a new Alpha Vantage provider. An empty baseURL uses
// DefaultBaseURL.
func New(baseURL string, deps provider.Deps) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Alpha Vantage - news with ticker sentiment",
			"https://www.alphavantage.co",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Alpha Vantage API key",
					Required:    true,
					EnvVar:      "ALPHAVANTAGE_API_KEY",
				},
			},
		),
		baseURL: baseURL,
	}
	p.RegisterFetcher(newCompanyNewsFetcher(p, deps))
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

// --- CompanyNews fetcher ---

type companyNewsFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newCompanyNewsFetcher(p *Provider, deps provider.Deps) *companyNewsFetcher {
	return &companyNewsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimit(
			providerName,
			provider.ModelCompanyNews,
			"News articles with ticker relevance and sentiment from Alpha Vantage",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit, provider.ParamTopics, provider.ParamSort},
			deps, 5, time.Minute,
		),
		p: p,
	}
}

// Fetch returns one record per feed article, as Alpha Vantage sends it.
func (f *companyNewsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	q := url.Values{
		"function": {"NEWS_SENTIMENT"},
		"tickers":  {params[provider.ParamSymbol]},
		"limit":    {strconv.Itoa(defaultLimit)},
		"sort":     {defaultSort},
	}
	if n, err := strconv.Atoi(params[provider.ParamLimit]); err == nil && n > 0 {
		q.Set("limit", strconv.Itoa(n))
	}
	if s := params[provider.ParamSort]; s != "" {
		q.Set("sort", strings.ToUpper(s))
	}
	if topics := params[provider.ParamTopics]; topics != "" {
		q.Set("topics", topics)
	}

	return f.Load(ctx, params, func(ctx context.Context) (*provider.RawPayload, error) {
		q.Set("apikey", f.p.apiKey)
		v, err := f.GetJSON(ctx, f.p.baseURL+"?"+q.Encode())
		if err != nil {
			return nil, err
		}
		if err := checkNotice(v); err != nil {
			return nil, err
		}
		feed, err := provider.ObjectField(v, "feed")
		if err != nil {
			return nil, err
		}
		records, err := provider.RecordsFromArray(feed)
		if err != nil {
			return nil, err
		}
		return &provider.RawPayload{Records: records}, nil
	})
}

// checkNotice maps the bodies Alpha Vantage returns instead of a feed.
// "Note" and "Information" carry throttling and quota messages; an
// "Error Message" means the request itself was rejected.
func checkNotice(v any) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	if _, ok := obj["feed"]; ok {
		return nil
	}
	for _, key := range []string{"Note", "Information"} {
		if msg, ok := obj[key].(string); ok {
			return provider.RateLimited("alphavantage: %s", msg)
		}
	}
	if msg, ok := obj["Error Message"].(string); ok {
		return provider.Malformed("alphavantage: %s", msg)
	}
	return nil
}
