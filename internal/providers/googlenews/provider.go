// Package googlenews implements the Google News RSS search provider used to
// explain a price drop: it searches "why did <symbol> stock drop today" and
// returns the matching headlines.
package googlenews

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/stockdash/internal/provider"
)

const (
	providerName   = "googlenews"
	DefaultBaseURL = "https://news.google.com/rss/search"

	defaultLimit = 10
)

// Provider implements provider.Provider for Google News search feeds.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// New creates the provider. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, deps provider.Deps) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Google News RSS search",
			"https://news.google.com",
			nil,
		),
		baseURL: baseURL,
	}
	p.RegisterFetcher(newDropHeadlinesFetcher(p, deps))
	return p
}

// SearchQuery is the phrase searched for a symbol.
func SearchQuery(symbol string) string {
	return fmt.Sprintf("why did %s stock drop today", strings.ToUpper(symbol))
}

// --- DropHeadlines fetcher ---

type dropHeadlinesFetcher struct {
	provider.BaseFetcher
	p      *Provider
	parser *gofeed.Parser
}

func newDropHeadlinesFetcher(p *Provider, deps provider.Deps) *dropHeadlinesFetcher {
	return &dropHeadlinesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimit(
			providerName,
			provider.ModelDropHeadlines,
			"Headlines explaining a stock's drop from Google News",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			deps, 2, time.Second,
		),
		p:      p,
		parser: gofeed.NewParser(),
	}
}

// Fetch returns up to ParamLimit records of {title, link, source,
// published, summary}. published is RFC 3339 or empty.
func (f *dropHeadlinesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	limit := defaultLimit
	if n, err := strconv.Atoi(params[provider.ParamLimit]); err == nil && n > 0 {
		limit = n
	}

	return f.Load(ctx, params, func(ctx context.Context) (*provider.RawPayload, error) {
		q := url.Values{
			"q":    {SearchQuery(symbol)},
			"hl":   {"en-US"},
			"gl":   {"US"},
			"ceid": {"US:en"},
		}
		body, err := f.Get(ctx, f.p.baseURL+"?"+q.Encode(), map[string]string{
			"Accept": "application/rss+xml, application/xml",
		})
		if err != nil {
			return nil, err
		}
		feed, err := f.parser.ParseString(string(body))
		if err != nil {
			return nil, provider.Malformed("parse RSS: %w", err)
		}

		records := make([]provider.Record, 0, min(limit, len(feed.Items)))
		for _, item := range feed.Items {
			if len(records) == limit {
				break
			}
			title, source := splitSource(item.Title)
			rec := provider.Record{
				"title":     title,
				"link":      item.Link,
				"source":    source,
				"summary":   cleanHTML(item.Description),
				"published": "",
			}
			if item.PublishedParsed != nil {
				rec["published"] = item.PublishedParsed.UTC().Format(time.RFC3339)
			}
			records = append(records, rec)
		}
		return &provider.RawPayload{Records: records}, nil
	})
}

// splitSource separates Google News' "Headline - Publisher" titles.
func splitSource(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return strings.TrimSpace(title), ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
