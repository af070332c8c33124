package googlenews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seenimoa/stockdash/internal/infra"
	"github.com/seenimoa/stockdash/internal/provider"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>why did XYZ stock drop today - Google News</title>
<item>
  <title>XYZ shares slide after guidance cut - Reuters</title>
  <link>https://news.example.com/a</link>
  <pubDate>Tue, 05 Mar 2024 14:30:00 GMT</pubDate>
  <description>&lt;a href="https://news.example.com/a"&gt;XYZ shares slide&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font color="#6f6f6f"&gt;Reuters&lt;/font&gt;</description>
  <source url="https://www.reuters.com">Reuters</source>
</item>
<item>
  <title>Why XYZ Stock Is Sinking Today</title>
  <link>https://news.example.com/b</link>
</item>
<item>
  <title>Third - Motley Fool</title>
  <link>https://news.example.com/c</link>
</item>
</channel></rss>`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, provider.Deps{
		HTTP: infra.NewHTTPClient(infra.HTTPOptions{Timeout: 2 * time.Second}, nil),
	})
}

func TestSearchQuery(t *testing.T) {
	if got := SearchQuery("xyz"); got != "why did XYZ stock drop today" {
		t.Errorf("SearchQuery = %q", got)
	}
}

func TestFetchHeadlines(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "why did XYZ stock drop today" || q.Get("ceid") != "US:en" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody)
	})

	res, err := p.Fetcher(provider.ModelDropHeadlines).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "XYZ",
		provider.ParamLimit:  "2",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	recs := res.Payload.Records
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2 (limit)", len(recs))
	}
	first := recs[0]
	if first["title"] != "XYZ shares slide after guidance cut" || first["source"] != "Reuters" {
		t.Errorf("title/source = %q / %q", first["title"], first["source"])
	}
	if first["published"] != "2024-03-05T14:30:00Z" {
		t.Errorf("published = %v", first["published"])
	}
	if first["summary"] != "XYZ shares slide Reuters" {
		t.Errorf("summary = %q", first["summary"])
	}
	if recs[1]["source"] != "" || recs[1]["published"] != "" {
		t.Errorf("second record = %v", recs[1])
	}
}

func TestFetchNotRSS(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "definitely not a feed")
	})
	_, err := p.Fetcher(provider.ModelDropHeadlines).Fetch(context.Background(),
		provider.QueryParams{provider.ParamSymbol: "XYZ"})
	if !errors.Is(err, provider.ErrSourceMalformed) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestSplitSource(t *testing.T) {
	tests := []struct {
		in, title, source string
	}{
		{"A - B", "A", "B"},
		{"A - B - C", "A - B", "C"},
		{"No source", "No source", ""},
		{" - Lead", "- Lead", ""},
	}
	for _, tc := range tests {
		title, source := splitSource(tc.in)
		if title != tc.title || source != tc.source {
			t.Errorf("splitSource(%q) = %q, %q", tc.in, title, source)
		}
	}
}
