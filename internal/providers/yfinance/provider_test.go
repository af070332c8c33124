package yfinance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/stockdash/internal/infra"
	"github.com/seenimoa/stockdash/internal/provider"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, provider.Deps{
		HTTP: infra.NewHTTPClient(infra.HTTPOptions{Timeout: 2 * time.Second}, nil),
	})
}

const chartBody = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL","currency":"USD","exchangeTimezoneName":"America/New_York"},
	"timestamp":[1704205800,1704292200,1704378600],
	"indicators":{"quote":[{"close":[185.64,null,181.91],"volume":[82488700,58414500,null]}]}
}],"error":null}}`

func TestProviderInfo(t *testing.T) {
	p := New("", provider.Deps{})
	info := p.Info()
	if info.Name != "yfinance" {
		t.Errorf("expected name yfinance, got %s", info.Name)
	}
	if len(info.Credentials) != 0 {
		t.Errorf("expected no credentials, got %d", len(info.Credentials))
	}
	if err := p.Init(nil); err != nil {
		t.Errorf("Init(nil): %v", err)
	}
	for _, m := range []provider.ModelType{provider.ModelEquityHistorical, provider.ModelEquityInfo} {
		if p.Fetcher(m) == nil {
			t.Errorf("missing fetcher for %s", m)
		}
	}
}

func TestHistoricalFetch(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("range") != "22d" || r.URL.Query().Get("interval") != "1d" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, chartBody)
	})

	res, err := p.Fetcher(provider.ModelEquityHistorical).Fetch(context.Background(),
		provider.QueryParams{provider.ParamSymbol: "AAPL", provider.ParamDays: "22"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	recs := res.Payload.Records
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[0]["date"] != int64(1704205800) || recs[0]["close"] != 185.64 {
		t.Errorf("first record = %v", recs[0])
	}
	if recs[1]["close"] != nil {
		t.Errorf("null close should stay nil, got %v", recs[1]["close"])
	}
	if recs[2]["volume"] != nil {
		t.Errorf("null volume should stay nil, got %v", recs[2]["volume"])
	}
	if recs[0]["timezone"] != "America/New_York" {
		t.Errorf("timezone = %v", recs[0]["timezone"])
	}
}

func TestHistoricalShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"missing chart", `{"finance":{}}`, provider.ErrSourceMalformed},
		{"missing result", `{"chart":{"error":null}}`, provider.ErrSourceMalformed},
		{"unknown symbol", `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, provider.ErrNoDataFound},
		{"empty result", `{"chart":{"result":[],"error":null}}`, provider.ErrNoDataFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			})
			_, err := p.Fetcher(provider.ModelEquityHistorical).Fetch(context.Background(),
				provider.QueryParams{provider.ParamSymbol: "XYZ"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestInfoFetch(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v10/finance/quoteSummary/MSFT" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		mods := r.URL.Query().Get("modules")
		for _, m := range infoModules {
			if !strings.Contains(mods, m) {
				t.Errorf("module %s not requested: %s", m, mods)
			}
		}
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
			"price":{"shortName":"Microsoft Corporation"},
			"summaryDetail":{"trailingPE":{"raw":36.1,"fmt":"36.10"},"dividendYield":{}},
			"assetProfile":{"sector":"Technology","industry":"Software—Infrastructure"}
		}],"error":null}}`)
	})

	res, err := p.Fetcher(provider.ModelEquityInfo).Fetch(context.Background(),
		provider.QueryParams{provider.ParamSymbol: "MSFT"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Payload.Records) != 1 {
		t.Fatalf("got %d records", len(res.Payload.Records))
	}
	rec := res.Payload.Records[0]
	if _, ok := rec["summaryDetail"].(map[string]any); !ok {
		t.Errorf("summaryDetail module missing: %v", rec)
	}
}

func TestInfoNotFound(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol: ZZZZZ"}}}`)
	})
	_, err := p.Fetcher(provider.ModelEquityInfo).Fetch(context.Background(),
		provider.QueryParams{provider.ParamSymbol: "ZZZZZ"})
	if !errors.Is(err, provider.ErrNoDataFound) {
		t.Fatalf("expected NoDataFound, got %v", err)
	}
}
