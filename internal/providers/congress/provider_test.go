package congress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seenimoa/stockdash/internal/infra"
	"github.com/seenimoa/stockdash/internal/provider"
)

const houseFeed = `[
	{"disclosure_date":"01/10/2024","transaction_date":"2023-12-20","owner":"joint","ticker":"NVDA",
	 "asset_description":"NVIDIA Corporation","type":"purchase","amount":"$1,001 - $15,000",
	 "representative":"Hon. Jane Doe","district":"CA11","state":"CA","party":"Democrat","sector":"Technology"},
	{"disclosure_date":"02/01/2024","transaction_date":"2024-01-15","owner":"self","ticker":"AAPL",
	 "asset_description":"Apple Inc","type":"sale_full","amount":"$15,001 - $50,000","representative":"Hon. John Roe"},
	{"disclosure_date":"02/01/2024","transaction_date":"2024-01-16","owner":"self","ticker":"--",
	 "asset_description":"US Treasury Bill","type":"purchase","amount":"$1,001 - $15,000"}
]`

const senateFeed = `[
	{"ticker":"NVDA","transactions":[
		{"transaction_date":"03/15/2024","owner":"Spouse","asset_description":"NVIDIA Corp",
		 "asset_type":"Stock","type":"Sale (Full)","amount":"$1,001 - $15,000","senator":"A Senator",
		 "party":"Republican","sector":"Technology","comment":"--","disclosure_date":"04/01/2024"},
		{"transaction_date":"01/02/2024","owner":"Self","ticker":"NVDA","type":"Purchase","senator":"B Senator"}
	]},
	{"ticker":"MSFT","transactions":[{"transaction_date":"01/05/2024","type":"Purchase"}]}
]`

func newTestProvider(t *testing.T, houseCalls *int32) *Provider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/house.json", func(w http.ResponseWriter, r *http.Request) {
		if houseCalls != nil {
			atomic.AddInt32(houseCalls, 1)
		}
		fmt.Fprint(w, houseFeed)
	})
	mux.HandleFunc("/senate.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, senateFeed)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return New(srv.URL+"/house.json", srv.URL+"/senate.json", provider.Deps{
		HTTP:  infra.NewHTTPClient(infra.HTTPOptions{Timeout: 2 * time.Second}, nil),
		Cache: infra.NewCache(time.Minute),
	})
}

func fetchTrades(p *Provider, symbol, chamber string) (*provider.FetchResult, error) {
	return p.Fetcher(provider.ModelGovernmentTrades).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol:  symbol,
		provider.ParamChamber: chamber,
	})
}

func TestHouseFilteredByTicker(t *testing.T) {
	p := newTestProvider(t, nil)
	res, err := fetchTrades(p, "nvda", ChamberHouse)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	recs := res.Payload.Records
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0]["representative"] != "Hon. Jane Doe" || recs[0]["chamber"] != ChamberHouse {
		t.Errorf("record = %v", recs[0])
	}
	if res.Payload.Symbol != "NVDA" {
		t.Errorf("payload symbol = %q", res.Payload.Symbol)
	}
}

func TestSenateFlattened(t *testing.T) {
	p := newTestProvider(t, nil)
	res, err := fetchTrades(p, "NVDA", ChamberSenate)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	recs := res.Payload.Records
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	for _, r := range recs {
		if r["ticker"] != "NVDA" || r["chamber"] != ChamberSenate {
			t.Errorf("record not tagged: %v", r)
		}
	}
}

func TestNoMatchIsEmpty(t *testing.T) {
	p := newTestProvider(t, nil)
	res, err := fetchTrades(p, "TSLA", ChamberHouse)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !res.Payload.Empty() {
		t.Errorf("expected no records, got %v", res.Payload.Records)
	}
}

func TestFeedDownloadedOncePerChamber(t *testing.T) {
	var calls int32
	p := newTestProvider(t, &calls)
	for _, sym := range []string{"NVDA", "AAPL", "TSLA"} {
		if _, err := fetchTrades(p, sym, ChamberHouse); err != nil {
			t.Fatalf("Fetch %s: %v", sym, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("house feed downloaded %d times, want 1", got)
	}
}

func TestUnknownChamber(t *testing.T) {
	p := newTestProvider(t, nil)
	_, err := fetchTrades(p, "NVDA", "assembly")
	var missing *provider.ErrMissingParam
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingParam, got %v", err)
	}
}

func TestMalformedSenateGroup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"ticker":"NVDA"}]`)
	}))
	defer srv.Close()
	p := New(srv.URL, srv.URL, provider.Deps{
		HTTP: infra.NewHTTPClient(infra.HTTPOptions{Timeout: 2 * time.Second}, nil),
	})
	_, err := fetchTrades(p, "NVDA", ChamberSenate)
	if !errors.Is(err, provider.ErrSourceMalformed) {
		t.Fatalf("expected malformed, got %v", err)
	}
	var se *provider.SourceError
	if !errors.As(err, &se) || se.Symbol != "NVDA" {
		t.Errorf("symbol not tagged: %+v", se)
	}
}
