// Package reference implements the static ticker metadata provider: a CSV
// snapshot of US-listed symbols with their name, exchange, sector, industry
// and security type.
package reference

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/seenimoa/stockdash/internal/provider"
)

const (
	providerName = "reference"
	DefaultURL   = "https://raw.githubusercontent.com/xcollantes/stock_analysis_dataset/main/us_tickers.csv"
)

// Provider implements provider.Provider for the ticker snapshot.
type Provider struct {
	provider.BaseProvider
	csvURL string
}

// New creates the provider. An empty csvURL uses DefaultURL.
func New(csvURL string, deps provider.Deps) *Provider {
	if csvURL == "" {
		csvURL = DefaultURL
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Static US ticker snapshot (sector, industry, type)",
			"https://github.com/xcollantes/stock_analysis_dataset",
			nil,
		),
		csvURL: csvURL,
	}
	p.RegisterFetcher(newReferenceTickersFetcher(p, deps))
	return p
}

// --- ReferenceTickers fetcher ---

type referenceTickersFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newReferenceTickersFetcher(p *Provider, deps provider.Deps) *referenceTickersFetcher {
	return &referenceTickersFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimit(
			providerName,
			provider.ModelReferenceTickers,
			"Symbol to name, sector, industry and type lookup",
			nil, nil,
			deps, 1, time.Second,
		),
		p: p,
	}
}

// Fetch returns one record per CSV row keyed by the trimmed header names.
func (f *referenceTickersFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Load(ctx, params, func(ctx context.Context) (*provider.RawPayload, error) {
		body, err := f.Get(ctx, f.p.csvURL, map[string]string{"Accept": "text/csv"})
		if err != nil {
			return nil, err
		}
		records, err := ParseCSV(body)
		if err != nil {
			return nil, err
		}
		return &provider.RawPayload{Records: records}, nil
	})
}

// ParseCSV reads a ticker snapshot. The header must contain a "symbol"
// column (any case); short rows leave the missing columns out.
func ParseCSV(body []byte) ([]provider.Record, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, provider.Malformed("read CSV header: %w", err)
	}
	hasSymbol := false
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if strings.EqualFold(col, "symbol") {
			col = "symbol"
			hasSymbol = true
		}
		header[i] = col
	}
	if !hasSymbol {
		return nil, provider.Malformed("CSV header has no symbol column: %v", header)
	}

	var records []provider.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, provider.Malformed("read CSV: %w", err)
		}
		rec := make(provider.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
