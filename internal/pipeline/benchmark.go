package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seenimoa/stockdash/internal/analysis/fundamental"
	"github.com/seenimoa/stockdash/internal/normalize"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// Benchmark column sets.
var (
	// OverviewColumns describe each competitor.
	OverviewColumns = []string{
		"trailingPE", "recommendationKey", "industry", "sector", "longBusinessSummary",
		"fullTimeEmployees", "totalCash", "fiftyTwoWeekLow", "previousClose",
		"fiftyTwoWeekHigh", "dividendYield", "marketCap",
	}
	// MetricColumns are the ratios compared on the competitor chart.
	MetricColumns = []string{
		"trailingPE", "priceToSalesTrailing12Months", "profitMargins", "debtToEquity",
		"totalRevenue", "totalCashPerShare", "operatingCashflow", "totalCash",
		"sharesShort", "sharesOutstanding",
	}
	// GrowthColumns compare growth and margins.
	GrowthColumns = []string{
		"grossProfits", "revenueGrowth", "freeCashflow", "grossMargins",
		"operatingMargins", "pegRatio",
	}
)

// textColumns hold descriptive values rather than numbers.
var textColumns = map[string]bool{
	"recommendationKey":   true,
	"industry":            true,
	"sector":              true,
	"longBusinessSummary": true,
}

// ColumnSet returns a named column set: "overview", "metrics" or "growth".
func ColumnSet(name string) ([]string, bool) {
	switch name {
	case "", "metrics":
		return MetricColumns, true
	case "overview":
		return OverviewColumns, true
	case "growth":
		return GrowthColumns, true
	}
	return nil, false
}

// BenchmarkRequest asks for a competitor comparison.
type BenchmarkRequest struct {
	Symbol  string
	Columns []string // empty uses MetricColumns
}

// Benchmarks compares a symbol with its competitor set. The peer list is
// required; each competitor's info fetch is best effort, and a competitor
// that fails or lacks any requested column is skipped with a warning.
func (p *Pipeline) Benchmarks(ctx context.Context, req BenchmarkRequest) (*models.BenchmarkReport, error) {
	symbol, err := utils.CleanSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	columns := req.Columns
	if len(columns) == 0 {
		columns = MetricColumns
	}

	set, err := p.competitors(ctx, symbol)
	if err != nil {
		return nil, err
	}

	infos, errs, err := fanOut(ctx, p.cfg.Concurrency, set.Peers, func(ctx context.Context, sym string) (models.CompanyInfo, error) {
		records, err := p.fetch(ctx, provider.ModelEquityInfo, provider.QueryParams{provider.ParamSymbol: sym})
		if err != nil {
			return models.CompanyInfo{}, err
		}
		return normalize.CompanyInfo(sym, records)
	})
	if err != nil {
		return nil, err
	}

	table := models.BenchmarkTable{Symbol: symbol, Columns: columns, Rows: []models.BenchmarkRow{}}
	for i, sym := range set.Peers {
		if errs[i] != nil {
			p.skipPeer(&table, sym, errs[i].Error())
			continue
		}
		if missing := missingColumn(infos[i], columns); missing != "" {
			p.skipPeer(&table, sym, fmt.Sprintf("missing column %s", missing))
			continue
		}
		table.Rows = append(table.Rows, benchmarkRow(sym, infos[i], columns))
	}

	return &models.BenchmarkReport{
		Table:  table,
		Stats:  nonNil(fundamental.CompareAll(&table)),
		Points: Melt(&table),
	}, nil
}

// competitors fetches the competitor set. A vendor with no peers for the
// symbol yields a set holding only the symbol.
func (p *Pipeline) competitors(ctx context.Context, symbol string) (models.CompetitorSet, error) {
	records, err := p.fetch(ctx, provider.ModelEquityPeers, provider.QueryParams{provider.ParamSymbol: symbol})
	if err != nil && !isNoData(err) {
		return models.CompetitorSet{}, primary("competitors", symbol, err)
	}
	return normalize.Peers(symbol, records), nil
}

func (p *Pipeline) skipPeer(table *models.BenchmarkTable, symbol, reason string) {
	p.logger.Warn("skipping competitor",
		zap.String("base", table.Symbol),
		zap.String("symbol", symbol),
		zap.String("reason", reason),
	)
	table.Skipped = append(table.Skipped, models.SkippedPeer{Symbol: symbol, Reason: reason})
}

func missingColumn(info models.CompanyInfo, columns []string) string {
	for _, c := range columns {
		if !info.Has(c) {
			return c
		}
	}
	return ""
}

func benchmarkRow(symbol string, info models.CompanyInfo, columns []string) models.BenchmarkRow {
	row := models.BenchmarkRow{
		Symbol: symbol,
		Name:   normalize.String(info.Fields["shortName"]),
		Values: make(map[string]models.Cell, len(columns)),
	}
	if !row.Name.Valid {
		row.Name = info.Profile.Name
	}
	for _, c := range columns {
		if textColumns[c] {
			row.Values[c] = models.TextCell(normalize.String(info.Fields[c]))
		} else {
			row.Values[c] = models.NumberCell(normalize.Float(info.Fields[c]))
		}
	}
	return row
}

// Melt reshapes the numeric columns of a table into one point per
// (symbol, metric), grouped by column with rows in table order inside each
// column. Null values are kept.
func Melt(table *models.BenchmarkTable) []models.MetricPoint {
	points := make([]models.MetricPoint, 0, len(table.Rows)*len(table.Columns))
	for _, c := range table.Columns {
		if textColumns[c] {
			continue
		}
		for _, row := range table.Rows {
			points = append(points, models.MetricPoint{
				Symbol: row.Symbol,
				Name:   row.Name,
				Metric: c,
				Value:  row.Values[c].Num,
			})
		}
	}
	return points
}
