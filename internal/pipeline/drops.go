package pipeline

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/seenimoa/stockdash/internal/analysis/fundamental"
	"github.com/seenimoa/stockdash/internal/normalize"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// DropRequest selects the day's biggest decliners.
type DropRequest struct {
	Threshold           float64 `validate:"gte=0,lt=1"` // fraction; 0 uses the configured default
	Sector              string
	Industry            string
	Type                string
	MarketCapPercentile float64 `validate:"gte=0,lte=100"` // keep rows at or above this market-cap percentile
}

// Drops builds the drop table: losers beyond the threshold, left-joined
// with the reference snapshot, optionally narrowed to an exact sector,
// industry or security type, enriched with live metrics and sorted by
// percent change ascending. An empty table is not an error.
func (p *Pipeline) Drops(ctx context.Context, req DropRequest) (*models.DropTable, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Threshold == 0 {
		req.Threshold = p.cfg.DropThreshold
	}
	if req.Sector == "" {
		req.Sector = p.cfg.DropSector
	}
	if req.Industry == "" {
		req.Industry = p.cfg.DropIndustry
	}

	records, err := p.fetch(ctx, provider.ModelEquityLosers, provider.QueryParams{})
	if err != nil && !isNoData(err) {
		return nil, primary("top losers", "", err)
	}
	rows := FilterDrops(normalize.Losers(records), req.Threshold)

	if len(rows) > 0 {
		rows = JoinReference(rows, p.reference(ctx))
		rows = FilterSector(rows, req.Sector, req.Industry, req.Type)
	}
	if len(rows) > 0 {
		if rows, err = p.enrich(ctx, rows); err != nil {
			return nil, err
		}
	}
	if req.MarketCapPercentile > 0 {
		rows = FilterMarketCap(rows, req.MarketCapPercentile)
	}
	SortDrops(rows)

	return &models.DropTable{
		Threshold:           req.Threshold,
		Sector:              req.Sector,
		Industry:            req.Industry,
		Type:                req.Type,
		MarketCapPercentile: req.MarketCapPercentile,
		Rows:                rows,
	}, nil
}

// reference loads the ticker snapshot. A failure is logged and yields an
// empty index so every loser is still reported.
func (p *Pipeline) reference(ctx context.Context) map[string]models.CompanyProfile {
	records, err := p.fetch(ctx, provider.ModelReferenceTickers, provider.QueryParams{})
	if err != nil {
		p.logger.Warn("reference snapshot unavailable", zap.Error(err))
		return map[string]models.CompanyProfile{}
	}
	return normalize.ReferenceIndex(records)
}

// enrich appends live market metrics to each row. The result stays aligned
// with rows; a failed lookup leaves that row's live fields null.
func (p *Pipeline) enrich(ctx context.Context, rows []models.DropRecord) ([]models.DropRecord, error) {
	symbols := make([]string, len(rows))
	for i, r := range rows {
		symbols[i] = r.Symbol
	}
	infos, errs, err := fanOut(ctx, p.cfg.Concurrency, symbols, func(ctx context.Context, sym string) (models.CompanyInfo, error) {
		records, err := p.fetch(ctx, provider.ModelEquityInfo, provider.QueryParams{provider.ParamSymbol: sym})
		if err != nil {
			return models.CompanyInfo{}, err
		}
		return normalize.CompanyInfo(sym, records)
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.DropRecord, len(rows))
	for i, r := range rows {
		out[i] = r
		if errs[i] != nil {
			p.logger.Warn("live metrics unavailable", zap.String("symbol", r.Symbol), zap.Error(errs[i]))
			continue
		}
		f := infos[i].Fields
		if v := normalize.FloatField(f, "marketCap"); v.Valid {
			out[i].MarketCap = v
		}
		out[i].Volume = normalize.FloatField(f, "volume", "regularMarketVolume")
		out[i].FiftyTwoWeekLow = normalize.FloatField(f, "fiftyTwoWeekLow")
		out[i].FiftyTwoWeekHigh = normalize.FloatField(f, "fiftyTwoWeekHigh")
		if !out[i].Price.Valid {
			out[i].Price = normalize.FloatField(f, "regularMarketPrice", "currentPrice")
		}
	}
	return out, nil
}

// FilterDrops keeps rows whose percent change is below -threshold*100.
// threshold is a fraction: 0.10 keeps drops of more than 10%.
func FilterDrops(rows []models.DropRecord, threshold float64) []models.DropRecord {
	limit := -threshold * 100
	out := make([]models.DropRecord, 0, len(rows))
	for _, r := range rows {
		if r.ChangePercent < limit {
			out = append(out, r)
		}
	}
	return out
}

// JoinReference left-joins the reference profiles onto rows. Rows missing
// from the index are kept with null reference fields; values already on a
// row are not overwritten.
func JoinReference(rows []models.DropRecord, index map[string]models.CompanyProfile) []models.DropRecord {
	out := make([]models.DropRecord, len(rows))
	for i, r := range rows {
		ref, ok := index[r.Symbol]
		if ok {
			if !r.Name.Valid {
				r.Name = ref.Name
			}
			if !r.Exchange.Valid {
				r.Exchange = ref.Exchange
			}
			r.Sector = ref.Sector
			r.Industry = ref.Industry
			r.Type = ref.Type
			if !r.MarketCap.Valid {
				r.MarketCap = ref.MarketCap
			}
		}
		out[i] = r
	}
	return out
}

// FilterSector keeps rows whose sector, industry and type equal the given
// values exactly. An empty value does not filter.
func FilterSector(rows []models.DropRecord, sector, industry, typ string) []models.DropRecord {
	sector, industry, typ = strings.TrimSpace(sector), strings.TrimSpace(industry), strings.TrimSpace(typ)
	if sector == "" && industry == "" && typ == "" {
		return rows
	}
	out := make([]models.DropRecord, 0, len(rows))
	for _, r := range rows {
		if sector != "" && r.Sector.ValueOrZero() != sector {
			continue
		}
		if industry != "" && r.Industry.ValueOrZero() != industry {
			continue
		}
		if typ != "" && r.Type.ValueOrZero() != typ {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterMarketCap keeps rows whose market cap is at or above the pct
// percentile of the known caps. Rows without a market cap are dropped.
func FilterMarketCap(rows []models.DropRecord, pct float64) []models.DropRecord {
	caps := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.MarketCap.Valid {
			caps = append(caps, r.MarketCap.Float64)
		}
	}
	if len(caps) == 0 {
		return []models.DropRecord{}
	}
	floor := fundamental.Quantile(caps, pct/100)
	out := make([]models.DropRecord, 0, len(rows))
	for _, r := range rows {
		if r.MarketCap.Valid && r.MarketCap.Float64 >= floor {
			out = append(out, r)
		}
	}
	return out
}

// SortDrops orders rows by percent change ascending, most negative first.
// Ties keep their order.
func SortDrops(rows []models.DropRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ChangePercent < rows[j].ChangePercent
	})
}
