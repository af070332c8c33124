package pipeline

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stockdash/internal/analysis/technical"
	"github.com/seenimoa/stockdash/internal/normalize"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// showNextDays is the smallest window that also shows scheduled earnings.
const showNextDays = 60

// StockRequest asks for the per-symbol dashboard.
type StockRequest struct {
	Symbol string
	Range  string // e.g. "6 months"; empty uses the configured default
}

// Dashboard returns the profile, daily closes, trend and earnings for a
// symbol. The profile and prices are required; earnings are best effort.
func (p *Pipeline) Dashboard(ctx context.Context, req StockRequest) (*models.StockDashboard, error) {
	symbol, err := utils.CleanSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	rangeText := req.Range
	if rangeText == "" {
		rangeText = p.cfg.DefaultRange
	}
	days, err := utils.ParseRange(rangeText)
	if err != nil {
		return nil, err
	}

	dash := &models.StockDashboard{
		Symbol:   symbol,
		Range:    rangeText,
		Days:     days,
		ShowNext: days >= showNextDays,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := p.fetch(gctx, provider.ModelEquityInfo, provider.QueryParams{provider.ParamSymbol: symbol})
		if err != nil {
			return primary("company info", symbol, err)
		}
		info, err := normalize.CompanyInfo(symbol, records)
		if err != nil {
			return primary("company info", symbol, err)
		}
		dash.Profile = info.Profile
		return nil
	})
	g.Go(func() error {
		records, err := p.fetch(gctx, provider.ModelEquityHistorical, provider.QueryParams{
			provider.ParamSymbol: symbol,
			provider.ParamDays:   strconv.Itoa(utils.TradingDays(days)),
		})
		if err != nil {
			return primary("prices", symbol, err)
		}
		dash.Prices = normalize.PriceBars(symbol, records)
		if len(dash.Prices) == 0 {
			return primary("prices", symbol, provider.NoData("no closing prices in %d days", days))
		}
		return nil
	})
	g.Go(func() error {
		dash.Earnings = p.earnings(gctx, symbol, days, dash.ShowNext)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dash.NextEarnings = normalize.NextEarnings(dash.Earnings, utils.FormatDateET(p.now()))
	dash.Trend = technical.Summarize(dash.Prices)
	return dash, nil
}

// earnings fetches the earnings history. Failures are logged and yield no
// events.
func (p *Pipeline) earnings(ctx context.Context, symbol string, days int, showNext bool) []models.EarningsEvent {
	records, err := p.fetch(ctx, provider.ModelCalendarEarnings, provider.QueryParams{
		provider.ParamSymbol: symbol,
		provider.ParamLimit:  strconv.Itoa(p.cfg.EarningsLimit),
	})
	if err != nil {
		if !isNoData(err) {
			p.logger.Warn("earnings unavailable", zap.String("symbol", symbol), zap.Error(err))
		}
		return nil
	}
	return normalize.EarningsEvents(symbol, records, normalize.EarningsOptions{
		ShowNext: showNext,
		Since:    utils.DaysBefore(p.now(), days),
		Limit:    p.cfg.EarningsLimit,
	})
}
