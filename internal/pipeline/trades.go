package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stockdash/internal/normalize"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// InsiderTrades returns a symbol's congressional trades within the look-back
// window, newest first per chamber. Both chambers are fetched concurrently;
// one failing chamber is logged and reported empty, both failing is an
// error. No trades in either chamber is ErrNoDataFound.
func (p *Pipeline) InsiderTrades(ctx context.Context, symbol string, lookbackDays int) (*models.InsiderTradeReport, error) {
	symbol, err := utils.CleanSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if lookbackDays <= 0 {
		lookbackDays = p.cfg.TradesLookbackDays
	}
	since := ""
	if lookbackDays > 0 {
		since = utils.DaysBefore(p.now(), lookbackDays)
	}

	chambers := []string{models.ChamberHouse, models.ChamberSenate}
	trades := make([][]models.InsiderTrade, len(chambers))
	errs := make([]error, len(chambers))

	var g errgroup.Group
	for i, chamber := range chambers {
		g.Go(func() error {
			records, err := p.fetch(ctx, provider.ModelGovernmentTrades, provider.QueryParams{
				provider.ParamSymbol:  symbol,
				provider.ParamChamber: chamber,
			})
			if err != nil && !isNoData(err) {
				errs[i] = err
				return nil
			}
			trades[i] = normalize.InsiderTrades(chamber, symbol, since, records)
			return nil
		})
	}
	_ = g.Wait()

	if errs[0] != nil && errs[1] != nil {
		return nil, primary("insider trades", symbol, errors.Join(errs[0], errs[1]))
	}
	for i, err := range errs {
		if err != nil {
			p.logger.Warn("chamber feed unavailable",
				zap.String("chamber", chambers[i]),
				zap.String("symbol", symbol),
				zap.Error(err),
			)
		}
	}

	report := &models.InsiderTradeReport{
		Symbol:       symbol,
		LookbackDays: lookbackDays,
		House:        nonNil(trades[0]),
		Senate:       nonNil(trades[1]),
	}
	if report.Len() == 0 {
		return nil, fmt.Errorf("insider trades for %s: %w", symbol, provider.ErrNoDataFound)
	}
	return report, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
