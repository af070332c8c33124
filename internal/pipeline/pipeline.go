// Package pipeline is the aggregation layer: it fetches from the provider
// registry, normalizes, joins and derives the tables the API and CLI
// present. A Pipeline holds no state between calls besides the vendor
// cache owned by the providers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/provider"
)

// Pipeline runs the aggregation requests against a provider registry.
type Pipeline struct {
	reg    *provider.Registry
	cfg    config.PipelineConfig
	logger *zap.Logger
	now    func() time.Time
}

// New builds a pipeline. A nil logger discards output.
func New(reg *provider.Registry, cfg config.PipelineConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Pipeline{reg: reg, cfg: cfg, logger: logger, now: time.Now}
}

// SetClock replaces the time source used for look-back windows.
func (p *Pipeline) SetClock(now func() time.Time) { p.now = now }

// Config returns the pipeline settings in effect.
func (p *Pipeline) Config() config.PipelineConfig { return p.cfg }

// fetch runs one vendor call with provider fallback and returns its
// records.
func (p *Pipeline) fetch(ctx context.Context, model provider.ModelType, params provider.QueryParams) ([]provider.Record, error) {
	res, err := p.reg.FetchWithFallback(ctx, model, params)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("fetched",
		zap.String("model", string(model)),
		zap.String("provider", res.Provider),
		zap.String("symbol", params[provider.ParamSymbol]),
		zap.Int("records", len(res.Payload.Records)),
		zap.Bool("cached", res.Cached),
	)
	return res.Payload.Records, nil
}

// fanOut calls fn for every symbol with at most limit calls in flight.
// Results and errors are aligned with symbols; one failure does not stop
// the others. Only ctx cancellation is returned as an error.
func fanOut[T any](ctx context.Context, limit int, symbols []string, fn func(context.Context, string) (T, error)) ([]T, []error, error) {
	results := make([]T, len(symbols))
	errs := make([]error, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, sym := range symbols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = fn(gctx, sym)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return results, errs, nil
}

// primary wraps the failure of the single fetch a request depends on.
func primary(what, symbol string, err error) error {
	if symbol == "" {
		return fmt.Errorf("%s: %w", what, err)
	}
	return fmt.Errorf("%s for %s: %w", what, symbol, err)
}

// isNoData reports whether err is the normal empty-result outcome.
func isNoData(err error) bool { return errors.Is(err, provider.ErrNoDataFound) }
