// Package providers wires the concrete vendor clients into a provider
// registry from the loaded configuration.
package providers

import (
	"go.uber.org/zap"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/infra"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/internal/providers/alphavantage"
	"github.com/seenimoa/stockdash/internal/providers/congress"
	"github.com/seenimoa/stockdash/internal/providers/finnhub"
	"github.com/seenimoa/stockdash/internal/providers/fmp"
	"github.com/seenimoa/stockdash/internal/providers/googlenews"
	"github.com/seenimoa/stockdash/internal/providers/reference"
	"github.com/seenimoa/stockdash/internal/providers/yfinance"
)

// NewDeps builds the shared HTTP client and response cache from cfg.
func NewDeps(cfg *config.Config, logger *zap.Logger) provider.Deps {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := infra.DefaultHTTPOptions()
	opts.Timeout = cfg.HTTP.Timeout()
	opts.MaxRetries = cfg.HTTP.MaxRetries
	if cfg.HTTP.UserAgent != "" {
		opts.UserAgent = cfg.HTTP.UserAgent
	}
	return provider.Deps{
		HTTP:   infra.NewHTTPClient(opts, logger),
		Cache:  infra.NewBoundedCache(cfg.Cache.TTL(), cfg.Cache.MaxEntries),
		Logger: logger,
	}
}

// preferred names the default vendor for models served by more than one.
var preferred = map[provider.ModelType]string{
	provider.ModelEquityPeers:      "finnhub",
	provider.ModelEquityInfo:       "yfinance",
	provider.ModelCalendarEarnings: "fmp",
}

// RegisterAllTo registers every vendor with reg. Key-less vendors are
// always registered; vendors that need an API key are registered only
// when cfg carries one.
func RegisterAllTo(reg *provider.Registry, cfg *config.Config, deps provider.Deps) error {
	v := cfg.Vendors
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	free := []provider.Provider{
		yfinance.New(v.Yahoo.BaseURL, deps),
		reference.New(v.Reference.BaseURL, deps),
		congress.New(v.Congress.HouseURL, v.Congress.SenateURL, deps),
		googlenews.New(v.GoogleNews.BaseURL, deps),
	}
	for _, p := range free {
		if err := register(reg, p, nil); err != nil {
			return err
		}
	}

	keyed := []struct {
		key string
		p   provider.Provider
	}{
		{v.FMP.APIKey, fmp.New(v.FMP.BaseURL, deps)},
		{v.Finnhub.APIKey, finnhub.New(v.Finnhub.BaseURL, deps)},
		{v.AlphaVantage.APIKey, alphavantage.New(v.AlphaVantage.BaseURL, deps)},
	}
	for _, k := range keyed {
		if k.key == "" {
			logger.Info("vendor disabled: no API key", zap.String("vendor", k.p.Info().Name))
			continue
		}
		if err := register(reg, k.p, map[string]string{"api_key": k.key}); err != nil {
			return err
		}
	}

	for model, name := range preferred {
		if _, err := reg.Get(name); err != nil {
			continue
		}
		if err := reg.SetDefault(model, name); err != nil {
			return err
		}
	}
	return nil
}

func register(reg *provider.Registry, p provider.Provider, creds map[string]string) error {
	if err := p.Init(creds); err != nil {
		return err
	}
	return reg.Register(p)
}
