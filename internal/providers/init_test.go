package providers

import (
	"testing"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/provider"
)

func newRegistry(t *testing.T, cfg *config.Config) *provider.Registry {
	t.Helper()
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, cfg, NewDeps(cfg, nil)); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}
	return reg
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Vendors.FMP.APIKey = ""
	cfg.Vendors.Finnhub.APIKey = ""
	cfg.Vendors.AlphaVantage.APIKey = ""
	return cfg
}

func TestRegisterAllToWithoutKeys(t *testing.T) {
	reg := newRegistry(t, testConfig())

	for _, name := range []string{"yfinance", "reference", "congress", "googlenews"} {
		if _, err := reg.Get(name); err != nil {
			t.Errorf("%s not registered: %v", name, err)
		}
	}
	for _, name := range []string{"fmp", "finnhub", "alphavantage"} {
		if _, err := reg.Get(name); err == nil {
			t.Errorf("%s registered without a key", name)
		}
	}
	if def, _ := reg.DefaultProvider(provider.ModelEquityInfo); def != "yfinance" {
		t.Errorf("EquityInfo default = %q", def)
	}
}

func TestRegisterAllToWithKeys(t *testing.T) {
	cfg := testConfig()
	cfg.Vendors.FMP.APIKey = "fmp-key"
	cfg.Vendors.Finnhub.APIKey = "fh-key"
	cfg.Vendors.AlphaVantage.APIKey = "av-key"
	reg := newRegistry(t, cfg)

	coverage := reg.ModelCoverage()
	for _, m := range provider.AllModels() {
		if len(coverage[m]) == 0 {
			t.Errorf("no providers for model %s", m)
		}
	}

	defaults := map[provider.ModelType]string{
		provider.ModelEquityPeers:      "finnhub",
		provider.ModelEquityInfo:       "yfinance",
		provider.ModelCalendarEarnings: "fmp",
		provider.ModelEquityLosers:     "fmp",
		provider.ModelCompanyNews:      "alphavantage",
	}
	for model, want := range defaults {
		if got, _ := reg.DefaultProvider(model); got != want {
			t.Errorf("default for %s = %q, want %q", model, got, want)
		}
	}
	if got := reg.ProvidersFor(provider.ModelEquityPeers); len(got) != 2 || got[1] != "fmp" {
		t.Errorf("peers providers = %v, want finnhub then fmp", got)
	}
}

func TestRegisterAllIdempotent(t *testing.T) {
	cfg := testConfig()
	reg := newRegistry(t, cfg)
	if err := RegisterAllTo(reg, cfg, NewDeps(cfg, nil)); err != nil {
		t.Fatalf("second RegisterAllTo: %v", err)
	}

	count := 0
	for _, info := range reg.List() {
		if info.Name == "yfinance" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 yfinance, got %d", count)
	}
}
