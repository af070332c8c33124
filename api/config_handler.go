package api

import (
	"net/http"

	"github.com/seenimoa/stockdash/internal/config"
)

// redacted returns a copy of cfg without secrets.
func redacted(cfg *config.Config) config.Config {
	out := *cfg
	for _, v := range []*config.VendorConfig{&out.Vendors.FMP, &out.Vendors.Finnhub, &out.Vendors.AlphaVantage, &out.Vendors.Yahoo} {
		if v.APIKey != "" {
			v.APIKey = "***"
		}
	}
	out.Access.PassphraseHashes = nil
	return out
}

// handleGetConfig returns the running configuration with secrets removed.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeData(w, redacted(s.cfg), false)
}

// handleGetConfigKeys returns the status of all vendor API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeData(w, config.CheckAPIKeys(s.cfg), false)
}
