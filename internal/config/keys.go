package config

import "os"

// APIKeySource says where a vendor key was found.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus describes one vendor credential without revealing it.
type KeyStatus struct {
	Name     string       `json:"name"`
	Vendor   string       `json:"vendor"`
	EnvVar   string       `json:"env_var"`
	Source   APIKeySource `json:"source"`
	IsSet    bool         `json:"is_set"`
	Masked   string       `json:"masked,omitempty"` // e.g. "abc...xyz"
	Features string       `json:"features"`         // what is unavailable without it
}

// keyedVendor names a vendor that needs a credential.
type keyedVendor struct {
	name, vendor, envVar, features string
	key                            func(*Config) string
}

var keyedVendors = []keyedVendor{
	{"FMP API Key", "fmp", EnvFMPKey, "top drops, earnings calendar",
		func(c *Config) string { return c.Vendors.FMP.APIKey }},
	{"Finnhub API Key", "finnhub", EnvFinnhubKey, "competitor peers",
		func(c *Config) string { return c.Vendors.Finnhub.APIKey }},
	{"Alpha Vantage API Key", "alphavantage", EnvAlphaVantageKey, "news, sentiment",
		func(c *Config) string { return c.Vendors.AlphaVantage.APIKey }},
}

// CheckAPIKeys returns the status of every vendor key, in a fixed order.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	out := make([]KeyStatus, 0, len(keyedVendors))
	for _, kv := range keyedVendors {
		key := kv.key(cfg)
		st := KeyStatus{
			Name:     kv.name,
			Vendor:   kv.vendor,
			EnvVar:   kv.envVar,
			Source:   KeySourceNone,
			IsSet:    key != "",
			Features: kv.features,
		}
		if st.IsSet {
			st.Masked = maskKey(key)
			st.Source = KeySourceConfig
			if os.Getenv(kv.envVar) != "" {
				st.Source = KeySourceEnv
			}
		}
		out = append(out, st)
	}
	return out
}

// maskKey keeps the first and last three characters of keys longer than 8.
func maskKey(key string) string {
	const keep = 3
	if len(key) <= 8 {
		return "***"
	}
	return key[:keep] + "..." + key[len(key)-keep:]
}
