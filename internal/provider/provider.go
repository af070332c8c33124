// Package provider implements the source-client abstraction: one Provider
// per market-data vendor, one Fetcher per data model it serves, and a
// Registry that routes a request for a model to a vendor.
//
// Fetchers return raw, shape-checked vendor records (RawPayload); turning
// them into canonical rows is the normalizer's job.
package provider

import (
	"context"
	"fmt"
	"time"
)

// ProviderCredential describes a required credential for a provider.
type ProviderCredential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // e.g., "Finnhub API token"
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"` // e.g., "FINNHUB_API_KEY"
}

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
	Models      []ModelType          `json:"models"`
}

// Provider is the interface that all data providers must implement.
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Init validates and stores credentials. Called once before Register.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for the given model type, or nil if unsupported.
	Fetcher(model ModelType) Fetcher

	// SupportedModels returns all model types this provider can fetch.
	SupportedModels() []ModelType
}

// QueryParams is the generic query parameter map passed to fetchers.
// Keys starting with "_" carry credentials and never reach a cache key.
type QueryParams map[string]string

// Common query parameter keys.
const (
	ParamSymbol   = "symbol"
	ParamDays     = "days"    // look-back window in calendar days
	ParamLimit    = "limit"   // max results
	ParamChamber  = "chamber" // "house" or "senate"
	ParamTopics   = "topics"  // comma-separated news topics
	ParamSort     = "sort"    // vendor sort order, e.g. "LATEST"
	ParamQuery    = "query"
	ParamProvider = "provider"
)

// Clone returns a copy of p with overrides applied.
func (p QueryParams) Clone(overrides ...string) QueryParams {
	out := make(QueryParams, len(p)+len(overrides)/2)
	for k, v := range p {
		out[k] = v
	}
	for i := 0; i+1 < len(overrides); i += 2 {
		out[overrides[i]] = overrides[i+1]
	}
	return out
}

// Record is one decoded vendor object. Numbers are json.Number so that the
// normalizer decides how to coerce them.
type Record map[string]any

// RawPayload is the shape-checked result of one vendor call. Payloads may
// be shared through the cache and must be treated as read-only.
type RawPayload struct {
	Vendor  string    `json:"vendor"`
	Model   ModelType `json:"model"`
	Symbol  string    `json:"symbol,omitempty"`
	Records []Record  `json:"records"`
}

// Empty reports whether the payload carries no records.
func (p *RawPayload) Empty() bool { return p == nil || len(p.Records) == 0 }

// FetchResult wraps a payload with fetch metadata.
type FetchResult struct {
	Provider  string      `json:"provider"`
	Model     ModelType   `json:"model"`
	Payload   *RawPayload `json:"payload"`
	FetchedAt time.Time   `json:"fetched_at"`
	Cached    bool        `json:"cached"`
}

// Fetcher is the interface for fetching a specific data type.
type Fetcher interface {
	// ModelType returns the standard model type this fetcher handles.
	ModelType() ModelType

	// Description returns a human-readable description of what this fetcher does.
	Description() string

	// RequiredParams returns the parameter keys this fetcher requires.
	RequiredParams() []string

	// OptionalParams returns the parameter keys this fetcher optionally accepts.
	OptionalParams() []string

	// Fetch retrieves the raw payload for the given query parameters.
	// Errors are *SourceError values carrying one of the Err* kinds.
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported is returned when a provider doesn't support a model type.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials is returned when provider credentials are invalid.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ValidateParams checks that all required parameters are present in params.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
