package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/stockdash/internal/infra"
)

// KeyFunc derives the cache key for one vendor call.
type KeyFunc func(vendor string, model ModelType, params QueryParams) string

// Deps are the shared collaborators every provider is constructed with.
type Deps struct {
	HTTP    *infra.HTTPClient
	Cache   *infra.Cache // nil disables caching
	KeyFunc KeyFunc      // nil uses CacheKey
	Logger  *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.HTTP == nil {
		d.HTTP = infra.NewHTTPClient(infra.DefaultHTTPOptions(), d.Logger)
	}
	if d.KeyFunc == nil {
		d.KeyFunc = CacheKey
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// CacheKey is the default KeyFunc: vendor, model and the sorted parameters.
// The symbol is uppercased; the provider override and "_"-prefixed
// credential params are left out.
func CacheKey(vendor string, model ModelType, params QueryParams) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == ParamProvider || strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(vendor)
	b.WriteByte(':')
	b.WriteString(string(model))
	for _, k := range keys {
		v := params[k]
		if k == ParamSymbol {
			v = strings.ToUpper(strings.TrimSpace(v))
		}
		b.WriteString(":" + k + "=" + v)
	}
	return b.String()
}

// BaseFetcher provides common functionality for fetcher implementations.
// Embed this in concrete fetchers to get caching, rate limiting, logging
// and error classification.
type BaseFetcher struct {
	vendor      string
	model       ModelType
	description string
	required    []string
	optional    []string
	deps        Deps
	limiter     *infra.RateLimiter
}

// NewBaseFetcher creates a base fetcher limited to 10 calls per second.
func NewBaseFetcher(vendor string, model ModelType, desc string, required, optional []string, deps Deps) BaseFetcher {
	return NewBaseFetcherWithLimit(vendor, model, desc, required, optional, deps, 10, time.Second)
}

// NewBaseFetcherWithLimit creates a base fetcher with a custom rate limit.
func NewBaseFetcherWithLimit(vendor string, model ModelType, desc string, required, optional []string, deps Deps, rateLimit int, rateWindow time.Duration) BaseFetcher {
	return BaseFetcher{
		vendor:      vendor,
		model:       model,
		description: desc,
		required:    required,
		optional:    optional,
		deps:        deps.withDefaults(),
		limiter:     infra.NewRateLimiter(rateLimit, rateWindow),
	}
}

func (b *BaseFetcher) ModelType() ModelType     { return b.model }
func (b *BaseFetcher) Description() string      { return b.description }
func (b *BaseFetcher) RequiredParams() []string { return b.required }
func (b *BaseFetcher) OptionalParams() []string { return b.optional }
func (b *BaseFetcher) Vendor() string           { return b.vendor }
func (b *BaseFetcher) Logger() *zap.Logger      { return b.deps.Logger }

// Load returns the cached payload for params, or calls fetch and stores its
// result once. Errors from fetch are classified and never cached.
func (b *BaseFetcher) Load(ctx context.Context, params QueryParams, fetch func(context.Context) (*RawPayload, error)) (*FetchResult, error) {
	symbol := strings.ToUpper(params[ParamSymbol])
	call := func() (any, error) {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		b.deps.Logger.Debug("api call",
			zap.String("vendor", b.vendor),
			zap.String("model", string(b.model)),
			zap.String("symbol", symbol),
		)
		payload, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		payload.Vendor = b.vendor
		payload.Model = b.model
		if payload.Symbol == "" {
			payload.Symbol = symbol
		}
		return payload, nil
	}

	var (
		v      any
		cached bool
		err    error
	)
	if b.deps.Cache != nil {
		v, cached, err = b.deps.Cache.GetOrLoad(b.deps.KeyFunc(b.vendor, b.model, params), call)
	} else {
		v, err = call()
	}
	if err != nil {
		return nil, Classify(b.vendor, b.model, symbol, err)
	}
	return &FetchResult{
		Model:     b.model,
		Payload:   v.(*RawPayload),
		FetchedAt: time.Now(),
		Cached:    cached,
	}, nil
}

// Get performs a GET request through the shared HTTP client.
func (b *BaseFetcher) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return b.deps.HTTP.Get(ctx, url, headers)
}

// GetJSON performs a GET request and decodes the body into a generic JSON
// value (map[string]any, []any, ...), keeping numbers as json.Number.
func (b *BaseFetcher) GetJSON(ctx context.Context, url string) (any, error) {
	body, err := b.Get(ctx, url, JSONHeaders())
	if err != nil {
		return nil, err
	}
	return DecodeJSON(body)
}

// JSONHeaders returns the Accept header used for JSON vendors.
func JSONHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// DecodeJSON decodes body into a generic value with json.Number numbers.
func DecodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, Malformed("decode JSON: %w", err)
	}
	return v, nil
}

// RecordsFromArray converts a decoded JSON array of objects into records.
// Non-object elements make the payload malformed.
func RecordsFromArray(v any) ([]Record, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, Malformed("expected JSON array, got %s", jsonKind(v))
	}
	out := make([]Record, 0, len(arr))
	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, Malformed("element %d: expected object, got %s", i, jsonKind(el))
		}
		out = append(out, Record(obj))
	}
	return out, nil
}

// ObjectField returns v[key] when v is an object that carries key.
func ObjectField(v any, key string) (any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, Malformed("expected JSON object, got %s", jsonKind(v))
	}
	field, ok := obj[key]
	if !ok {
		return nil, Malformed("missing %q key", key)
	}
	return field, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "bool"
	}
	return fmt.Sprintf("%T", v)
}

// IsSourceError reports whether err has been classified.
func IsSourceError(err error) bool {
	var se *SourceError
	return errors.As(err, &se)
}

// BaseProvider provides common functionality for provider implementations.
// Embed this in concrete providers to simplify implementation.
type BaseProvider struct {
	info        ProviderInfo
	fetchers    map[ModelType]Fetcher
	credentials map[string]string
}

// NewBaseProvider creates a base provider.
func NewBaseProvider(name, description, website string, creds []ProviderCredential) BaseProvider {
	return BaseProvider{
		info: ProviderInfo{
			Name:        name,
			Description: description,
			Website:     website,
			Credentials: creds,
		},
		fetchers:    make(map[ModelType]Fetcher),
		credentials: make(map[string]string),
	}
}

func (bp *BaseProvider) Info() ProviderInfo { return bp.info }

// Init checks that every required credential is present.
func (bp *BaseProvider) Init(credentials map[string]string) error {
	for _, cred := range bp.info.Credentials {
		if !cred.Required {
			continue
		}
		if credentials[cred.Name] == "" {
			return &ErrInvalidCredentials{
				Provider: bp.info.Name,
				Detail:   "missing required credential: " + cred.Name,
			}
		}
	}
	bp.credentials = make(map[string]string, len(credentials))
	for k, v := range credentials {
		bp.credentials[k] = v
	}
	return nil
}

func (bp *BaseProvider) Fetcher(model ModelType) Fetcher {
	return bp.fetchers[model]
}

// SupportedModels returns the provider's models in a stable order.
func (bp *BaseProvider) SupportedModels() []ModelType {
	models := make([]ModelType, 0, len(bp.fetchers))
	for m := range bp.fetchers {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

// RegisterFetcher adds a fetcher to this provider.
func (bp *BaseProvider) RegisterFetcher(f Fetcher) {
	bp.fetchers[f.ModelType()] = f
	bp.info.Models = bp.SupportedModels()
}

// Credential returns a stored credential value.
func (bp *BaseProvider) Credential(name string) string {
	return bp.credentials[name]
}
