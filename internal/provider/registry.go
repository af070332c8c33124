package provider

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Registry routes model requests to vendors. It is safe for concurrent use
// and is passed explicitly to whatever needs it.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider    // name → provider
	modelIdx  map[ModelType][]string // model → provider names (registration order)
	defaults  map[ModelType]string   // model → default provider name
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		modelIdx:  make(map[ModelType][]string),
		defaults:  make(map[ModelType]string),
	}
}

// Register adds a provider. The first provider registered for a model
// becomes its default. Registering a name again replaces the provider.
func (r *Registry) Register(p Provider) error {
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[info.Name] = p
	for _, model := range p.SupportedModels() {
		if !slices.Contains(r.modelIdx[model], info.Name) {
			r.modelIdx[model] = append(r.modelIdx[model], info.Name)
		}
		if r.defaults[model] == "" {
			r.defaults[model] = info.Name
		}
	}
	return nil
}

// Get returns the named provider.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns info about all registered providers, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	slices.SortFunc(infos, func(a, b ProviderInfo) int { return strings.Compare(a.Name, b.Name) })
	return infos
}

// ProvidersFor returns the names of providers that support the given model,
// default first, then registration order.
func (r *Registry) ProvidersFor(model ModelType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def := r.defaults[model]
	if def == "" {
		return slices.Clone(r.modelIdx[model])
	}
	rest := slices.DeleteFunc(slices.Clone(r.modelIdx[model]), func(n string) bool { return n == def })
	return append([]string{def}, rest...)
}

// DefaultProvider returns the default provider name for a model type.
func (r *Registry) DefaultProvider(model ModelType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.defaults[model]
	return name, ok
}

// SetDefault sets the default provider for a model type.
func (r *Registry) SetDefault(model ModelType, providerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[providerName]
	if !ok {
		return &ErrProviderNotFound{Name: providerName}
	}
	if p.Fetcher(model) == nil {
		return &ErrModelNotSupported{Provider: providerName, Model: model}
	}
	r.defaults[model] = providerName
	return nil
}

// Fetch retrieves data for the given model type using the provider named in
// params[ParamProvider], or the model's default. The symbol parameter is
// normalized to upper case before it reaches the fetcher.
func (r *Registry) Fetch(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	providerName := params[ParamProvider]

	r.mu.RLock()
	if providerName == "" {
		providerName = r.defaults[model]
	}
	p, ok := r.providers[providerName]
	r.mu.RUnlock()

	if !ok || providerName == "" {
		return nil, &ErrProviderNotFound{Name: providerName}
	}

	fetcher := p.Fetcher(model)
	if fetcher == nil {
		return nil, &ErrModelNotSupported{Provider: providerName, Model: model}
	}

	params = params.Clone()
	if s, ok := params[ParamSymbol]; ok {
		params[ParamSymbol] = strings.ToUpper(strings.TrimSpace(s))
	}
	if err := ValidateParams(params, fetcher.RequiredParams()); err != nil {
		return nil, err
	}

	result, err := fetcher.Fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("provider %q fetch %s: %w", providerName, model, err)
	}

	result.Provider = providerName
	result.Model = model
	if result.FetchedAt.IsZero() {
		result.FetchedAt = time.Now()
	}
	return result, nil
}

// FetchWithFallback tries the preferred provider first, then the other
// providers that support the model. A NoDataFound answer or a parameter
// error is final; vendor failures move on to the next provider.
func (r *Registry) FetchWithFallback(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	result, err := r.Fetch(ctx, model, params)
	if err == nil || !shouldFallBack(err) {
		return result, err
	}

	tried := params[ParamProvider]
	if tried == "" {
		tried, _ = r.DefaultProvider(model)
	}
	for _, name := range r.ProvidersFor(model) {
		if name == tried {
			continue
		}
		result, err = r.Fetch(ctx, model, params.Clone(ParamProvider, name))
		if err == nil || !shouldFallBack(err) {
			return result, err
		}
	}
	return nil, fmt.Errorf("all providers failed for model %s: %w", model, err)
}

// ModelCoverage maps each model to its providers in registration order.
func (r *Registry) ModelCoverage() map[ModelType][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coverage := make(map[ModelType][]string, len(r.modelIdx))
	for model, names := range r.modelIdx {
		coverage[model] = slices.Clone(names)
	}
	return coverage
}

func shouldFallBack(err error) bool {
	if errors.Is(err, ErrNoDataFound) {
		return false
	}
	var missing *ErrMissingParam
	if errors.As(err, &missing) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}
