package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type ProviderFactory func(ctx context.Context, model string) (Provider, error)

// ProviderSpec registers a provider together with the models it is known to
// serve. ListModels is optional and consulted when a requested model is not
// among StaticModels.
type ProviderSpec struct {
	Name         string
	StaticModels []ModelInfo
	Factory      ProviderFactory
	ListModels   ModelLister
}

type Registry struct {
	mu        sync.RWMutex
	providers map[string]*ProviderSpec
	order     []string
	fallback  string
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]*ProviderSpec)}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a provider with no known models.
func (r *Registry) Register(name string, f ProviderFactory) {
	r.RegisterProvider(ProviderSpec{Name: name, Factory: f})
}

// RegisterProvider adds or replaces a provider. The first one registered
// becomes the default until SetDefault is called.
func (r *Registry) RegisterProvider(spec ProviderSpec) {
	key := normalize(spec.Name)
	spec.Name = strings.TrimSpace(spec.Name)
	models := make([]ModelInfo, len(spec.StaticModels))
	for i, m := range spec.StaticModels {
		m.Provider = spec.Name
		models[i] = m
	}
	spec.StaticModels = models

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[key]; !ok {
		r.order = append(r.order, key)
	}
	r.providers[key] = &spec
	if r.fallback == "" {
		r.fallback = key
	}
}

func (r *Registry) SetDefault(name string) error {
	key := normalize(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[key]; !ok {
		return fmt.Errorf("unknown ai provider: %s", name)
	}
	r.fallback = key
	return nil
}

// Default returns the name of the default provider, or "" if none.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[r.fallback]; ok {
		return p.Name
	}
	return ""
}

// Providers lists provider names in registration order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.providers[k].Name)
	}
	return out
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.spec(name)
	return ok
}

func (r *Registry) spec(name string) (*ProviderSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[normalize(name)]
	return p, ok
}

func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	p, ok := r.spec(name)
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %s", normalize(name))
	}
	if p.Factory == nil {
		return nil, fmt.Errorf("ai provider %s has no factory", p.Name)
	}
	return p.Factory(ctx, model)
}

// ListModels returns the static models followed by any live models not
// already listed.
func (r *Registry) ListModels(ctx context.Context, name string) ([]ModelInfo, error) {
	p, ok := r.spec(name)
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %s", normalize(name))
	}
	if p.ListModels == nil {
		return mergeModels(p.StaticModels, nil), nil
	}
	live, err := p.ListModels(ctx)
	if err != nil {
		return mergeModels(p.StaticModels, nil), err
	}
	for i := range live {
		live[i].Provider = p.Name
	}
	return mergeModels(p.StaticModels, live), nil
}

// mergeModels appends the live models whose names are not already static.
func mergeModels(static, live []ModelInfo) []ModelInfo {
	out := append([]ModelInfo(nil), static...)
	seen := make(map[string]bool, len(out))
	for _, m := range out {
		seen[m.Name] = true
	}
	for _, m := range live {
		if seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		out = append(out, m)
	}
	return out
}

// Resolution is the outcome of ResolveModel.
type Resolution struct {
	Provider string
	Model    ModelInfo
	// ProviderFallback is set when the requested provider was unknown and
	// the default provider was used.
	ProviderFallback bool
	// ModelFallback is set when the requested model was unknown and the
	// first available model was used.
	ModelFallback bool
}

// ResolveModel picks the model to use. Unknown providers fall back to the
// default provider. The model is looked up in the static list, then in the
// live list; if still unknown the first static model is used, or the first
// live one when the provider has no static models.
func (r *Registry) ResolveModel(ctx context.Context, provider, model string) (Resolution, error) {
	res := Resolution{}
	p, ok := r.spec(provider)
	if !ok {
		def := r.Default()
		if def == "" {
			return res, &ModelResolutionError{Provider: provider, Model: model,
				Err: fmt.Errorf("unknown ai provider: %s", provider)}
		}
		p, _ = r.spec(def)
		res.ProviderFallback = true
	}
	res.Provider = p.Name

	if m, ok := findModel(p.StaticModels, model); ok {
		res.Model = m
		return res, nil
	}

	var live []ModelInfo
	var liveErr error
	if p.ListModels != nil {
		live, liveErr = p.ListModels(ctx)
		for i := range live {
			live[i].Provider = p.Name
		}
		if m, ok := findModel(live, model); ok {
			res.Model = m
			return res, nil
		}
	}

	candidates := mergeModels(p.StaticModels, live)
	if len(candidates) == 0 {
		return res, &ModelResolutionError{Provider: p.Name, Model: model, Err: liveErr}
	}
	res.Model = candidates[0]
	res.ModelFallback = true
	return res, nil
}

func findModel(models []ModelInfo, name string) (ModelInfo, bool) {
	if name == "" {
		return ModelInfo{}, false
	}
	for _, m := range models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelInfo{}, false
}
