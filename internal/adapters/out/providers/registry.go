// Package providers holds the provider adapter registry. Adapters register at
// composition time; command and query handlers resolve them by provider.
package providers

import (
	"fmt"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Registry maps providers to their adapters. It is populated once at startup
// and read-only afterwards, so lookups need no locking.
type Registry struct {
	adapters map[assignment.Provider]ports.ProviderAdapter
}

// NewRegistry creates a registry holding the given adapters, keyed by the
// provider each adapter reports.
func NewRegistry(adapters ...ports.ProviderAdapter) (*Registry, error) {
	registry := &Registry{
		adapters: make(map[assignment.Provider]ports.ProviderAdapter, len(adapters)),
	}

	for _, adapter := range adapters {
		provider := adapter.Provider()
		if err := provider.Validate(); err != nil {
			return nil, err
		}
		if _, exists := registry.adapters[provider]; exists {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"adapters", fmt.Errorf("duplicate adapter for provider %q", provider))
		}
		registry.adapters[provider] = adapter
	}

	return registry, nil
}

// Resolve returns the adapter for the given provider.
func (r *Registry) Resolve(provider assignment.Provider) (ports.ProviderAdapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, errs.NewObjectNotFoundError("provider adapter", provider.String())
	}
	return adapter, nil
}
