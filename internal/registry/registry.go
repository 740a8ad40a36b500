// Package registry holds the set of sport normalizers known to the pipeline.
package registry

import (
	"fmt"
	"sync"

	"github.com/BTheCoderr/theRounders/pkg/contracts"
)

// NormalizerRegistry maps sport keys to their normalizers
type NormalizerRegistry struct {
	normalizers map[string]contracts.SportNormalizer
	mu          sync.RWMutex
}

// NewNormalizerRegistry creates an empty registry
func NewNormalizerRegistry() *NormalizerRegistry {
	return &NormalizerRegistry{
		normalizers: make(map[string]contracts.SportNormalizer),
	}
}

// Register adds a sport normalizer. Registering the same sport twice is an error.
func (r *NormalizerRegistry) Register(normalizer contracts.SportNormalizer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sportKey := normalizer.GetSportKey()
	if _, exists := r.normalizers[sportKey]; exists {
		return fmt.Errorf("normalizer for sport %s is already registered", sportKey)
	}

	r.normalizers[sportKey] = normalizer
	return nil
}

// Get retrieves a normalizer by sport key
func (r *NormalizerRegistry) Get(sportKey string) (contracts.SportNormalizer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	normalizer, exists := r.normalizers[sportKey]
	return normalizer, exists
}

// SportKeys returns the registered sport keys
func (r *NormalizerRegistry) SportKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.normalizers))
	for key := range r.normalizers {
		keys = append(keys, key)
	}
	return keys
}

// All returns every registered normalizer
func (r *NormalizerRegistry) All() []contracts.SportNormalizer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	normalizers := make([]contracts.SportNormalizer, 0, len(r.normalizers))
	for _, normalizer := range r.normalizers {
		normalizers = append(normalizers, normalizer)
	}
	return normalizers
}

// Count returns the number of registered normalizers
func (r *NormalizerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.normalizers)
}
