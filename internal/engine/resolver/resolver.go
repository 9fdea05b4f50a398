// Package resolver flattens profile inheritance chains into effective configs.
package resolver

import (
	"errors"
	"strings"

	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Resolver resolves profiles read from a profile store. It never mutates the store.
type Resolver struct {
	store ports.ProfileStore
}

// New creates a Resolver reading from store.
func New(store ports.ProfileStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the effective config of key: inherited profiles merged left
// to right, the profile's own keys on top, metadata keys removed.
func (r *Resolver) Resolve(key domain.ProfileKey) (domain.ResolvedConfig, error) {
	if !key.Category().Resolvable() {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownCategory, "failed to resolve profile"), "key", key.String())
	}

	cfg, err := r.resolve(key, "", nil)
	if err != nil {
		return nil, err
	}

	delete(cfg, domain.InheritsKey)
	delete(cfg, domain.CompatiblePrintersConditionKey)
	return cfg, nil
}

// resolve walks the chain depth first. chain holds the keys on the current
// path only, so a profile reachable through two parents is not a cycle.
func (r *Resolver) resolve(key, inheritedBy domain.ProfileKey, chain []domain.ProfileKey) (domain.ResolvedConfig, error) {
	for _, seen := range chain {
		if seen == key {
			names := make([]string, 0, len(chain)+1)
			for _, k := range chain {
				names = append(names, k.String())
			}
			names = append(names, key.String())
			err := zerr.With(zerr.Wrap(domain.ErrCyclicInheritance, "failed to resolve profile"), "key", key.String())
			return nil, zerr.With(err, "chain", strings.Join(names, " -> "))
		}
	}

	record, err := r.store.Get(key)
	if err != nil {
		if inheritedBy != "" && errors.Is(err, domain.ErrProfileNotFound) {
			err = zerr.With(zerr.Wrap(err, "failed to resolve inherited profile"), "key", key.String())
			return nil, zerr.With(err, "inherited_by", inheritedBy.String())
		}
		return nil, err
	}

	chain = append(chain, key)
	merged := domain.ResolvedConfig{}
	for _, id := range record.Inherits() {
		parent, err := r.resolve(key.Sibling(id), key, chain)
		if err != nil {
			return nil, err
		}
		merged.Merge(parent)
	}
	merged.Merge(record)

	return merged, nil
}

// Compose merges per-category configs in the given order; later configs win on
// colliding keys.
func Compose(configs ...domain.ResolvedConfig) domain.ResolvedConfig {
	out := domain.ResolvedConfig{}
	for _, cfg := range configs {
		out.Merge(cfg)
	}
	return out
}
