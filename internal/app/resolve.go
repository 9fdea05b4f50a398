package app

import (
	"context"

	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.trai.ch/slicecache/internal/engine/gcode"
	"go.trai.ch/slicecache/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// ResolveOptions selects the profiles to combine and the changes applied on top.
type ResolveOptions struct {
	Printer  domain.ProfileKey
	Filament domain.ProfileKey
	Print    domain.ProfileKey

	// Overrides are applied in order after the profiles are merged.
	Overrides []domain.Override
	// Injections are compiled into layer_gcode after the overrides.
	Injections []domain.Injection
}

// Keys returns the selected profiles in merge order: printer, filament, print.
func (o *ResolveOptions) Keys() []domain.ProfileKey {
	var keys []domain.ProfileKey
	for _, key := range []domain.ProfileKey{o.Printer, o.Filament, o.Print} {
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// Resolve builds the effective config for the selected profiles.
func (a *App) Resolve(ctx context.Context, opts ResolveOptions) (domain.ResolvedConfig, error) {
	_, index, err := a.load()
	if err != nil {
		return nil, err
	}
	return a.resolve(ctx, index, opts)
}

func (a *App) resolve(ctx context.Context, store ports.ProfileStore, opts ResolveOptions) (domain.ResolvedConfig, error) {
	keys := opts.Keys()
	if len(keys) == 0 {
		return nil, domain.ErrNoProfilesSelected
	}

	_, span := a.tracer.Start(ctx, "resolve", ports.WithAttribute("profiles", keyStrings(keys)))
	defer span.End()

	r := resolver.New(store)
	configs := make([]domain.ResolvedConfig, 0, len(keys))
	for _, key := range keys {
		cfg, err := r.Resolve(key)
		if err != nil {
			span.RecordError(err)
			return nil, zerr.With(zerr.Wrap(err, "failed to resolve profile"), "key", key.String())
		}
		configs = append(configs, cfg)
	}

	cfg := resolver.Compose(configs...)
	cfg.ApplyOverrides(opts.Overrides)
	cfg = gcode.Inject(cfg, opts.Injections)

	span.SetAttribute("keys", len(cfg))
	return cfg, nil
}

func keyStrings(keys []domain.ProfileKey) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = key.String()
	}
	return out
}
