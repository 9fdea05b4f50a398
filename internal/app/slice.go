package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.trai.ch/slicecache/internal/engine/gcode"
	"go.trai.ch/slicecache/internal/engine/memo"
	"go.trai.ch/zerr"
)

// SliceOptions describes one slicing request.
type SliceOptions struct {
	ResolveOptions

	// GeometryPath is the exported mesh handed to the slicer.
	GeometryPath string
	// ObjectNames name the exported objects; the artifact is named after them.
	// When empty the geometry file's stem is used.
	ObjectNames []string
	// Destination receives a copy of the artifact when set.
	Destination string
	// Force slices even when a matching artifact exists.
	Force bool
	// RefreshProfiles re-fetches the selected profiles before resolving them.
	RefreshProfiles bool
}

// SliceResult reports where the artifact is and whether it was reused.
type SliceResult struct {
	ArtifactPath string
	ConfigPath   string
	Destination  string
	Reused       bool
	Fingerprint  domain.BuildFingerprint
	Stats        domain.GcodeStats
}

// Slice resolves the selected profiles, writes the config and either reuses a
// matching artifact or runs the slicer and records the new fingerprint.
func (a *App) Slice(ctx context.Context, opts SliceOptions) (*SliceResult, error) {
	settings, index, err := a.load()
	if err != nil {
		return nil, err
	}

	ctx, span := a.tracer.Start(ctx, "slice", ports.WithAttribute("geometry", opts.GeometryPath))
	defer span.End()

	result, err := a.slice(ctx, settings, index, opts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("reused", result.Reused)
	span.SetAttribute("artifact", result.ArtifactPath)
	return result, nil
}

func (a *App) slice(
	ctx context.Context,
	settings *domain.Settings,
	index ports.CacheIndex,
	opts SliceOptions,
) (*SliceResult, error) {
	if opts.RefreshProfiles {
		for _, key := range opts.Keys() {
			if err := index.RefreshKey(ctx, key); err != nil {
				if ctx.Err() != nil {
					return nil, zerr.Wrap(ctx.Err(), "slicing canceled")
				}
				a.logger.Warn(fmt.Sprintf("using cached %s: %v", key, err))
			}
		}
	}

	cfg, err := a.resolve(ctx, index, opts.ResolveOptions)
	if err != nil {
		return nil, err
	}

	names := opts.ObjectNames
	if len(names) == 0 {
		names = []string{strings.TrimSuffix(filepath.Base(opts.GeometryPath), filepath.Ext(opts.GeometryPath))}
	}
	artifact := filepath.Join(settings.WorkDir, memo.ArtifactName(memo.BaseName(names), cfg))
	configPath := strings.TrimSuffix(artifact, filepath.Ext(artifact)) + domain.ProfileExt

	if err := os.MkdirAll(settings.WorkDir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create work directory"), "path", settings.WorkDir)
	}
	if err := os.WriteFile(configPath, cfg.Serialize(), domain.FilePerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to write slicer config"), "path", configPath)
	}

	memoizer := memo.New(a.hasher)
	fp, err := memoizer.Fingerprint(opts.GeometryPath, configPath)
	if err != nil {
		return nil, err
	}

	result := &SliceResult{
		ArtifactPath: artifact,
		ConfigPath:   configPath,
		Destination:  opts.Destination,
		Fingerprint:  fp,
	}

	if !opts.Force {
		skip, err := memoizer.ShouldSkip(fp, artifact)
		if err != nil {
			return nil, err
		}
		result.Reused = skip
	}

	if result.Reused {
		a.logger.Info("inputs unchanged, reusing " + filepath.Base(artifact))
	} else {
		// The slicer writes beside the artifact; a failed or canceled run
		// leaves the previous artifact and its fingerprint as they were.
		partial := memo.PartialPath(artifact)
		defer func() { _ = os.Remove(partial) }()

		job := domain.SliceJob{
			Command:      settings.Slicer,
			ConfigPath:   configPath,
			GeometryPath: opts.GeometryPath,
			OutputPath:   partial,
		}
		if err := a.slicer.Slice(ctx, job); err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, zerr.Wrap(ctx.Err(), "slicing canceled")
		}
		if err := memoizer.Commit(fp, partial, artifact); err != nil {
			return nil, err
		}
		a.logger.Info("sliced " + filepath.Base(artifact))
	}

	if err := memoizer.Reuse(artifact, opts.Destination); err != nil {
		return nil, err
	}

	stats, err := gcode.ReadStats(artifact)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("could not read estimates from %s: %v", filepath.Base(artifact), err))
	}
	result.Stats = stats

	if info, err := os.Stat(artifact); err == nil {
		a.logger.Info(fmt.Sprintf("%s is %s", filepath.Base(artifact), humanize.Bytes(uint64(info.Size())))) //nolint:gosec // Size is never negative
	}

	return result, nil
}
