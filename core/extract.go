package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/internal/gzipsize"
	"github.com/huangsam/bundlesize/schema"
	"github.com/rs/zerolog/log"
)

// LoadManifest reads and decodes a stats manifest file.
func LoadManifest(path string) (*schema.StatsManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats manifest: %w", err)
	}
	stats, err := schema.ParseStatsManifest(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stats manifest %s: %w", path, err)
	}
	return stats, nil
}

// ExtractOptions controls how a manifest's assets are gzip-sized.
type ExtractOptions struct {
	BuildDir  string // Defaults to the manifest's directory
	GzipLevel int // Defaults to contract.DefaultGzipLevel
	Workers   int
}

// ExtractRoutes loads a manifest and computes per-route sizes. Gzip sizes are read
// from the built assets under opts.BuildDir, which are compressed concurrently before
// the sequential extraction pass.
func ExtractRoutes(ctx context.Context, statsFile string, opts ExtractOptions) (*schema.RouteSizes, error) {
	stats, err := LoadManifest(statsFile)
	if err != nil {
		return nil, err
	}

	buildDir := opts.BuildDir
	if buildDir == "" {
		buildDir = filepath.Dir(statsFile)
	}
	level := opts.GzipLevel
	if level == 0 {
		level = contract.DefaultGzipLevel
	}
	collector := gzipsize.NewCollector(buildDir, level, opts.Workers)
	names := JSAssetNames(stats)
	if err := collector.Precompute(ctx, names); err != nil {
		return nil, fmt.Errorf("failed to compute gzip sizes: %w", err)
	}

	routes := ProcessStats(stats, collector.Lookup)
	log.Debug().
		Str("stats_file", statsFile).
		Str("build_dir", buildDir).
		Int("assets", len(names)).
		Int("routes", routes.Len()).
		Msg("routes extracted")
	return routes, nil
}

// LoadRouteSizes reads a snapshot JSON file written by collect.
func LoadRouteSizes(path string) (*schema.RouteSizes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	routes, err := schema.ParseRouteSizes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file %s: %w", path, err)
	}
	return routes, nil
}

// SaveRouteSizes writes routes as snapshot JSON.
func SaveRouteSizes(path string, routes *schema.RouteSizes) error {
	data, err := routes.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}
