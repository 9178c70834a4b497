// Package gzipsize measures gzip-compressed sizes of built assets.
package gzipsize

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Collector precomputes gzip sizes for assets under BuildDir.
// Precompute runs in parallel; Lookup only reads the finished table.
type Collector struct {
	BuildDir string
	Level    int
	Workers  int

	mu    sync.RWMutex
	sizes map[string]int64
}

// NewCollector creates a collector for the given build directory.
func NewCollector(buildDir string, level, workers int) *Collector {
	return &Collector{
		BuildDir: buildDir,
		Level:    level,
		Workers:  workers,
		sizes:    make(map[string]int64),
	}
}

// Precompute gzips every named asset with up to Workers goroutines.
// Unreadable assets are recorded as 0 and do not fail the run.
// Only context cancellation or an invalid compression level returns an error.
func (c *Collector) Precompute(ctx context.Context, names []string) error {
	if _, err := gzip.NewWriterLevel(io.Discard, c.Level); err != nil {
		return fmt.Errorf("invalid gzip level %d: %w", c.Level, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Workers, 1))

	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			size, err := FileSize(filepath.Join(c.BuildDir, filepath.FromSlash(name)), c.Level)
			if err != nil {
				log.Debug().Err(err).Str("asset", name).Msg("gzip size unavailable")
				size = 0
			}
			c.mu.Lock()
			c.sizes[name] = size
			c.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// Lookup returns the precomputed gzip size of an asset, or 0 when unknown.
// It has the shape expected by core.ProcessStats.
func (c *Collector) Lookup(name string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sizes[name]
}

// Len returns the number of assets measured.
func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sizes)
}

// FileSize returns the gzip-compressed size of a file at the given level.
func FileSize(path string, level int) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	return ReaderSize(f, level)
}

// ReaderSize returns the gzip-compressed size of everything read from r.
func ReaderSize(r io.Reader, level int) (int64, error) {
	counter := &countingWriter{}
	zw, err := gzip.NewWriterLevel(counter, level)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(zw, r); err != nil {
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}
	return counter.n, nil
}

// countingWriter discards bytes while counting them.
type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}
