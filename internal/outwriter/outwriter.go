// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"time"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteComparison prints a route comparison using the configured output format.
// The markdown report is rendered by the caller so every output shares one renderer.
func (ow *OutWriter) WriteComparison(result schema.ComparisonResult, markdown string, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteComparisonResults(w, result, markdown, cfg, duration)
	}, "Wrote comparison")
}

// WriteRoutes prints the route sizes of one build using the configured output format.
func (ow *OutWriter) WriteRoutes(routes *schema.RouteSizes, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteRouteResults(w, routes, cfg, duration)
	}, "Wrote routes")
}

// WriteHistory prints stored snapshot summaries using the configured output format.
func (ow *OutWriter) WriteHistory(history []schema.SnapshotSummary, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteHistoryResults(w, history, cfg)
	}, "Wrote history")
}
