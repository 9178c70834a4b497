// Package parquet provides data structures and functions for exporting bundle
// size data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/bundlesize/schema"
	"github.com/parquet-go/parquet-go"
)

// RouteSizeRow is one route of one stored snapshot.
// This struct maps to bundlesize_route_sizes joined with bundlesize_snapshots.
type RouteSizeRow struct {
	// SnapshotID references the parent snapshot
	SnapshotID int64 `parquet:"snapshot_id,snappy"`

	// Branch is the branch the snapshot was collected on
	Branch string `parquet:"branch,snappy,dict"`

	// CommitSHA is the commit the snapshot was collected at (nullable)
	CommitSHA *string `parquet:"commit_sha,optional,snappy"`

	// CreatedAt is when the snapshot was recorded
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// Route is the normalized route path
	Route string `parquet:"route,snappy,dict"`

	// Position is the route's order within its snapshot
	Position int32 `parquet:"position,snappy"`

	RawBytes  int64 `parquet:"raw_bytes,snappy"`
	GzipBytes int64 `parquet:"gzip_bytes,snappy"`
}

// RouteComparisonRow is one route of a current-versus-baseline comparison.
type RouteComparisonRow struct {
	Route        string   `parquet:"route,snappy"`
	CurrentRaw   *int64   `parquet:"current_raw,optional,snappy"`
	CurrentGzip  *int64   `parquet:"current_gzip,optional,snappy"`
	BaselineRaw  *int64   `parquet:"baseline_raw,optional,snappy"`
	BaselineGzip *int64   `parquet:"baseline_gzip,optional,snappy"`
	Kind         string   `parquet:"kind,snappy,dict"`
	DeltaBytes   int64    `parquet:"delta_bytes,snappy"`
	Percent      *float64 `parquet:"percent,optional,snappy"` // Absent when the baseline is 0
	Severity     *string  `parquet:"severity,optional,snappy,dict"`
}

// ConvertRouteSizeRecords converts stored route size records to Parquet rows.
func ConvertRouteSizeRecords(records []schema.RouteSizeRecord) []RouteSizeRow {
	rows := make([]RouteSizeRow, 0, len(records))
	for _, r := range records {
		row := RouteSizeRow{
			SnapshotID: r.SnapshotID,
			Branch:     r.Branch,
			CreatedAt:  r.CreatedAt,
			Route:      r.Route,
			Position:   r.Position,
			RawBytes:   r.RawBytes,
			GzipBytes:  r.GzipBytes,
		}
		if r.CommitSHA != "" {
			sha := r.CommitSHA
			row.CommitSHA = &sha
		}
		rows = append(rows, row)
	}
	return rows
}

// ConvertComparisons converts route comparisons to Parquet rows.
func ConvertComparisons(routes []schema.RouteComparison) []RouteComparisonRow {
	rows := make([]RouteComparisonRow, 0, len(routes))
	for _, cmp := range routes {
		row := RouteComparisonRow{
			Route:      cmp.Route,
			Kind:       string(cmp.Diff.Kind),
			DeltaBytes: cmp.Diff.Delta,
		}
		if cmp.Current != nil {
			raw, gzip := cmp.Current.Raw, cmp.Current.Gzip
			row.CurrentRaw, row.CurrentGzip = &raw, &gzip
		}
		if cmp.Baseline != nil {
			raw, gzip := cmp.Baseline.Raw, cmp.Baseline.Gzip
			row.BaselineRaw, row.BaselineGzip = &raw, &gzip
		}
		if cmp.Diff.HasPercent {
			pct := cmp.Diff.Percent
			row.Percent = &pct
		}
		if cmp.Diff.Severity != schema.NoSeverity {
			sev := string(cmp.Diff.Severity)
			row.Severity = &sev
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteRouteSizesParquet writes snapshot route rows to a Parquet file.
func WriteRouteSizesParquet(data []RouteSizeRow, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteComparisonsParquet writes comparison rows to a Parquet file.
func WriteComparisonsParquet(data []RouteComparisonRow, outputPath string) error {
	return writeFile(data, outputPath)
}

// writeFile creates outputPath and writes all rows to it.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Write encodes rows to w with a schema inferred from T's struct tags.
func Write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
