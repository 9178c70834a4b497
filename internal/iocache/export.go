package iocache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/bundlesize/internal/parquet"
	"github.com/huangsam/bundlesize/schema"
)

// RouteSizeExporter is a snapshot store that can list every stored route size.
type RouteSizeExporter interface {
	GetStatus() (schema.StoreStatus, error)
	GetAllRouteSizeRecords(ctx context.Context) ([]schema.RouteSizeRecord, error)
}

// ExecuteStoreExport writes all stored route sizes to a Parquet file.
func ExecuteStoreExport(ctx context.Context, w io.Writer, store RouteSizeExporter, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalSnapshots == 0 {
		return errors.New("no snapshot data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total snapshots: %d\n", status.TotalSnapshots)

	records, err := store.GetAllRouteSizeRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve route sizes: %w", err)
	}

	rows := parquet.ConvertRouteSizeRecords(records)
	if err := parquet.WriteRouteSizesParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write route sizes: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d route size records to: %s\n", len(rows), outputFile)
	return nil
}
