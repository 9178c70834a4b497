package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/internal/parquet"
	"github.com/huangsam/bundlesize/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRouteResults outputs route sizes, dispatching based on the output format configured.
func WriteRouteResults(w io.Writer, routes *schema.RouteSizes, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, routes); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		if err := writeYAML(w, routes); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultsForRoutes(w, routes); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.Write(w, routeRows(routes, cfg, time.Now())); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.MarkdownOut:
		return writeMarkdownRoutes(w, routes)
	default:
		return writeRouteTable(w, routes, cfg, duration)
	}
	return nil
}

// routeRows labels a single build's routes like a stored snapshot so both export the same schema.
func routeRows(routes *schema.RouteSizes, cfg *contract.Config, now time.Time) []parquet.RouteSizeRow {
	records := make([]schema.RouteSizeRecord, 0, routes.Len())
	for i, route := range routes.Routes() {
		size, _ := routes.Get(route)
		records = append(records, schema.RouteSizeRecord{
			Branch:    cfg.Branch,
			CommitSHA: cfg.CommitSHA,
			CreatedAt: now,
			Route:     route,
			Position:  int32(i),
			RawBytes:  size.Raw,
			GzipBytes: size.Gzip,
		})
	}
	return parquet.ConvertRouteSizeRecords(records)
}

func writeCSVResultsForRoutes(w io.Writer, routes *schema.RouteSizes) error {
	return writeCSVWithHeader(w, []string{"route", "raw_bytes", "gzip_bytes"}, func(cw *csv.Writer) error {
		for _, route := range routes.Routes() {
			size, _ := routes.Get(route)
			row := []string{route, strconv.FormatInt(size.Raw, 10), strconv.FormatInt(size.Gzip, 10)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeMarkdownRoutes(w io.Writer, routes *schema.RouteSizes) error {
	var sb strings.Builder
	sb.WriteString("| Route | Size | Size (gzipped) |\n")
	sb.WriteString("| --- | --- | --- |\n")
	for _, route := range routes.Routes() {
		size, _ := routes.Get(route)
		fmt.Fprintf(&sb, "| `%s` | `%s` | `%s` |\n", route, humanBytes(size.Raw), humanBytes(size.Gzip))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeRouteTable(writer io.Writer, routes *schema.RouteSizes, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(writer)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Route", "Size", "Size (gz)"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	routeWidth := GetMaxTableRouteWidth(cfg, 30)
	var data [][]string
	for _, route := range routes.Routes() {
		size, _ := routes.Get(route)
		data = append(data, []string{
			contract.TruncatePath(route, routeWidth),
			humanBytes(size.Raw),
			humanBytes(size.Gzip),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	totals := routes.Totals()
	if _, err := fmt.Fprintf(writer, "%d routes, %s total (%s gzipped)\n", routes.Len(), humanBytes(totals.Raw), humanBytes(totals.Gzip)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}
