package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/internal/parquet"
	"github.com/huangsam/bundlesize/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteComparisonResults outputs a comparison, dispatching based on the output format configured.
func WriteComparisonResults(w io.Writer, result schema.ComparisonResult, markdown string, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.MarkdownOut, "":
		_, err := io.WriteString(w, markdown)
		return err
	case schema.JSONOut:
		if err := writeJSON(w, result); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		if err := writeYAML(w, result); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultsForComparison(w, result); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.Write(w, parquet.ConvertComparisons(result.Routes)); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeComparisonTable(w, result, cfg, duration)
	}
	return nil
}

// writeCSVResultsForComparison writes one row per route, changed or not.
func writeCSVResultsForComparison(w io.Writer, result schema.ComparisonResult) error {
	header := []string{
		"route",
		"current_raw",
		"current_gzip",
		"baseline_raw",
		"baseline_gzip",
		"kind",
		"delta_bytes",
		"percent",
		"label",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range result.Routes {
			curRaw, curGzip := optionalSize(r.Current)
			baseRaw, baseGzip := optionalSize(r.Baseline)
			percent := ""
			if r.Diff.HasPercent {
				percent = strconv.FormatFloat(r.Diff.Percent, 'f', 2, 64)
			}
			row := []string{
				r.Route,
				curRaw,
				curGzip,
				baseRaw,
				baseGzip,
				string(r.Diff.Kind),
				strconv.FormatInt(r.Diff.Delta, 10),
				percent,
				contract.GetPlainLabel(r.Diff),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func optionalSize(size *schema.RouteSize) (raw, gzip string) {
	if size == nil {
		return "", ""
	}
	return strconv.FormatInt(size.Raw, 10), strconv.FormatInt(size.Gzip, 10)
}

// writeComparisonTable writes every route with its baseline, delta and status.
func writeComparisonTable(writer io.Writer, result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(writer)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Route", "Size (gz)", "Baseline (gz)", "Delta", "Change", "Status"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	routeWidth := GetMaxTableRouteWidth(cfg, 70)
	var data [][]string
	for _, r := range result.Routes {
		current, baseline := "—", "—"
		if r.Current != nil {
			current = humanBytes(r.Current.Gzip)
		}
		if r.Baseline != nil {
			baseline = humanBytes(r.Baseline.Gzip)
		}

		delta := ""
		switch r.Diff.Kind {
		case schema.IncreaseKind:
			delta = signedBytes(r.Diff.Delta)
		case schema.DecreaseKind, schema.RemovedKind:
			delta = signedBytes(-r.Diff.Delta)
		case schema.NewKind:
			delta = signedBytes(r.Current.Gzip)
		}

		change := ""
		if r.Diff.HasPercent && r.Diff.Kind != schema.UnchangedKind {
			sign := "+"
			if r.Diff.Kind == schema.DecreaseKind {
				sign = "-"
			}
			change = fmt.Sprintf("%s%.1f%%", sign, r.Diff.Percent)
		}

		status := contract.GetPlainLabel(r.Diff)
		if cfg.UseColors {
			status = contract.GetColorLabel(r.Diff)
		}

		data = append(data, []string{
			contract.TruncatePath(r.Route, routeWidth),
			current,
			baseline,
			delta,
			change,
			status,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := result.Summary
	if _, err := fmt.Fprintf(writer, "Compared %d routes against %s: %d changed\n", s.TotalRoutes, result.BaseBranch, s.ChangedRoutes); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "New: %d, Removed: %d, Increased: %d (critical: %d), Decreased: %d\n",
		s.NewRoutes, s.RemovedRoutes, s.IncreasedRoutes, s.CriticalRoutes, s.DecreasedRoutes); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Net gzip delta: %s\n", signedBytes(s.NetGzipDelta)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Completed in %v with %d workers. Store backend: %s\n", duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}
