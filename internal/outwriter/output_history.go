package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// DateTimeFormat is used for absolute timestamps in CSV and tables.
const DateTimeFormat = "2006-01-02 15:04:05"

// WriteHistoryResults outputs snapshot summaries, dispatching based on the output format configured.
func WriteHistoryResults(w io.Writer, history []schema.SnapshotSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if history == nil {
			history = []schema.SnapshotSummary{}
		}
		if err := writeJSON(w, history); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		if err := writeYAML(w, history); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultsForHistory(w, history); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errors.New("parquet output is not available for history, use 'store export' instead")
	default:
		return writeHistoryTable(w, history, time.Now())
	}
	return nil
}

func writeCSVResultsForHistory(w io.Writer, history []schema.SnapshotSummary) error {
	header := []string{"id", "branch", "commit", "created_at", "routes", "total_raw", "total_gzip"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range history {
			row := []string{
				strconv.FormatInt(s.ID, 10),
				s.Branch,
				s.CommitSHA,
				s.CreatedAt.UTC().Format(DateTimeFormat),
				strconv.Itoa(s.RouteCount),
				strconv.FormatInt(s.TotalRaw, 10),
				strconv.FormatInt(s.TotalGzip, 10),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeHistoryTable(writer io.Writer, history []schema.SnapshotSummary, now time.Time) error {
	if len(history) == 0 {
		_, err := fmt.Fprintln(writer, "No snapshots recorded yet.")
		return err
	}

	table := tablewriter.NewWriter(writer)
	defer func() { _ = table.Close() }()

	table.Header([]string{"ID", "Branch", "Commit", "Recorded", "Routes", "Total", "Total (gz)"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, s := range history {
		commit := s.CommitSHA
		if len(commit) > 7 {
			commit = commit[:7]
		}
		data = append(data, []string{
			strconv.FormatInt(s.ID, 10),
			s.Branch,
			commit,
			humanize.RelTime(s.CreatedAt, now, "ago", "from now"),
			strconv.Itoa(s.RouteCount),
			humanBytes(s.TotalRaw),
			humanBytes(s.TotalGzip),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
