package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleComparison() schema.ComparisonResult {
	aboutCur := schema.RouteSize{Raw: 6000, Gzip: 2048}
	aboutBase := schema.RouteSize{Raw: 3000, Gzip: 1024}
	homeCur := schema.RouteSize{Raw: 4000, Gzip: 1200}
	homeBase := schema.RouteSize{Raw: 4000, Gzip: 1200}
	newCur := schema.RouteSize{Raw: 900, Gzip: 300}
	oldBase := schema.RouteSize{Raw: 700, Gzip: 250}

	return schema.ComparisonResult{
		BaseBranch: "main",
		Routes: []schema.RouteComparison{
			{Route: "/", Current: &homeCur, Baseline: &homeBase, Diff: schema.DiffResult{Kind: schema.UnchangedKind, HasPercent: true}},
			{Route: "/about", Current: &aboutCur, Baseline: &aboutBase, Diff: schema.DiffResult{Kind: schema.IncreaseKind, Delta: 1024, Percent: 100, HasPercent: true, Severity: schema.CriticalSeverity}},
			{Route: "/new", Current: &newCur, Diff: schema.DiffResult{Kind: schema.NewKind}},
			{Route: "/old", Baseline: &oldBase, Diff: schema.DiffResult{Kind: schema.RemovedKind, Delta: 250}},
		},
		Summary: schema.ComparisonSummary{TotalRoutes: 4, ChangedRoutes: 3, NewRoutes: 1, RemovedRoutes: 1, IncreasedRoutes: 1, CriticalRoutes: 1, NetGzipDelta: 1074},
	}
}

func sampleRoutes() *schema.RouteSizes {
	routes := schema.NewRouteSizes()
	routes.Set("/", schema.RouteSize{Raw: 4096, Gzip: 1024})
	routes.Set("/about", schema.RouteSize{Raw: 2048, Gzip: 700})
	return routes
}

func TestWriteComparisonResults_Markdown(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Output: schema.MarkdownOut}
	require.NoError(t, WriteComparisonResults(&buf, sampleComparison(), "## report\n", cfg, time.Second))
	assert.Equal(t, "## report\n", buf.String())
}

func TestWriteComparisonResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Output: schema.JSONOut}
	require.NoError(t, WriteComparisonResults(&buf, sampleComparison(), "", cfg, time.Second))

	var got schema.ComparisonResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "main", got.BaseBranch)
	require.Len(t, got.Routes, 4)
	assert.Nil(t, got.Routes[3].Current)
	assert.Equal(t, schema.CriticalSeverity, got.Routes[1].Diff.Severity)
	assert.Equal(t, int64(1074), got.Summary.NetGzipDelta)
}

func TestWriteComparisonResults_YAML(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Output: schema.YAMLOut}
	require.NoError(t, WriteComparisonResults(&buf, sampleComparison(), "", cfg, time.Second))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "main", got["base_branch"])
	assert.Len(t, got["routes"], 4)
}

func TestWriteComparisonResults_CSV(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Output: schema.CSVOut}
	require.NoError(t, WriteComparisonResults(&buf, sampleComparison(), "", cfg, time.Second))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5) // header + 4 routes
	assert.Equal(t, "route", records[0][0])
	assert.Equal(t, []string{"/about", "6000", "2048", "3000", "1024", "increase", "1024", "100.00", "Critical"}, records[2])
	assert.Equal(t, []string{"/new", "900", "300", "", "", "new", "0", "", "New"}, records[3])
	assert.Equal(t, []string{"/old", "", "", "700", "250", "removed", "250", "", "Removed"}, records[4])
}

func TestWriteComparisonResults_Parquet(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Output: schema.ParquetOut}
	require.NoError(t, WriteComparisonResults(&buf, sampleComparison(), "", cfg, time.Second))
	assert.True(t, strings.HasPrefix(buf.String(), "PAR1"))
}

func TestWriteComparisonResults_Table(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Output: schema.TextOut, Width: 120, Workers: 4, StoreBackend: schema.SQLiteBackend}
	require.NoError(t, WriteComparisonResults(&buf, sampleComparison(), "", cfg, 2*time.Second))

	out := buf.String()
	assert.Contains(t, out, "/about")
	assert.Contains(t, out, "+1.0 KiB")
	assert.Contains(t, out, "+100.0%")
	assert.Contains(t, out, "Critical")
	assert.Contains(t, out, "Removed")
	assert.Contains(t, out, "Compared 4 routes against main: 3 changed")
	assert.Contains(t, out, "Net gzip delta: +1.0 KiB")
	assert.Contains(t, out, "with 4 workers. Store backend: sqlite")
}

func TestWriteRouteResults(t *testing.T) {
	tests := []struct {
		name   string
		output schema.OutputMode
		check  func(t *testing.T, out string)
	}{
		{"json keeps order", schema.JSONOut, func(t *testing.T, out string) {
			assert.Less(t, strings.Index(out, `"/"`), strings.Index(out, `"/about"`))
			routes, err := schema.ParseRouteSizes([]byte(out))
			require.NoError(t, err)
			assert.Equal(t, []string{"/", "/about"}, routes.Routes())
		}},
		{"yaml", schema.YAMLOut, func(t *testing.T, out string) {
			assert.Contains(t, out, "route: /about")
			assert.Contains(t, out, "gzip: 700")
		}},
		{"csv", schema.CSVOut, func(t *testing.T, out string) {
			assert.Equal(t, "route,raw_bytes,gzip_bytes\n/,4096,1024\n/about,2048,700\n", out)
		}},
		{"markdown", schema.MarkdownOut, func(t *testing.T, out string) {
			assert.Contains(t, out, "| `/about` | `2.0 KiB` | `700 B` |")
		}},
		{"parquet", schema.ParquetOut, func(t *testing.T, out string) {
			assert.True(t, strings.HasPrefix(out, "PAR1"))
		}},
		{"table", schema.TextOut, func(t *testing.T, out string) {
			assert.Contains(t, out, "2 routes, 6.0 KiB total (1.7 KiB gzipped)")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &contract.Config{Output: tt.output, Width: 100, Branch: "main"}
			require.NoError(t, WriteRouteResults(&buf, sampleRoutes(), cfg, time.Second))
			tt.check(t, buf.String())
		})
	}
}

func TestRouteRows(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := routeRows(sampleRoutes(), &contract.Config{Branch: "feature/x"}, now)
	require.Len(t, rows, 2)
	assert.Equal(t, "feature/x", rows[1].Branch)
	assert.Equal(t, int32(1), rows[1].Position)
	assert.Nil(t, rows[0].CommitSHA)
	assert.Equal(t, now, rows[0].CreatedAt)
}

func TestWriteHistoryResults(t *testing.T) {
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	history := []schema.SnapshotSummary{
		{ID: 2, Branch: "main", CommitSHA: "0123456789abcdef", CreatedAt: created, RouteCount: 3, TotalRaw: 9000, TotalGzip: 3000},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHistoryResults(&buf, history, &contract.Config{Output: schema.CSVOut}))
	assert.Equal(t, "id,branch,commit,created_at,routes,total_raw,total_gzip\n2,main,0123456789abcdef,2026-05-01 10:00:00,3,9000,3000\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteHistoryResults(&buf, nil, &contract.Config{Output: schema.JSONOut}))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, writeHistoryTable(&buf, history, created.Add(2*time.Hour)))
	assert.Contains(t, buf.String(), "0123456")
	assert.Contains(t, buf.String(), "2 hours ago")

	buf.Reset()
	require.NoError(t, WriteHistoryResults(&buf, nil, &contract.Config{Output: schema.TextOut}))
	assert.Equal(t, "No snapshots recorded yet.\n", buf.String())

	assert.Error(t, WriteHistoryResults(&buf, history, &contract.Config{Output: schema.ParquetOut}))
}

func TestOutWriter_WritesFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "report.md")
	cfg := &contract.Config{Output: schema.MarkdownOut, OutputFile: outputFile}

	require.NoError(t, NewOutWriter().WriteComparison(sampleComparison(), "## report\n", cfg, time.Second))
	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Equal(t, "## report\n", string(data))
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "1.0 KiB", humanBytes(1024))
	assert.Equal(t, "-1.0 KiB", humanBytes(-1024))
	assert.Equal(t, "+512 B", signedBytes(512))
	assert.Equal(t, "-512 B", signedBytes(-512))
	assert.Equal(t, "0 B", signedBytes(0))
}

func TestGetMaxTableRouteWidth(t *testing.T) {
	assert.Equal(t, 15, GetMaxTableRouteWidth(&contract.Config{Width: 40}, 30))
	assert.Equal(t, 60, GetMaxTableRouteWidth(&contract.Config{Width: 100}, 30))
	assert.Equal(t, 80, GetMaxTableRouteWidth(&contract.Config{Width: 300}, 30))
}
