package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/bundlesize/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []schema.RouteSizeRecord {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []schema.RouteSizeRecord{
		{SnapshotID: 1, Branch: "main", CommitSHA: "abc123", CreatedAt: created, Route: "/", Position: 0, RawBytes: 4096, GzipBytes: 1024},
		{SnapshotID: 1, Branch: "main", CommitSHA: "abc123", CreatedAt: created, Route: "/about", Position: 1, RawBytes: 2048, GzipBytes: 700},
		{SnapshotID: 2, Branch: "feature/x", CreatedAt: created.Add(time.Hour), Route: "/", Position: 0, RawBytes: 5000, GzipBytes: 1300},
	}
}

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestRouteSizeRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(RouteSizeRow))
	for _, col := range []string{"snapshot_id", "branch", "commit_sha", "created_at", "route", "position", "raw_bytes", "gzip_bytes"} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "Column %s should exist in schema", col)
	}
}

func TestRouteComparisonRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(RouteComparisonRow))
	for _, col := range []string{"route", "current_raw", "current_gzip", "baseline_raw", "baseline_gzip", "kind", "delta_bytes", "percent", "severity"} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "Column %s should exist in schema", col)
	}
}

func TestConvertRouteSizeRecords(t *testing.T) {
	rows := ConvertRouteSizeRecords(sampleRecords())
	require.Len(t, rows, 3)

	require.NotNil(t, rows[0].CommitSHA)
	assert.Equal(t, "abc123", *rows[0].CommitSHA)
	assert.Nil(t, rows[2].CommitSHA, "empty commit should become null")
	assert.Equal(t, int32(1), rows[1].Position)
	assert.Equal(t, "/about", rows[1].Route)
}

func TestWriteRouteSizesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "route_sizes.parquet")
	data := ConvertRouteSizeRecords(sampleRecords())

	require.NoError(t, WriteRouteSizesParquet(data, outputPath))

	got := readAll[RouteSizeRow](t, outputPath)
	require.Len(t, got, len(data))
	for i := range data {
		assert.Equal(t, data[i].SnapshotID, got[i].SnapshotID)
		assert.Equal(t, data[i].Branch, got[i].Branch)
		assert.Equal(t, data[i].Route, got[i].Route)
		assert.Equal(t, data[i].RawBytes, got[i].RawBytes)
		assert.Equal(t, data[i].GzipBytes, got[i].GzipBytes)
		assert.WithinDuration(t, data[i].CreatedAt, got[i].CreatedAt, time.Millisecond)
		if data[i].CommitSHA == nil {
			assert.Nil(t, got[i].CommitSHA)
		} else {
			require.NotNil(t, got[i].CommitSHA)
			assert.Equal(t, *data[i].CommitSHA, *got[i].CommitSHA)
		}
	}
}

func TestWriteComparisonsParquet(t *testing.T) {
	current := schema.RouteSize{Raw: 4000, Gzip: 2048}
	baseline := schema.RouteSize{Raw: 3000, Gzip: 1024}
	comparisons := []schema.RouteComparison{
		{
			Route:    "/about",
			Current:  &current,
			Baseline: &baseline,
			Diff:     schema.DiffResult{Kind: schema.IncreaseKind, Delta: 1024, Percent: 100, HasPercent: true, Severity: schema.CriticalSeverity},
		},
		{
			Route:    "/old",
			Baseline: &baseline,
			Diff:     schema.DiffResult{Kind: schema.RemovedKind, Delta: 1024},
		},
	}

	outputPath := filepath.Join(t.TempDir(), "compare.parquet")
	require.NoError(t, WriteComparisonsParquet(ConvertComparisons(comparisons), outputPath))

	got := readAll[RouteComparisonRow](t, outputPath)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].Percent)
	assert.InDelta(t, 100.0, *got[0].Percent, 1e-9)
	require.NotNil(t, got[0].Severity)
	assert.Equal(t, "critical", *got[0].Severity)
	require.NotNil(t, got[0].CurrentGzip)
	assert.Equal(t, int64(2048), *got[0].CurrentGzip)

	assert.Equal(t, "removed", got[1].Kind)
	assert.Nil(t, got[1].CurrentRaw)
	assert.Nil(t, got[1].Percent)
	assert.Nil(t, got[1].Severity)
}

func TestWriteEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRouteSizesParquet(nil, outputPath))
	assert.Empty(t, readAll[RouteSizeRow](t, outputPath))
}

func TestWriteInvalidPath(t *testing.T) {
	err := WriteRouteSizesParquet(nil, filepath.Join(t.TempDir(), "missing", "dir", "out.parquet"))
	assert.Error(t, err)
}

func TestWriteToBuffer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ConvertRouteSizeRecords(sampleRecords())))
	assert.Equal(t, "PAR1", buf.String()[:4])
}
