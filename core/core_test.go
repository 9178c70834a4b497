package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// writeBuild lays out a minimal build directory with a stats manifest and its assets.
// Each route maps to the contents of its single page chunk.
func writeBuild(t *testing.T, pages map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	var assets []map[string]any
	groups := map[string]any{}
	for route, contents := range pages {
		name := "static/chunks/app" + strings.TrimSuffix(route, "/") + "/page.js"
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

		assets = append(assets, map[string]any{"name": name, "size": len(contents)})
		groups["app"+strings.TrimSuffix(route, "/")+"/page"] = map[string]any{"assets": []string{name}}
	}

	data, err := json.Marshal(map[string]any{"assets": assets, "namedChunkGroups": groups})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stats.json"), data, 0o644))
	return dir
}

func testConfig(t *testing.T, statsFile string, output schema.OutputMode) *contract.Config {
	t.Helper()
	return &contract.Config{
		StatsFile:  statsFile,
		BaseBranch: "main",
		Output:     output,
		OutputFile: filepath.Join(t.TempDir(), "out"),
		Workers:    2,
		GzipLevel:  contract.DefaultGzipLevel,
		Artifact:   contract.ArtifactConfig{Prefix: contract.DefaultArtifactPrefix},
	}
}

// captureWarnings replaces logWarn for the duration of the test.
func captureWarnings(t *testing.T) *[]string {
	t.Helper()
	var warnings []string
	original := logWarn
	logWarn = func(msg string, err error) {
		warnings = append(warnings, msg+": "+err.Error())
	}
	t.Cleanup(func() { logWarn = original })
	return &warnings
}

func readOutput(t *testing.T, cfg *contract.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(data)
}

func storeManagerWith(store contract.SnapshotStore) *contract.MockStoreManager {
	mgr := new(contract.MockStoreManager)
	mgr.On("GetSnapshotStore").Return(store)
	return mgr
}

func TestExtractRoutes(t *testing.T) {
	dir := writeBuild(t, map[string]string{
		"/":      strings.Repeat("home ", 200),
		"/about": strings.Repeat("about us ", 50),
	})

	routes, err := ExtractRoutes(context.Background(), filepath.Join(dir, "stats.json"), ExtractOptions{Workers: 2})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/", "/about"}, routes.Routes())

	home, _ := routes.Get("/")
	assert.Equal(t, int64(1000), home.Raw)
	assert.Positive(t, home.Gzip)
	assert.Less(t, home.Gzip, home.Raw)
}

func TestExtractRoutes_MissingAssetsHaveZeroGzip(t *testing.T) {
	dir := writeBuild(t, map[string]string{"/": "console.log(1)"})
	routes, err := ExtractRoutes(context.Background(), filepath.Join(dir, "stats.json"), ExtractOptions{BuildDir: t.TempDir()})
	require.NoError(t, err)
	home, ok := routes.Get("/")
	require.True(t, ok)
	assert.Zero(t, home.Gzip)
	assert.Positive(t, home.Raw)
}

func TestExtractRoutes_Errors(t *testing.T) {
	_, err := ExtractRoutes(context.Background(), filepath.Join(t.TempDir(), "missing.json"), ExtractOptions{})
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = ExtractRoutes(context.Background(), bad, ExtractOptions{})
	assert.ErrorContains(t, err, "failed to parse stats manifest")

	dir := writeBuild(t, map[string]string{"/": "x"})
	_, err = ExtractRoutes(context.Background(), filepath.Join(dir, "stats.json"), ExtractOptions{GzipLevel: 42})
	assert.ErrorContains(t, err, "gzip")
}

func TestSaveAndLoadRouteSizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	routes := routeSizes("/zeta", 10, "/", 20)
	require.NoError(t, SaveRouteSizes(path, routes))

	loaded, err := LoadRouteSizes(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/zeta", "/"}, loaded.Routes())

	_, err = LoadRouteSizes(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestResolveBaseline_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, SaveRouteSizes(path, routeSizes("/", 10)))

	artifacts := new(contract.MockArtifactStore)
	cfg := &contract.Config{BaseBranch: "main", BaselineFile: path}
	routes, source, err := ResolveBaseline(context.Background(), cfg, nil, artifacts)
	require.NoError(t, err)
	assert.Equal(t, BaselineFromFile, source)
	assert.Equal(t, 1, routes.Len())
	artifacts.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)

	cfg.BaselineFile = filepath.Join(t.TempDir(), "missing.json")
	_, _, err = ResolveBaseline(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, contract.ErrNoBaseline)
}

func TestResolveBaseline_Artifact(t *testing.T) {
	artifacts := new(contract.MockArtifactStore)
	artifacts.On("Download", mock.Anything, "bundlesize/main.json").Return(routeSizes("/", 10), nil)

	cfg := &contract.Config{BaseBranch: "main", Artifact: contract.ArtifactConfig{Prefix: "bundlesize"}}
	routes, source, err := ResolveBaseline(context.Background(), cfg, nil, artifacts)
	require.NoError(t, err)
	assert.Equal(t, BaselineFromArtifact, source)
	assert.Equal(t, []string{"/"}, routes.Routes())
	artifacts.AssertExpectations(t)
}

func TestResolveBaseline_FallsThroughToStore(t *testing.T) {
	warnings := captureWarnings(t)

	artifacts := new(contract.MockArtifactStore)
	artifacts.On("Download", mock.Anything, "bundlesize/main.json").Return(nil, errors.New("connection refused"))

	store := new(contract.MockSnapshotStore)
	store.On("LatestSnapshot", mock.Anything, "main").Return(schema.Snapshot{ID: 7, Branch: "main", Routes: routeSizes("/about", 20)}, nil)

	cfg := &contract.Config{BaseBranch: "main", Artifact: contract.ArtifactConfig{Prefix: "bundlesize"}}
	routes, source, err := ResolveBaseline(context.Background(), cfg, storeManagerWith(store), artifacts)
	require.NoError(t, err)
	assert.Equal(t, BaselineFromStore, source)
	assert.Equal(t, []string{"/about"}, routes.Routes())
	require.Len(t, *warnings, 1)
	assert.Contains(t, (*warnings)[0], "connection refused")
}

func TestResolveBaseline_NoneFound(t *testing.T) {
	warnings := captureWarnings(t)

	artifacts := new(contract.MockArtifactStore)
	artifacts.On("Download", mock.Anything, mock.Anything).Return(nil, contract.ErrNoBaseline)
	store := new(contract.MockSnapshotStore)
	store.On("LatestSnapshot", mock.Anything, "develop").Return(schema.Snapshot{}, contract.ErrNoBaseline)

	cfg := &contract.Config{BaseBranch: "develop"}
	_, _, err := ResolveBaseline(context.Background(), cfg, storeManagerWith(store), artifacts)
	assert.ErrorIs(t, err, contract.ErrNoBaseline)
	assert.Empty(t, *warnings)

	_, _, err = ResolveBaseline(context.Background(), cfg, storeManagerWith(nil), nil)
	assert.ErrorIs(t, err, contract.ErrNoBaseline)
}

func TestExecuteCollect(t *testing.T) {
	dir := writeBuild(t, map[string]string{"/": "home page", "/about": "about page"})
	cfg := testConfig(t, filepath.Join(dir, "stats.json"), schema.JSONOut)
	cfg.Branch = "main"
	cfg.CommitSHA = "abc123"
	cfg.SnapshotFile = filepath.Join(t.TempDir(), "snapshot.json")

	store := new(contract.MockSnapshotStore)
	store.On("SaveSnapshot", mock.Anything, mock.MatchedBy(func(s schema.Snapshot) bool {
		return s.Branch == "main" && s.CommitSHA == "abc123" && s.Routes.Len() == 2 && !s.CreatedAt.IsZero()
	})).Return(int64(1), nil)
	artifacts := new(contract.MockArtifactStore)
	artifacts.On("Upload", mock.Anything, "bundlesize/main.json", mock.Anything).Return(nil)
	pusher := new(contract.MockMetricsPusher)
	pusher.On("Push", mock.Anything, "main", mock.Anything).Return(nil)

	err := ExecuteCollect(context.Background(), cfg, storeManagerWith(store), Integrations{Artifacts: artifacts, Metrics: pusher})
	require.NoError(t, err)

	store.AssertExpectations(t)
	artifacts.AssertExpectations(t)
	pusher.AssertExpectations(t)

	snapshot, err := LoadRouteSizes(cfg.SnapshotFile)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Len())

	var out map[string]schema.RouteSize
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &out))
	assert.Equal(t, int64(len("home page")), out["/"].Raw)
}

func TestExecuteCollect_MetricsFailureWarns(t *testing.T) {
	warnings := captureWarnings(t)
	dir := writeBuild(t, map[string]string{"/": "home"})
	cfg := testConfig(t, filepath.Join(dir, "stats.json"), schema.JSONOut)
	cfg.Branch = "main"

	pusher := new(contract.MockMetricsPusher)
	pusher.On("Push", mock.Anything, "main", mock.Anything).Return(errors.New("gateway down"))

	require.NoError(t, ExecuteCollect(context.Background(), cfg, nil, Integrations{Metrics: pusher}))
	require.Len(t, *warnings, 1)
	assert.Contains(t, (*warnings)[0], "gateway down")
}

func TestExecuteCollect_StoreFailure(t *testing.T) {
	dir := writeBuild(t, map[string]string{"/": "home"})
	cfg := testConfig(t, filepath.Join(dir, "stats.json"), schema.JSONOut)
	cfg.Branch = "main"

	store := new(contract.MockSnapshotStore)
	store.On("SaveSnapshot", mock.Anything, mock.Anything).Return(int64(0), errors.New("disk full"))

	err := ExecuteCollect(context.Background(), cfg, storeManagerWith(store), Integrations{})
	assert.ErrorContains(t, err, "disk full")
}

func TestExecuteCollect_WithoutBranch(t *testing.T) {
	warnings := captureWarnings(t)
	dir := writeBuild(t, map[string]string{"/": "home"})
	cfg := testConfig(t, filepath.Join(dir, "stats.json"), schema.JSONOut)

	store := new(contract.MockSnapshotStore)
	require.NoError(t, ExecuteCollect(context.Background(), cfg, storeManagerWith(store), Integrations{}))
	store.AssertNotCalled(t, "SaveSnapshot", mock.Anything, mock.Anything)
	require.Len(t, *warnings, 1)
	assert.Contains(t, (*warnings)[0], "--branch")

	// Nothing configured to record into, so there is nothing to warn about.
	*warnings = nil
	require.NoError(t, ExecuteCollect(context.Background(), cfg, nil, Integrations{}))
	assert.Empty(t, *warnings)
}

func TestExecuteReport(t *testing.T) {
	dir := writeBuild(t, map[string]string{"/": "home page", "/about": strings.Repeat("about ", 400)})
	cfg := testConfig(t, filepath.Join(dir, "stats.json"), schema.MarkdownOut)
	cfg.Comment = contract.CommentConfig{Enabled: true, PullRequest: 12}

	baseline := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, SaveRouteSizes(baseline, routeSizes("/", 1, "/gone", 100)))
	cfg.BaselineFile = baseline

	poster := new(contract.MockCommentPoster)
	poster.On("Upsert", mock.Anything, 12, mock.MatchedBy(func(body string) bool {
		return strings.HasPrefix(body, ReportHeader)
	})).Return(nil)

	require.NoError(t, ExecuteReport(context.Background(), cfg, nil, Integrations{Comments: poster}))
	poster.AssertExpectations(t)

	report := readOutput(t, cfg)
	assert.Contains(t, report, "| Route | Size (gzipped) | Diff (vs main) |")
	assert.Contains(t, report, "| `/about` |")
	assert.Contains(t, report, NewLabel)
	assert.Contains(t, report, "| `/gone` | — | 🗑️ Removed |")
}

func TestExecuteReport_NoBaseline(t *testing.T) {
	warnings := captureWarnings(t)
	dir := writeBuild(t, map[string]string{"/": "home"})
	cfg := testConfig(t, filepath.Join(dir, "stats.json"), schema.MarkdownOut)

	require.NoError(t, ExecuteReport(context.Background(), cfg, nil, Integrations{}))
	assert.Contains(t, readOutput(t, cfg), "| `/` |")
	require.Len(t, *warnings, 1)
	assert.Contains(t, (*warnings)[0], "comparing without baseline")
}

func TestExecuteReport_SuppressedWarnings(t *testing.T) {
	warnings := captureWarnings(t)
	dir := writeBuild(t, map[string]string{"/": "home"})
	cfg := testConfig(t, filepath.Join(dir, "stats.json"), schema.MarkdownOut)

	require.NoError(t, ExecuteReport(WithSuppressWarnings(context.Background()), cfg, nil, Integrations{}))
	assert.Empty(t, *warnings)
}

func TestExecuteReport_CommentFailure(t *testing.T) {
	captureWarnings(t)
	dir := writeBuild(t, map[string]string{"/": "home"})
	cfg := testConfig(t, filepath.Join(dir, "stats.json"), schema.MarkdownOut)
	cfg.Comment = contract.CommentConfig{Enabled: true, PullRequest: 3}

	poster := new(contract.MockCommentPoster)
	poster.On("Upsert", mock.Anything, 3, mock.Anything).Return(errors.New("forbidden"))
	err := ExecuteReport(context.Background(), cfg, nil, Integrations{Comments: poster})
	assert.ErrorContains(t, err, "forbidden")
}

func TestExecuteCompare(t *testing.T) {
	base := writeBuild(t, map[string]string{"/": "home"})
	head := writeBuild(t, map[string]string{"/": "home", "/new": "new page"})

	cfg := testConfig(t, filepath.Join(head, "stats.json"), schema.JSONOut)
	cfg.BaseStatsFile = filepath.Join(base, "stats.json")
	require.NoError(t, ExecuteCompare(context.Background(), cfg, nil, Integrations{}))

	var result schema.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &result))
	assert.Equal(t, 2, result.Summary.TotalRoutes)
	assert.Equal(t, 1, result.Summary.NewRoutes)
	assert.Equal(t, 1, result.Summary.ChangedRoutes)

	cfg.BaseStatsFile = filepath.Join(t.TempDir(), "missing.json")
	assert.ErrorContains(t, ExecuteCompare(context.Background(), cfg, nil, Integrations{}), "baseline")
}

func TestExecuteRoutes(t *testing.T) {
	dir := writeBuild(t, map[string]string{"/blog": "blog page"})
	cfg := testConfig(t, filepath.Join(dir, "stats.json"), schema.CSVOut)
	require.NoError(t, ExecuteRoutes(context.Background(), cfg, nil, Integrations{}))

	out := readOutput(t, cfg)
	assert.True(t, strings.HasPrefix(out, "route,raw_bytes,gzip_bytes\n"))
	assert.Contains(t, out, "/blog,9,")
}

func TestExecuteComment(t *testing.T) {
	reportFile := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, os.WriteFile(reportFile, []byte("## report"), 0o644))
	cfg := &contract.Config{Comment: contract.CommentConfig{PullRequest: 5}}

	poster := new(contract.MockCommentPoster)
	poster.On("Upsert", mock.Anything, 5, "## report").Return(nil)
	require.NoError(t, ExecuteComment(context.Background(), cfg, poster, reportFile))
	poster.AssertExpectations(t)

	assert.Error(t, ExecuteComment(context.Background(), cfg, poster, filepath.Join(t.TempDir(), "missing.md")))
}

func TestExecuteHistory(t *testing.T) {
	cfg := &contract.Config{Branch: "main", HistoryLimit: 5, Output: schema.JSONOut, OutputFile: filepath.Join(t.TempDir(), "out")}

	store := new(contract.MockSnapshotStore)
	store.On("ListSnapshots", mock.Anything, "main", 5).Return([]schema.SnapshotSummary{{ID: 2, Branch: "main", RouteCount: 3}}, nil)
	require.NoError(t, ExecuteHistory(context.Background(), cfg, storeManagerWith(store)))
	assert.Contains(t, readOutput(t, cfg), `"route_count": 3`)

	assert.Error(t, ExecuteHistory(context.Background(), cfg, nil))
	assert.Error(t, ExecuteHistory(context.Background(), cfg, storeManagerWith(nil)))
}

func TestWarnRespectsContext(t *testing.T) {
	warnings := captureWarnings(t)
	warn(context.Background(), "shown", errors.New("x"))
	warn(WithSuppressWarnings(context.Background()), "hidden", errors.New("y"))
	assert.Equal(t, []string{"shown: x"}, *warnings)
	assert.False(t, shouldSuppressWarnings(context.WithValue(context.Background(), suppressWarningsKey, "yes")))
}
