// Package core has core logic for route extraction, size diffing and reporting.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/internal/outwriter"
	"github.com/huangsam/bundlesize/schema"
	"github.com/rs/zerolog/log"
)

// logWarn prints user-facing warnings. Tests replace it to capture them.
var logWarn = contract.LogWarn

// Integrations holds the optional external collaborators of a run.
// A nil field disables that integration.
type Integrations struct {
	Artifacts contract.ArtifactStore
	Comments  contract.CommentPoster
	Metrics   contract.MetricsPusher
}

// ExecutorFunc defines the function signature for executing the report-producing commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, integ Integrations) error

func extractOptions(cfg *contract.Config, buildDir string) ExtractOptions {
	return ExtractOptions{BuildDir: buildDir, GzipLevel: cfg.GzipLevel, Workers: cfg.Workers}
}

// ExecuteCollect extracts the current build's routes and records them everywhere the
// configuration asks for: a snapshot file, the snapshot store, the artifact store and
// the Pushgateway. It then prints the routes.
func ExecuteCollect(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, integ Integrations) error {
	start := time.Now()
	routes, err := ExtractRoutes(ctx, cfg.StatsFile, extractOptions(cfg, cfg.BuildDir))
	if err != nil {
		return err
	}
	if routes.Len() == 0 {
		warn(ctx, "no routes found", fmt.Errorf("%s has no route chunk groups with JavaScript assets", cfg.StatsFile))
	}

	if cfg.SnapshotFile != "" {
		if err := SaveRouteSizes(cfg.SnapshotFile, routes); err != nil {
			return err
		}
	}

	if err := recordSnapshot(ctx, cfg, mgr, integ, routes); err != nil {
		return err
	}

	return outwriter.NewOutWriter().WriteRoutes(routes, cfg, time.Since(start))
}

// recordSnapshot saves, uploads and pushes routes for cfg.Branch.
func recordSnapshot(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, integ Integrations, routes *schema.RouteSizes) error {
	if cfg.Branch == "" {
		if (mgr != nil && mgr.GetSnapshotStore() != nil) || integ.Artifacts != nil || integ.Metrics != nil {
			warn(ctx, "snapshot not recorded", errors.New("branch is unknown, pass --branch"))
		}
		return nil
	}

	if mgr != nil {
		if store := mgr.GetSnapshotStore(); store != nil {
			id, err := store.SaveSnapshot(ctx, schema.Snapshot{
				Branch:    cfg.Branch,
				CommitSHA: cfg.CommitSHA,
				CreatedAt: time.Now(),
				Routes:    routes,
			})
			if err != nil {
				return fmt.Errorf("failed to save snapshot: %w", err)
			}
			log.Debug().Int64("snapshot_id", id).Str("branch", cfg.Branch).Msg("snapshot stored")
		}
	}

	if integ.Artifacts != nil {
		key := contract.ArtifactKey(cfg.Artifact.Prefix, cfg.Branch)
		if err := integ.Artifacts.Upload(ctx, key, routes); err != nil {
			return fmt.Errorf("failed to upload snapshot artifact: %w", err)
		}
	}

	if integ.Metrics != nil {
		if err := integ.Metrics.Push(ctx, cfg.Branch, routes); err != nil {
			warn(ctx, "metrics push failed", err)
		}
	}
	return nil
}

// BuildReport compares current against baseline and renders the markdown report.
func BuildReport(cfg *contract.Config, current, baseline *schema.RouteSizes) (schema.ComparisonResult, string) {
	renderer := ReportRenderer{BaseBranch: cfg.BaseBranch, Thresholds: cfg.Thresholds}
	return renderer.Compare(current, baseline), renderer.Render(current, baseline)
}

// ExecuteReport compares the current build with the baseline of cfg.BaseBranch,
// writes the report and optionally posts it on the pull request.
// Without any baseline every route is reported as new.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, integ Integrations) error {
	start := time.Now()
	current, err := ExtractRoutes(ctx, cfg.StatsFile, extractOptions(cfg, cfg.BuildDir))
	if err != nil {
		return err
	}

	baseline, source, err := ResolveBaseline(ctx, cfg, mgr, integ.Artifacts)
	switch {
	case errors.Is(err, contract.ErrNoBaseline):
		warn(ctx, "comparing without baseline", err)
		baseline = schema.NewRouteSizes()
	case err != nil:
		return err
	default:
		log.Debug().Str("source", source).Int("routes", baseline.Len()).Msg("baseline resolved")
	}

	result, markdown := BuildReport(cfg, current, baseline)
	if err := outwriter.NewOutWriter().WriteComparison(result, markdown, cfg, time.Since(start)); err != nil {
		return err
	}
	return postComment(ctx, cfg, integ, markdown)
}

// ExecuteCompare reports the difference between two stats manifests.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, _ contract.StoreManager, integ Integrations) error {
	start := time.Now()
	baseline, err := ExtractRoutes(ctx, cfg.BaseStatsFile, extractOptions(cfg, cfg.BaseBuildDir))
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	current, err := ExtractRoutes(ctx, cfg.StatsFile, extractOptions(cfg, cfg.BuildDir))
	if err != nil {
		return fmt.Errorf("current: %w", err)
	}

	result, markdown := BuildReport(cfg, current, baseline)
	if err := outwriter.NewOutWriter().WriteComparison(result, markdown, cfg, time.Since(start)); err != nil {
		return err
	}
	return postComment(ctx, cfg, integ, markdown)
}

// ExecuteRoutes prints the routes of one build without recording them.
func ExecuteRoutes(ctx context.Context, cfg *contract.Config, _ contract.StoreManager, _ Integrations) error {
	start := time.Now()
	routes, err := ExtractRoutes(ctx, cfg.StatsFile, extractOptions(cfg, cfg.BuildDir))
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRoutes(routes, cfg, time.Since(start))
}

// ExecuteComment posts an already rendered report file on the pull request.
func ExecuteComment(ctx context.Context, cfg *contract.Config, poster contract.CommentPoster, reportFile string) error {
	body, err := os.ReadFile(reportFile)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	if err := poster.Upsert(ctx, cfg.Comment.PullRequest, string(body)); err != nil {
		return fmt.Errorf("failed to post comment: %w", err)
	}
	return nil
}

// ExecuteHistory prints the newest stored snapshots, optionally for one branch.
func ExecuteHistory(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	if mgr == nil || mgr.GetSnapshotStore() == nil {
		return errors.New("snapshot store is not initialized")
	}
	history, err := mgr.GetSnapshotStore().ListSnapshots(ctx, cfg.Branch, cfg.HistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}
	return outwriter.NewOutWriter().WriteHistory(history, cfg)
}

func postComment(ctx context.Context, cfg *contract.Config, integ Integrations, markdown string) error {
	if !cfg.Comment.Enabled || integ.Comments == nil {
		return nil
	}
	if err := integ.Comments.Upsert(ctx, cfg.Comment.PullRequest, markdown); err != nil {
		return fmt.Errorf("failed to post comment: %w", err)
	}
	return nil
}
