// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"

	"github.com/huangsam/bundlesize/schema"
)

// ErrNoBaseline is returned when no baseline snapshot can be found for a branch.
var ErrNoBaseline = errors.New("no baseline snapshot available")

// GitClient defines the Git lookups used to label snapshots.
// This allows commands to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its output.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetCurrentBranch returns the checked-out branch name, or "HEAD" when detached.
	GetCurrentBranch(ctx context.Context, repoPath string) (string, error)
}

// StoreManager defines the interface for managing the snapshot store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetSnapshotStore() SnapshotStore
}

// SnapshotStore records route-size snapshots per branch.
type SnapshotStore interface {
	// SaveSnapshot persists a snapshot and returns its ID.
	SaveSnapshot(ctx context.Context, snapshot schema.Snapshot) (int64, error)

	// LatestSnapshot returns the newest snapshot for a branch, or ErrNoBaseline.
	LatestSnapshot(ctx context.Context, branch string) (schema.Snapshot, error)

	// ListSnapshots returns up to limit snapshot summaries, newest first.
	// An empty branch lists every branch.
	ListSnapshots(ctx context.Context, branch string, limit int) ([]schema.SnapshotSummary, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// ArtifactStore uploads and downloads snapshot artifacts by key.
type ArtifactStore interface {
	// Upload writes routes under key, replacing any previous artifact.
	Upload(ctx context.Context, key string, routes *schema.RouteSizes) error

	// Download reads routes from key. A missing artifact yields ErrNoBaseline.
	Download(ctx context.Context, key string) (*schema.RouteSizes, error)
}

// CommentPoster publishes a report on a pull request.
type CommentPoster interface {
	// Upsert creates the report comment or updates the one posted earlier.
	Upsert(ctx context.Context, pullRequest int, body string) error
}

// MetricsPusher publishes route sizes to a metrics backend.
type MetricsPusher interface {
	Push(ctx context.Context, branch string, routes *schema.RouteSizes) error
}
