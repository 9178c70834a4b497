package schema

import "time"

// StoreStatus represents the status of the snapshot store.
type StoreStatus struct {
	Backend         string           `json:"backend"`
	Connected       bool             `json:"connected"`
	TotalSnapshots  int              `json:"total_snapshots"`
	LastSnapshotID  int64            `json:"last_snapshot_id"`
	LastSnapshot    time.Time        `json:"last_snapshot_time"`
	OldestSnapshot  time.Time        `json:"oldest_snapshot_time"`
	TotalRouteSizes int              `json:"total_route_sizes"`
	TableSizes      map[string]int64 `json:"table_sizes"`
}

// Snapshot is one recorded set of route sizes for a branch.
type Snapshot struct {
	ID        int64       `json:"id"`
	Branch    string      `json:"branch"`
	CommitSHA string      `json:"commit_sha,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	Routes    *RouteSizes `json:"routes"`
}

// SnapshotSummary is a snapshot without its routes, as listed in history.
type SnapshotSummary struct {
	ID         int64     `json:"id"`
	Branch     string    `json:"branch"`
	CommitSHA  string    `json:"commit_sha,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	TotalRaw   int64     `json:"total_raw"`
	TotalGzip  int64     `json:"total_gzip"`
	RouteCount int       `json:"route_count"`
}

// RouteSizeRecord represents a row from the bundlesize_route_sizes table joined with its snapshot.
type RouteSizeRecord struct {
	SnapshotID int64
	Branch     string
	CommitSHA  string
	CreatedAt  time.Time
	Route      string
	Position   int32
	RawBytes   int64
	GzipBytes  int64
}
