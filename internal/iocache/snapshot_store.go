package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver
)

// Table names for snapshot storage.
const (
	snapshotsTable  = "bundlesize_snapshots"
	routeSizesTable = "bundlesize_route_sizes"
)

// SnapshotStoreImpl implements the SnapshotStore interface.
type SnapshotStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// NewSnapshotStore creates a new SnapshotStore with the specified backend.
func NewSnapshotStore(backend schema.DatabaseBackend, connStr string) (*SnapshotStoreImpl, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &SnapshotStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createSnapshotTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snapshot tables: %w", err)
	}

	log.Debug().Str("backend", string(backend)).Msg("snapshot store ready")
	return &SnapshotStoreImpl{db: db, backend: backend, driverName: driverName}, nil
}

// openDatabase opens a database handle for the backend without connecting.
func openDatabase(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, "sqlite", nil

	case schema.MySQLBackend:
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname?parseTime=true", err)
		}
		return db, "mysql", nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, "pgx", nil

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// createSnapshotTables creates the snapshot tables if they are missing.
func createSnapshotTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{snapshotsTable, getCreateSnapshotsQuery(backend)},
		{routeSizesTable, getCreateRouteSizesQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateSnapshotsQuery returns the CREATE TABLE query for bundlesize_snapshots.
func getCreateSnapshotsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(snapshotsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				branch VARCHAR(255) NOT NULL,
				commit_sha VARCHAR(64) NOT NULL DEFAULT '',
				created_at DATETIME(6) NOT NULL,
				total_raw BIGINT NOT NULL,
				total_gzip BIGINT NOT NULL,
				route_count INT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGSERIAL PRIMARY KEY,
				branch TEXT NOT NULL,
				commit_sha TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL,
				total_raw BIGINT NOT NULL,
				total_gzip BIGINT NOT NULL,
				route_count INT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id INTEGER PRIMARY KEY AUTOINCREMENT,
				branch TEXT NOT NULL,
				commit_sha TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				total_raw INTEGER NOT NULL,
				total_gzip INTEGER NOT NULL,
				route_count INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// getCreateRouteSizesQuery returns the CREATE TABLE query for bundlesize_route_sizes.
func getCreateRouteSizesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(routeSizesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT NOT NULL,
				route VARCHAR(512) NOT NULL,
				position INT NOT NULL,
				raw_bytes BIGINT NOT NULL,
				gzip_bytes BIGINT NOT NULL,
				PRIMARY KEY (snapshot_id, route)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT NOT NULL,
				route TEXT NOT NULL,
				position INT NOT NULL,
				raw_bytes BIGINT NOT NULL,
				gzip_bytes BIGINT NOT NULL,
				PRIMARY KEY (snapshot_id, route)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id INTEGER NOT NULL,
				route TEXT NOT NULL,
				position INTEGER NOT NULL,
				raw_bytes INTEGER NOT NULL,
				gzip_bytes INTEGER NOT NULL,
				PRIMARY KEY (snapshot_id, route)
			);
		`, quotedTableName)
	}
}

// SaveSnapshot stores a snapshot and its routes in one transaction.
// A zero CreatedAt is replaced with the current time.
func (s *SnapshotStoreImpl) SaveSnapshot(ctx context.Context, snapshot schema.Snapshot) (int64, error) {
	// Skip for NoneBackend
	if s.backend == schema.NoneBackend || s.db == nil {
		return 0, nil
	}
	if snapshot.Branch == "" {
		return 0, errors.New("snapshot branch cannot be empty")
	}
	createdAt := snapshot.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	totals := snapshot.Routes.Totals()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snapshotsName := quoteTableName(snapshotsTable, s.backend)
	var snapshotID int64
	switch s.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (branch, commit_sha, created_at, total_raw, total_gzip, route_count)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING snapshot_id`, snapshotsName)
		err = tx.QueryRowContext(ctx, query, snapshot.Branch, snapshot.CommitSHA, createdAt.UTC(),
			totals.Raw, totals.Gzip, snapshot.Routes.Len()).Scan(&snapshotID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (branch, commit_sha, created_at, total_raw, total_gzip, route_count)
			VALUES (?, ?, ?, ?, ?, ?)`, snapshotsName)
		var result sql.Result
		result, err = tx.ExecContext(ctx, query, snapshot.Branch, snapshot.CommitSHA, formatTime(createdAt, s.backend),
			totals.Raw, totals.Gzip, snapshot.Routes.Len())
		if err == nil {
			snapshotID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	ph := s.placeholders(5)
	routeQuery := fmt.Sprintf(`INSERT INTO %s (snapshot_id, route, position, raw_bytes, gzip_bytes) VALUES (%s, %s, %s, %s, %s)`,
		quoteTableName(routeSizesTable, s.backend), ph[0], ph[1], ph[2], ph[3], ph[4])
	stmt, err := tx.PrepareContext(ctx, routeQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare route insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for position, route := range snapshot.Routes.Routes() {
		size, _ := snapshot.Routes.Get(route)
		if _, err := stmt.ExecContext(ctx, snapshotID, route, position, size.Raw, size.Gzip); err != nil {
			return 0, fmt.Errorf("failed to insert route %s: %w", route, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	log.Debug().Int64("snapshot_id", snapshotID).Str("branch", snapshot.Branch).Int("routes", snapshot.Routes.Len()).Msg("snapshot saved")
	return snapshotID, nil
}

// LatestSnapshot returns the newest snapshot for a branch with routes in their saved order.
func (s *SnapshotStoreImpl) LatestSnapshot(ctx context.Context, branch string) (schema.Snapshot, error) {
	if s.backend == schema.NoneBackend || s.db == nil {
		return schema.Snapshot{}, contract.ErrNoBaseline
	}

	ph := s.placeholders(1)
	query := fmt.Sprintf(`SELECT snapshot_id, branch, commit_sha, created_at FROM %s WHERE branch = %s ORDER BY snapshot_id DESC LIMIT 1`,
		quoteTableName(snapshotsTable, s.backend), ph[0])

	snapshot := schema.Snapshot{}
	var createdAt any = &snapshot.CreatedAt
	var createdAtStr string
	if s.backend == schema.SQLiteBackend {
		createdAt = &createdAtStr
	}
	err := s.db.QueryRowContext(ctx, query, branch).Scan(&snapshot.ID, &snapshot.Branch, &snapshot.CommitSHA, createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Snapshot{}, contract.ErrNoBaseline
	}
	if err != nil {
		return schema.Snapshot{}, fmt.Errorf("failed to query latest snapshot for %s: %w", branch, err)
	}
	if s.backend == schema.SQLiteBackend {
		if snapshot.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
			return schema.Snapshot{}, fmt.Errorf("failed to parse created_at: %w", err)
		}
	}

	routes, err := s.loadRoutes(ctx, snapshot.ID)
	if err != nil {
		return schema.Snapshot{}, err
	}
	snapshot.Routes = routes
	return snapshot, nil
}

// loadRoutes reads the routes of one snapshot in saved order.
func (s *SnapshotStoreImpl) loadRoutes(ctx context.Context, snapshotID int64) (*schema.RouteSizes, error) {
	ph := s.placeholders(1)
	query := fmt.Sprintf(`SELECT route, raw_bytes, gzip_bytes FROM %s WHERE snapshot_id = %s ORDER BY position`,
		quoteTableName(routeSizesTable, s.backend), ph[0])

	rows, err := s.db.QueryContext(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes for snapshot %d: %w", snapshotID, err)
	}
	defer func() { _ = rows.Close() }()

	routes := schema.NewRouteSizes()
	for rows.Next() {
		var route string
		var size schema.RouteSize
		if err := rows.Scan(&route, &size.Raw, &size.Gzip); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes.Set(route, size)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating routes: %w", err)
	}
	return routes, nil
}

// ListSnapshots returns up to limit snapshot summaries, newest first.
func (s *SnapshotStoreImpl) ListSnapshots(ctx context.Context, branch string, limit int) ([]schema.SnapshotSummary, error) {
	if s.backend == schema.NoneBackend || s.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(snapshotsTable, s.backend)
	columns := "snapshot_id, branch, commit_sha, created_at, total_raw, total_gzip, route_count"
	var query string
	var args []any
	if branch == "" {
		ph := s.placeholders(1)
		query = fmt.Sprintf(`SELECT %s FROM %s ORDER BY snapshot_id DESC LIMIT %s`, columns, quotedTableName, ph[0])
		args = []any{limit}
	} else {
		ph := s.placeholders(2)
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE branch = %s ORDER BY snapshot_id DESC LIMIT %s`, columns, quotedTableName, ph[0], ph[1])
		args = []any{branch, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotSummary
	for rows.Next() {
		var summary schema.SnapshotSummary
		var createdAt any = &summary.CreatedAt
		var createdAtStr string
		if s.backend == schema.SQLiteBackend {
			createdAt = &createdAtStr
		}
		if err := rows.Scan(&summary.ID, &summary.Branch, &summary.CommitSHA, createdAt,
			&summary.TotalRaw, &summary.TotalGzip, &summary.RouteCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if s.backend == schema.SQLiteBackend {
			if summary.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
				return nil, fmt.Errorf("failed to parse created_at: %w", err)
			}
		}
		results = append(results, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return results, nil
}

// GetAllRouteSizeRecords returns every stored route size joined with its snapshot.
func (s *SnapshotStoreImpl) GetAllRouteSizeRecords(ctx context.Context) ([]schema.RouteSizeRecord, error) {
	if s.backend == schema.NoneBackend || s.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT s.snapshot_id, s.branch, s.commit_sha, s.created_at, r.route, r.position, r.raw_bytes, r.gzip_bytes
		FROM %s r JOIN %s s ON s.snapshot_id = r.snapshot_id
		ORDER BY s.snapshot_id, r.position`,
		quoteTableName(routeSizesTable, s.backend), quoteTableName(snapshotsTable, s.backend))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query route sizes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RouteSizeRecord
	for rows.Next() {
		var record schema.RouteSizeRecord
		var createdAt any = &record.CreatedAt
		var createdAtStr string
		if s.backend == schema.SQLiteBackend {
			createdAt = &createdAtStr
		}
		if err := rows.Scan(&record.SnapshotID, &record.Branch, &record.CommitSHA, createdAt,
			&record.Route, &record.Position, &record.RawBytes, &record.GzipBytes); err != nil {
			return nil, fmt.Errorf("failed to scan route size: %w", err)
		}
		if s.backend == schema.SQLiteBackend {
			if record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
				return nil, fmt.Errorf("failed to parse created_at: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating route sizes: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (s *SnapshotStoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStatus returns status information about the snapshot store.
func (s *SnapshotStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.backend == schema.NoneBackend || s.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(snapshotsTable, s.backend)
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)).Scan(&status.TotalSnapshots); err != nil {
		return status, fmt.Errorf("failed to get total snapshots: %w", err)
	}

	if status.TotalSnapshots > 0 {
		queries := []struct {
			order string
			id    *int64
			at    *time.Time
		}{
			{"DESC", &status.LastSnapshotID, &status.LastSnapshot},
			{"ASC", nil, &status.OldestSnapshot},
		}
		for _, q := range queries {
			var id int64
			var createdAt any = q.at
			var createdAtStr string
			if s.backend == schema.SQLiteBackend {
				createdAt = &createdAtStr
			}
			query := fmt.Sprintf("SELECT snapshot_id, created_at FROM %s ORDER BY snapshot_id %s LIMIT 1", quotedTableName, q.order)
			if err := s.db.QueryRow(query).Scan(&id, createdAt); err != nil {
				return status, fmt.Errorf("failed to get snapshot times: %w", err)
			}
			if s.backend == schema.SQLiteBackend {
				t, err := time.Parse(time.RFC3339Nano, createdAtStr)
				if err != nil {
					return status, fmt.Errorf("failed to parse created_at: %w", err)
				}
				*q.at = t
			}
			if q.id != nil {
				*q.id = id
			}
		}
	}

	for _, table := range []string{snapshotsTable, routeSizesTable} {
		var count int64
		if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, s.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRouteSizes = int(status.TableSizes[routeSizesTable])

	return status, nil
}

// placeholders returns n positional parameters in the backend's syntax.
func (s *SnapshotStoreImpl) placeholders(n int) []string {
	ph := make([]string, n)
	for i := range ph {
		if s.backend == schema.PostgreSQLBackend {
			ph[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ph[i] = "?"
		}
	}
	return ph
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t.UTC()
	}
}

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName ensures a table name is safe to interpolate into SQL.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}
