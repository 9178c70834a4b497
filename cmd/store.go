package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/bundlesize/core"
	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/internal/iocache"
	"github.com/huangsam/bundlesize/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadStoreConfig reads and validates the store backend settings from Viper.
func loadStoreConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	contract.SetupLogger(os.Stderr, viper.GetBool("verbose"))

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup(_ *cobra.Command, _ []string) error {
	if err := loadStoreConfig(); err != nil {
		return err
	}
	if err := iocache.InitStore(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize snapshot store: %w", err)
	}
	return nil
}

// storeMigrateSetup loads the store settings without initializing the store,
// allowing migrations to run on a fresh database.
func storeMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := loadStoreConfig(); err != nil {
		return err
	}
	// For SQLite backend with empty connection string, use default path
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.StoreDBConnect == "" {
		cfg.StoreDBConnect = iocache.GetDBFilePath()
	}
	cfg.MigrateTarget = viper.GetInt("target-version")
	return nil
}

// storeCmd focused on snapshot store management.
//
// Note: Most store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup. This avoids manifest and comment validation for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the snapshot store holding baseline route sizes",
	Long: `Manage the snapshot store that collect writes to and report reads baselines from.

Every snapshot records the route sizes of one build together with its branch and commit.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics and connection info
  history - List recorded snapshots
  export  - Export every stored route size to Parquet
  clear   - Remove all snapshots
  migrate - Run database schema migrations

Examples:
  # Check store status
  bundlesize store status

  # Show the last 5 snapshots of main
  bundlesize store history --branch main --limit 5 --output text`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot store statistics and connection details",
	Long: `Show detailed information about the snapshot store.

Displays:
- Backend type and connection status
- Total number of snapshots and route sizes
- Last and oldest snapshot timestamps
- Database table sizes

Examples:
  # Check store status
  bundlesize store status`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetSnapshotStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iocache.PrintStoreStatus(os.Stdout, status)
	},
}

// storeHistoryCmd lists recorded snapshots.
var storeHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded snapshots, newest first",
	Long: `List the snapshots in the store with their totals, newest first.

Use --branch to only show one branch.

Examples:
  # Recent snapshots of every branch
  bundlesize store history --output text

  # JSON for scripting
  bundlesize store history --branch main --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistory(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to list snapshots", err)
		}
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded snapshots",
	Long: `Delete all snapshots from the configured backend.

WARNING: This action cannot be undone. Reports fall back to other baseline
sources until collect records a new snapshot.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the snapshot tables

Examples:
  # Export before clearing
  bundlesize store export --output-file backup.parquet
  bundlesize store clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadStoreConfig()
	},
	Run: func(_ *cobra.Command, _ []string) {
		dbPath := iocache.GetDBFilePath()
		if cfg.StoreBackend == schema.SQLiteBackend && cfg.StoreDBConnect != "" {
			dbPath = cfg.StoreDBConnect
		}
		if err := iocache.ClearStore(cfg.StoreBackend, dbPath, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear snapshot store", err)
		}
		fmt.Println("Snapshot store cleared successfully.")
	},
}

// storeExportCmd exports stored route sizes to Parquet.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored route sizes to Parquet for analytics",
	Long: `Export every stored route size, labeled with its snapshot's branch, commit and time,
to a Parquet file for DuckDB, pandas or BI tools.

Requires: --output-file parameter

Examples:
  bundlesize store export --output-file bundlesize-history.parquet
  duckdb -c "SELECT route, max(gzip_bytes) FROM 'bundlesize-history.parquet' GROUP BY route"`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		exporter, ok := iocache.Manager.GetSnapshotStore().(iocache.RouteSizeExporter)
		if !ok {
			contract.LogFatal("Failed to export snapshots", errors.New("store backend cannot export"))
		}
		if err := iocache.ExecuteStoreExport(rootCtx, os.Stdout, exporter, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export snapshots", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the snapshot store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the snapshot store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to the latest schema
  bundlesize store migrate

  # Roll back everything
  bundlesize store migrate --target-version 0

  # Migrate a PostgreSQL store
  BUNDLESIZE_STORE_BACKEND=postgresql BUNDLESIZE_STORE_DB_CONNECT="host=db dbname=ci" bundlesize store migrate`,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.MigrateStore(os.Stdout, cfg.StoreBackend, cfg.StoreDBConnect, cfg.MigrateTarget); err != nil {
			contract.LogFatal("Failed to migrate snapshot store", err)
		}
	},
}
