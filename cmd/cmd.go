// Package cmd defines the command-line interface for bundlesize.
package cmd

import (
	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(storeCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeHistoryCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.MarkdownOut), "Output format: markdown or text or json or yaml or csv or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print diagnostic logs to stderr")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent gzip workers")
	rootCmd.PersistentFlags().Int("gzip-level", contract.DefaultGzipLevel, "Gzip compression level used for sizing (1-9)")
	rootCmd.PersistentFlags().String("build-dir", "", "Directory holding the built assets (defaults to the manifest's directory)")
	rootCmd.PersistentFlags().String("branch", "", "Branch of the current build (defaults to the checked-out branch)")
	rootCmd.PersistentFlags().String("base-branch", contract.DefaultBaseBranch, "Branch the current build is compared against")
	rootCmd.PersistentFlags().String("commit", "", "Commit of the current build (defaults to HEAD)")
	rootCmd.PersistentFlags().String("baseline-file", "", "Snapshot JSON to use as the baseline instead of the stores")
	rootCmd.PersistentFlags().Int64("minimum-change", 0, "Byte changes at or below this value count as unchanged")
	rootCmd.PersistentFlags().Float64("budget-percent-increase-red", 0, "Increases above this percentage are critical")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Snapshot store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("artifact-endpoint", "", "S3-compatible endpoint (host[:port]) for baseline artifacts")
	rootCmd.PersistentFlags().String("artifact-bucket", "", "Bucket holding baseline artifacts")
	rootCmd.PersistentFlags().String("artifact-prefix", contract.DefaultArtifactPrefix, "Key prefix of baseline artifacts")
	rootCmd.PersistentFlags().String("artifact-region", "", "Region of the artifact bucket")
	rootCmd.PersistentFlags().String("artifact-access-key", "", "Access key for the artifact store")
	rootCmd.PersistentFlags().String("artifact-secret-key", "", "Secret key for the artifact store")
	rootCmd.PersistentFlags().Bool("artifact-insecure", false, "Use plain HTTP for the artifact endpoint")
	rootCmd.PersistentFlags().String("artifact-dir", "", "Local directory used as the artifact store when no endpoint is set")
	rootCmd.PersistentFlags().Bool("comment", false, "Post the report as a pull request comment")
	rootCmd.PersistentFlags().String("repo", "", "Repository receiving the comment, as owner/repo")
	rootCmd.PersistentFlags().Int("pr", 0, "Pull request number receiving the comment")
	rootCmd.PersistentFlags().String("github-token", "", "GitHub token used for commenting (prefer GITHUB_TOKEN)")
	rootCmd.PersistentFlags().String("github-api-url", contract.DefaultGitHubAPIURL, "GitHub REST API base URL")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Thresholds live under their own key so the config file can group them
	for _, name := range []string{"minimum-change", "budget-percent-increase-red"} {
		if err := viper.BindPFlag("thresholds."+name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			contract.LogFatal("Error binding threshold flags", err)
		}
	}

	// Bind all flags of collectCmd to Viper
	collectCmd.Flags().String("snapshot-file", "", "Write the collected routes to this snapshot JSON file")
	collectCmd.Flags().String("pushgateway-url", "", "Prometheus Pushgateway URL receiving route size gauges")
	if err := viper.BindPFlags(collectCmd.Flags()); err != nil {
		contract.LogFatal("Error binding collect flags", err)
	}

	// Bind all flags of compareCmd to Viper
	compareCmd.Flags().String("base-build-dir", "", "Directory holding the baseline build's assets")
	if err := viper.BindPFlags(compareCmd.Flags()); err != nil {
		contract.LogFatal("Error binding compare flags", err)
	}

	// Bind all flags of storeHistoryCmd to Viper
	storeHistoryCmd.Flags().IntP("limit", "l", contract.DefaultHistoryLimit, "Number of snapshots to display")
	if err := viper.BindPFlags(storeHistoryCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store history flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
