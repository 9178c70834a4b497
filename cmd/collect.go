package cmd

import (
	"github.com/huangsam/bundlesize/core"
	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/spf13/cobra"
)

// collectSetup runs the shared setup and labels the snapshot with the checked-out branch and commit.
func collectSetup(cmd *cobra.Command, args []string) error {
	if err := sharedSetup(rootCtx, cmd, args); err != nil {
		return err
	}
	contract.ResolveSnapshotLabels(rootCtx, cfg, contract.NewLocalGitClient(), ".")
	return nil
}

// collectCmd records the route sizes of a build as a baseline snapshot.
var collectCmd = &cobra.Command{
	Use:   "collect [stats-file]",
	Short: "Record the route sizes of a build as a baseline snapshot.",
	Long: `Extract per-route JavaScript sizes from a stats manifest and record them.

Run this on your base branch after every build. Depending on configuration the
snapshot is written to:
- A snapshot JSON file (--snapshot-file), e.g. for CI cache or artifact upload
- The snapshot store (--store-backend), keyed by branch
- An S3-compatible bucket or local directory (--artifact-endpoint, --artifact-dir)
- A Prometheus Pushgateway (--pushgateway-url)

Branch and commit default to the checked-out Git state.

Examples:
  # Record main's sizes in the default SQLite store
  bundlesize collect .next/stats.json --branch main

  # Upload the baseline to S3 and push gauges
  bundlesize collect --artifact-endpoint s3.amazonaws.com --artifact-bucket ci-baselines \
    --pushgateway-url http://pushgateway:9091

  # Only write a snapshot file
  bundlesize collect --store-backend none --snapshot-file bundlesize.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: collectSetup,
	Run:     runExecutor(core.ExecuteCollect, "Cannot collect route sizes"),
}
