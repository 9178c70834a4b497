package cmd

import (
	"github.com/huangsam/bundlesize/core"
	"github.com/spf13/cobra"
)

// reportCmd renders the bundle size report of a build against its baseline.
var reportCmd = &cobra.Command{
	Use:   "report [stats-file]",
	Short: "Report how a build's route sizes changed against the base branch.",
	Long: `Compare a build with the baseline of --base-branch and render the bundle size report.

The baseline is taken from the first source that has one:
1. --baseline-file
2. The artifact store (--artifact-endpoint or --artifact-dir)
3. The newest snapshot of --base-branch in the snapshot store

Without any baseline every route is reported as new.

Only changed routes are listed. Increases above --budget-percent-increase-red
are marked critical, and changes at or below --minimum-change bytes are ignored.

Examples:
  # Print the markdown report
  bundlesize report .next/stats.json

  # Post it on the pull request
  GITHUB_TOKEN=... bundlesize report --comment --repo acme/web --pr 42

  # Machine-readable JSON for other tooling
  bundlesize report --output json --output-file bundlesize-report.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteReport, "Cannot report route sizes"),
}

// compareCmd renders the report between two builds.
var compareCmd = &cobra.Command{
	Use:   "compare <base-stats-file> <stats-file>",
	Short: "Report how route sizes changed between two builds.",
	Long: `Extract routes from two stats manifests and render the bundle size report between them.

Assets are gzip-sized from each manifest's directory unless --base-build-dir and
--build-dir point somewhere else.

Examples:
  # Compare two local builds
  bundlesize compare base/.next/stats.json .next/stats.json

  # Print every route as a table instead of the markdown report
  bundlesize compare base/stats.json head/stats.json --output text`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteCompare, "Cannot compare builds"),
}

// routesCmd lists the routes of a build.
var routesCmd = &cobra.Command{
	Use:   "routes [stats-file]",
	Short: "List the routes of a build with their sizes.",
	Long: `Extract per-route JavaScript sizes from a stats manifest and print them without recording anything.

Examples:
  # Show every route
  bundlesize routes .next/stats.json --output text

  # Export for a spreadsheet
  bundlesize routes --output csv --output-file routes.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteRoutes, "Cannot list routes"),
}
