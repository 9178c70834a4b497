package cmd

import (
	"github.com/huangsam/bundlesize/core"
	"github.com/huangsam/bundlesize/internal/comment"
	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// commentCmd posts a rendered report on a pull request.
var commentCmd = &cobra.Command{
	Use:   "comment <report-file>",
	Short: "Post a rendered report as a pull request comment.",
	Long: `Create or update the bundle size comment on a pull request.

The comment is found again by a hidden marker, so repeated runs edit one comment
instead of adding new ones. Requires --repo, --pr and a GitHub token.

Examples:
  # Split rendering and posting across CI jobs
  bundlesize report --output-file report.md
  GITHUB_TOKEN=... bundlesize comment report.md --repo acme/web --pr 42`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		viper.Set("comment", true)
		return sharedSetup(rootCtx, cmd, nil)
	},
	Run: func(_ *cobra.Command, args []string) {
		poster := comment.NewGitHubPoster(rootCtx, cfg.Comment)
		if err := core.ExecuteComment(rootCtx, cfg, poster, args[0]); err != nil {
			contract.LogFatal("Cannot post comment", err)
		}
	},
}
