package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/bundlesize/core"
	"github.com/huangsam/bundlesize/internal/artifact"
	"github.com/huangsam/bundlesize/internal/comment"
	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/internal/iocache"
	"github.com/huangsam/bundlesize/internal/metrics"
	"github.com/huangsam/bundlesize/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// storeManager is the global snapshot store manager instance.
var storeManager contract.StoreManager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "bundlesize",
	Short:              "Report per-route JavaScript bundle sizes for pull requests.",
	Long:               `Bundlesize reads a webpack stats manifest, sizes every route's JavaScript and tells you what a change did to it.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".bundlesize") // Name of config file (without extension)
		viper.SetConfigType("yaml")        // We'll use YAML format
		viper.AddConfigPath(".")           // Look in the current directory
		viper.AddConfigPath("$HOME")       // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("BUNDLESIZE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// CI providers export these under their own names
	_ = viper.BindEnv("github-token", "BUNDLESIZE_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = viper.BindEnv("repo", "BUNDLESIZE_REPO", "GITHUB_REPOSITORY")
	_ = viper.BindEnv("artifact-access-key", "BUNDLESIZE_ARTIFACT_ACCESS_KEY", "AWS_ACCESS_KEY_ID")
	_ = viper.BindEnv("artifact-secret-key", "BUNDLESIZE_ARTIFACT_SECRET_KEY", "AWS_SECRET_ACCESS_KEY")

	// Set defaults in Viper
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("output", schema.MarkdownOut)
	viper.SetDefault("base-branch", contract.DefaultBaseBranch)
	viper.SetDefault("gzip-level", contract.DefaultGzipLevel)
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("artifact-prefix", contract.DefaultArtifactPrefix)
	viper.SetDefault("github-api-url", contract.DefaultGitHubAPIURL)
	viper.SetDefault("limit", contract.DefaultHistoryLimit)
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config and runs validation.
// One positional argument is the stats manifest, two are the baseline and current manifests.
func sharedSetup(ctx context.Context, _ *cobra.Command, args []string) error {
	// 1. Load .env files so tokens are visible to Viper's env lookups.
	if _, err := contract.LoadDotEnv(); err != nil {
		return err
	}

	// 2. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 3. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 4. Handle positional arguments (which Viper doesn't do).
	switch len(args) {
	case 1:
		input.StatsFileStr = args[0]
	case 2:
		input.BaseStatsFileStr = args[0]
		input.StatsFileStr = args[1]
	}

	// 5. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	contract.SetupLogger(os.Stderr, cfg.Verbose)

	// 6. Initialize persistence layer with validated config
	if err := iocache.InitStore(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// buildIntegrations creates the optional collaborators enabled by cfg.
func buildIntegrations(ctx context.Context, cfg *contract.Config) (core.Integrations, error) {
	var integ core.Integrations

	artifacts, err := artifact.New(cfg.Artifact)
	if err != nil {
		return integ, fmt.Errorf("failed to configure artifact store: %w", err)
	}
	integ.Artifacts = artifacts

	if cfg.Comment.Enabled {
		integ.Comments = comment.NewGitHubPoster(ctx, cfg.Comment)
	}
	if cfg.PushgatewayURL != "" {
		integ.Metrics = metrics.NewPusher(cfg.PushgatewayURL)
	}
	return integ, nil
}

// runExecutor adapts a core executor to a cobra Run function.
func runExecutor(executor core.ExecutorFunc, failMsg string) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		integ, err := buildIntegrations(rootCtx, cfg)
		if err != nil {
			contract.LogFatal("Cannot configure integrations", err)
		}
		if err := executor(rootCtx, cfg, storeManager, integ); err != nil {
			contract.LogFatal(failMsg, err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetStoreManager sets the global snapshot store manager.
func SetStoreManager(mgr contract.StoreManager) {
	storeManager = mgr
}
