package contract

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"

	"github.com/huangsam/bundlesize/schema"
)

// Default values for configuration.
const (
	DefaultStatsFile      = ".next/stats.json"
	DefaultBaseBranch     = "main"
	DefaultArtifactPrefix = "bundlesize"
	DefaultHistoryLimit   = 20
	MaxHistoryLimit       = 1000
	DefaultGzipLevel      = 9
	DefaultGitHubAPIURL   = "https://api.github.com"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ThresholdsRawInput holds diff threshold definitions from flags, env or the YAML config file.
type ThresholdsRawInput struct {
	MinimumChange            int64   `mapstructure:"minimum-change"`
	BudgetPercentIncreaseRed float64 `mapstructure:"budget-percent-increase-red"`
}

// ArtifactConfig locates the baseline artifact store.
type ArtifactConfig struct {
	Endpoint  string // S3-compatible endpoint, empty for none
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string // Please use env var as this is plaintext
	SecretKey string // Please use env var as this is plaintext
	Secure    bool
	Dir       string // Local directory store, used when Endpoint is empty
}

// Enabled reports whether any artifact store is configured.
func (a ArtifactConfig) Enabled() bool {
	return a.Endpoint != "" || a.Dir != ""
}

// CommentConfig identifies the pull request that receives the report.
type CommentConfig struct {
	Enabled     bool
	Owner       string
	Repo        string
	PullRequest int
	Token       string // Please use env var as this is plaintext
	APIURL      string
}

// Config holds the runtime configuration for a run.
// This struct remains the "final, validated" config.
type Config struct {
	StatsFile     string // Current stats manifest
	BaseStatsFile string // Baseline stats manifest, compare only
	BuildDir      string // Directory holding current assets for gzip sizing
	BaseBuildDir  string // Directory holding baseline assets for gzip sizing
	BaselineFile  string // Snapshot JSON to use as the baseline
	SnapshotFile  string // Where collect writes its snapshot JSON

	Branch     string
	BaseBranch string
	CommitSHA  string

	Thresholds schema.Thresholds

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	Verbose    bool

	Workers   int
	GzipLevel int

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	Artifact ArtifactConfig
	Comment  CommentConfig

	PushgatewayURL string

	HistoryLimit  int
	MigrateTarget int
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	StatsFileStr     string
	BaseStatsFileStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	Verbose        bool   `mapstructure:"verbose"`
	Workers        int    `mapstructure:"workers"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Branch         string `mapstructure:"branch"`
	BaseBranch     string `mapstructure:"base-branch"`
	Commit         string `mapstructure:"commit"`

	// --- Fields from collect/report/compare flags ---
	BuildDir       string `mapstructure:"build-dir"`
	BaseBuildDir   string `mapstructure:"base-build-dir"`
	GzipLevel      int    `mapstructure:"gzip-level"`
	BaselineFile   string `mapstructure:"baseline-file"`
	SnapshotFile   string `mapstructure:"snapshot-file"`
	PushgatewayURL string `mapstructure:"pushgateway-url"`

	// --- Artifact store ---
	ArtifactEndpoint  string `mapstructure:"artifact-endpoint"`
	ArtifactBucket    string `mapstructure:"artifact-bucket"`
	ArtifactPrefix    string `mapstructure:"artifact-prefix"`
	ArtifactRegion    string `mapstructure:"artifact-region"`
	ArtifactAccessKey string `mapstructure:"artifact-access-key"`
	ArtifactSecretKey string `mapstructure:"artifact-secret-key"`
	ArtifactInsecure  bool   `mapstructure:"artifact-insecure"`
	ArtifactDir       string `mapstructure:"artifact-dir"`

	// --- PR comment ---
	Comment      bool   `mapstructure:"comment"`
	Repo         string `mapstructure:"repo"`
	PullRequest  int    `mapstructure:"pr"`
	GitHubToken  string `mapstructure:"github-token"`
	GitHubAPIURL string `mapstructure:"github-api-url"`

	// --- Store subcommands ---
	Limit         int `mapstructure:"limit"`
	TargetVersion int `mapstructure:"target-version"`

	// --- Diff thresholds from flags or config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	if err := validateStoreConfig(cfg, input); err != nil {
		return err
	}
	if err := processArtifactConfig(cfg, input); err != nil {
		return err
	}
	if err := processCommentConfig(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-nested fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.StatsFile = strings.TrimSpace(input.StatsFileStr)
	if cfg.StatsFile == "" {
		cfg.StatsFile = DefaultStatsFile
	}
	cfg.BaseStatsFile = strings.TrimSpace(input.BaseStatsFileStr)
	cfg.BuildDir = input.BuildDir
	cfg.BaseBuildDir = input.BaseBuildDir
	cfg.BaselineFile = input.BaselineFile
	cfg.SnapshotFile = input.SnapshotFile
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose
	cfg.CommitSHA = strings.TrimSpace(input.Commit)
	cfg.Branch = strings.TrimSpace(input.Branch)
	cfg.PushgatewayURL = strings.TrimSpace(input.PushgatewayURL)
	cfg.MigrateTarget = input.TargetVersion

	cfg.BaseBranch = strings.TrimSpace(input.BaseBranch)
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = DefaultBaseBranch
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Gzip Level Validation ---
	if input.GzipLevel < 1 || input.GzipLevel > 9 {
		return fmt.Errorf("gzip-level must be between 1 and 9 (received %d)", input.GzipLevel)
	}
	cfg.GzipLevel = input.GzipLevel

	// --- 3. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be markdown, text, json, yaml, csv, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 4. History Limit Validation ---
	cfg.HistoryLimit = input.Limit
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.HistoryLimit < 0 || cfg.HistoryLimit > MaxHistoryLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxHistoryLimit, input.Limit)
	}

	if cfg.PushgatewayURL != "" {
		if _, err := url.ParseRequestURI(cfg.PushgatewayURL); err != nil {
			return fmt.Errorf("invalid pushgateway-url %q: %w", cfg.PushgatewayURL, err)
		}
	}

	return nil
}

// processThresholds validates the diff thresholds.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	if input.Thresholds.MinimumChange < 0 {
		return fmt.Errorf("minimum-change must be 0 or greater (received %d)", input.Thresholds.MinimumChange)
	}
	if input.Thresholds.BudgetPercentIncreaseRed < 0 {
		return fmt.Errorf("budget-percent-increase-red must be 0 or greater (received %.2f)", input.Thresholds.BudgetPercentIncreaseRed)
	}
	cfg.Thresholds = schema.Thresholds{
		MinimumChange:            input.Thresholds.MinimumChange,
		BudgetPercentIncreaseRed: input.Thresholds.BudgetPercentIncreaseRed,
	}
	return nil
}

// validateStoreConfig validates the snapshot store backend configuration.
func validateStoreConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// processArtifactConfig validates the artifact store settings.
func processArtifactConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Artifact = ArtifactConfig{
		Endpoint:  strings.TrimSpace(input.ArtifactEndpoint),
		Bucket:    strings.TrimSpace(input.ArtifactBucket),
		Prefix:    strings.Trim(strings.TrimSpace(input.ArtifactPrefix), "/"),
		Region:    input.ArtifactRegion,
		AccessKey: input.ArtifactAccessKey,
		SecretKey: input.ArtifactSecretKey,
		Secure:    !input.ArtifactInsecure,
		Dir:       input.ArtifactDir,
	}
	if cfg.Artifact.Prefix == "" {
		cfg.Artifact.Prefix = DefaultArtifactPrefix
	}
	if cfg.Artifact.Endpoint != "" {
		if strings.Contains(cfg.Artifact.Endpoint, "://") {
			return fmt.Errorf("artifact-endpoint must be host[:port] without a scheme (received %q)", cfg.Artifact.Endpoint)
		}
		if cfg.Artifact.Bucket == "" {
			return fmt.Errorf("artifact-bucket is required when artifact-endpoint is set")
		}
	}
	return nil
}

// processCommentConfig validates the pull request comment target.
func processCommentConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Comment = CommentConfig{
		Enabled:     input.Comment,
		PullRequest: input.PullRequest,
		Token:       input.GitHubToken,
		APIURL:      strings.TrimRight(strings.TrimSpace(input.GitHubAPIURL), "/"),
	}
	if cfg.Comment.APIURL == "" {
		cfg.Comment.APIURL = DefaultGitHubAPIURL
	}
	if repo := strings.TrimSpace(input.Repo); repo != "" {
		owner, name, err := ParseRepoSlug(repo)
		if err != nil {
			return err
		}
		cfg.Comment.Owner, cfg.Comment.Repo = owner, name
	}
	if !cfg.Comment.Enabled {
		return nil
	}
	if cfg.Comment.Owner == "" {
		return fmt.Errorf("--repo is required when commenting")
	}
	if cfg.Comment.PullRequest <= 0 {
		return fmt.Errorf("--pr must be greater than 0 when commenting (received %d)", cfg.Comment.PullRequest)
	}
	if cfg.Comment.Token == "" {
		return fmt.Errorf("a GitHub token is required when commenting (set GITHUB_TOKEN)")
	}
	return nil
}

// ParseRepoSlug splits "owner/repo" into its parts.
func ParseRepoSlug(slug string) (string, string, error) {
	owner, repo, ok := strings.Cut(slug, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repo '%s'. expected owner/repo", slug)
	}
	return owner, repo, nil
}
