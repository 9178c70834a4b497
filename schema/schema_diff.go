package schema

// Thresholds controls how size changes are classified.
type Thresholds struct {
	MinimumChange            int64   `json:"minimum_change" yaml:"minimum_change"`                           // Absolute byte floor; changes at or below it are unchanged
	BudgetPercentIncreaseRed float64 `json:"budget_percent_increase_red" yaml:"budget_percent_increase_red"` // Increases above this percentage are critical
}

// DiffResult is the classification of a current size against an optional baseline.
type DiffResult struct {
	Kind       DiffKind `json:"kind" yaml:"kind"`
	Delta      int64    `json:"delta" yaml:"delta"`     // Absolute difference in bytes
	Percent    float64  `json:"percent" yaml:"percent"` // Only meaningful when HasPercent is set
	HasPercent bool     `json:"has_percent" yaml:"has_percent"`
	Severity   Severity `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// IsChanged reports whether the route belongs in a change report.
func (d DiffResult) IsChanged() bool {
	return d.Kind != UnchangedKind
}

// RouteComparison is one route of a current-versus-baseline comparison.
type RouteComparison struct {
	Route    string     `json:"route" yaml:"route"`
	Current  *RouteSize `json:"current,omitempty" yaml:"current,omitempty"`
	Baseline *RouteSize `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	Diff     DiffResult `json:"diff" yaml:"diff"`
	Label    string     `json:"label" yaml:"label"` // Rendered diff cell
}

// ComparisonSummary aggregates a comparison.
type ComparisonSummary struct {
	TotalRoutes     int   `json:"total_routes" yaml:"total_routes"`
	ChangedRoutes   int   `json:"changed_routes" yaml:"changed_routes"`
	NewRoutes       int   `json:"new_routes" yaml:"new_routes"`
	RemovedRoutes   int   `json:"removed_routes" yaml:"removed_routes"`
	IncreasedRoutes int   `json:"increased_routes" yaml:"increased_routes"`
	DecreasedRoutes int   `json:"decreased_routes" yaml:"decreased_routes"`
	CriticalRoutes  int   `json:"critical_routes" yaml:"critical_routes"`
	NetGzipDelta    int64 `json:"net_gzip_delta" yaml:"net_gzip_delta"`
}

// ComparisonResult is a full comparison ready for structured output.
type ComparisonResult struct {
	BaseBranch string            `json:"base_branch" yaml:"base_branch"`
	Thresholds Thresholds        `json:"thresholds" yaml:"thresholds"`
	Routes     []RouteComparison `json:"routes" yaml:"routes"`
	Summary    ComparisonSummary `json:"summary" yaml:"summary"`
}
