package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/bundlesize/schema"
)

// Fixed report lines.
const (
	ReportHeader       = "## 📦 Bundle Size Report"
	ReportAttribution  = "<sub>Generated by bundlesize from the build's stats manifest.</sub>"
	NoRoutesWarning    = "⚠️ No routes were identified. Make sure `BUNDLE_STATS=true` was set during the build."
	NoChangesMessage   = "🎉 No bundle size changes were introduced by this change."
	DefaultBaseBranch  = "main"
	removedSizePlacard = "—"
)

// ReportRenderer renders a markdown size report against a named base branch.
type ReportRenderer struct {
	BaseBranch string
	Thresholds schema.Thresholds
}

// GenerateReport renders current against baseline using the default base branch label.
func GenerateReport(current, baseline *schema.RouteSizes, t schema.Thresholds) string {
	return ReportRenderer{Thresholds: t}.Render(current, baseline)
}

// CompareRoutes classifies every route by gzip size. Current routes come first in their
// insertion order, followed by routes only present in the baseline.
func CompareRoutes(current, baseline *schema.RouteSizes, t schema.Thresholds) []schema.RouteComparison {
	comparisons := make([]schema.RouteComparison, 0, current.Len()+baseline.Len())

	for _, route := range current.Routes() {
		size, _ := current.Get(route)
		cmp := schema.RouteComparison{Route: route, Current: &size}

		var basePtr *int64
		if base, ok := baseline.Get(route); ok {
			cmp.Baseline = &base
			basePtr = &base.Gzip
		}
		cmp.Diff = ComputeDiff(size.Gzip, basePtr, t)
		cmp.Label = RenderDiff(cmp.Diff)
		comparisons = append(comparisons, cmp)
	}

	for _, route := range baseline.Routes() {
		if _, ok := current.Get(route); ok {
			continue
		}
		base, _ := baseline.Get(route)
		cmp := schema.RouteComparison{
			Route:    route,
			Baseline: &base,
			Diff:     ComputeRemoved(base.Gzip),
		}
		cmp.Label = RenderDiff(cmp.Diff)
		comparisons = append(comparisons, cmp)
	}
	return comparisons
}

// Compare builds a ComparisonResult with summary counts for structured outputs.
func (r ReportRenderer) Compare(current, baseline *schema.RouteSizes) schema.ComparisonResult {
	routes := CompareRoutes(current, baseline, r.Thresholds)
	summary := schema.ComparisonSummary{TotalRoutes: len(routes)}
	for _, cmp := range routes {
		if cmp.Diff.IsChanged() {
			summary.ChangedRoutes++
		}
		switch cmp.Diff.Kind {
		case schema.NewKind:
			summary.NewRoutes++
		case schema.RemovedKind:
			summary.RemovedRoutes++
		case schema.IncreaseKind:
			summary.IncreasedRoutes++
			if cmp.Diff.Severity == schema.CriticalSeverity {
				summary.CriticalRoutes++
			}
		case schema.DecreaseKind:
			summary.DecreasedRoutes++
		}

		var cur, base int64
		if cmp.Current != nil {
			cur = cmp.Current.Gzip
		}
		if cmp.Baseline != nil {
			base = cmp.Baseline.Gzip
		}
		summary.NetGzipDelta += cur - base
	}

	return schema.ComparisonResult{
		BaseBranch: r.baseBranch(),
		Thresholds: r.Thresholds,
		Routes:     routes,
		Summary:    summary,
	}
}

// Render produces the markdown report document.
func (r ReportRenderer) Render(current, baseline *schema.RouteSizes) string {
	var sb strings.Builder
	sb.WriteString(ReportHeader + "\n")
	sb.WriteString(ReportAttribution + "\n")
	sb.WriteString("\n")

	routes := CompareRoutes(current, baseline, r.Thresholds)
	if len(routes) == 0 {
		sb.WriteString(NoRoutesWarning + "\n")
		return sb.String()
	}

	var changed []schema.RouteComparison
	for _, cmp := range routes {
		if cmp.Diff.IsChanged() {
			changed = append(changed, cmp)
		}
	}
	if len(changed) == 0 {
		sb.WriteString(NoChangesMessage + "\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "| Route | Size (gzipped) | Diff (vs %s) |\n", r.baseBranch())
	sb.WriteString("| --- | --- | --- |\n")
	for _, cmp := range changed {
		size := removedSizePlacard
		if cmp.Current != nil {
			size = "`" + FormatBytes(cmp.Current.Gzip) + "`"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", cmp.Route, size, cmp.Label)
	}
	return sb.String()
}

func (r ReportRenderer) baseBranch() string {
	if r.BaseBranch == "" {
		return DefaultBaseBranch
	}
	return r.BaseBranch
}
