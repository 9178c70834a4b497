package core

import (
	"fmt"

	"github.com/huangsam/bundlesize/schema"
)

// Rendered labels for the diff column.
const (
	NewLabel       = "🆕 New"
	UnchangedLabel = "➖ No change"
	RemovedLabel   = "🗑️ Removed"
)

// ComputeDiff classifies current against baseline. A nil baseline means the route is new.
// Changes with an absolute delta at or below t.MinimumChange are unchanged. An increase
// is critical only when its percentage is strictly above t.BudgetPercentIncreaseRed.
func ComputeDiff(current int64, baseline *int64, t schema.Thresholds) schema.DiffResult {
	if baseline == nil {
		return schema.DiffResult{Kind: schema.NewKind}
	}

	delta := current - *baseline
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	if abs <= t.MinimumChange {
		return schema.DiffResult{Kind: schema.UnchangedKind, Delta: abs}
	}

	result := schema.DiffResult{Delta: abs}
	if *baseline > 0 {
		result.Percent = float64(abs) / float64(*baseline) * 100
		result.HasPercent = true
	}

	if delta < 0 {
		result.Kind = schema.DecreaseKind
		return result
	}

	result.Kind = schema.IncreaseKind
	result.Severity = schema.WarningSeverity
	// Without a baseline percentage there is nothing to hold against the budget.
	if result.HasPercent && result.Percent > t.BudgetPercentIncreaseRed {
		result.Severity = schema.CriticalSeverity
	}
	return result
}

// ComputeRemoved returns the classification of a route that only exists in the baseline.
func ComputeRemoved(baseline int64) schema.DiffResult {
	return schema.DiffResult{Kind: schema.RemovedKind, Delta: baseline}
}

// RenderDiff renders a classification as a markdown diff cell.
func RenderDiff(d schema.DiffResult) string {
	switch d.Kind {
	case schema.NewKind:
		return NewLabel
	case schema.RemovedKind:
		return RemovedLabel
	case schema.UnchangedKind:
		return UnchangedLabel
	}

	icon, sign := "🟢", "-"
	if d.Kind == schema.IncreaseKind {
		sign = "+"
		icon = "🟡"
		if d.Severity == schema.CriticalSeverity {
			icon = "🔴"
		}
	}

	out := fmt.Sprintf("%s `%s%s`", icon, sign, FormatBytes(d.Delta))
	if d.HasPercent {
		out += fmt.Sprintf(" (%s%s%%)", sign, formatPercent(d.Percent))
	}
	return out
}

// FormatDiff compares current to an optional baseline and renders the result.
func FormatDiff(current int64, baseline *int64, t schema.Thresholds) string {
	return RenderDiff(ComputeDiff(current, baseline, t))
}
