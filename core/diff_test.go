package core

import (
	"testing"

	"github.com/huangsam/bundlesize/schema"
	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestFormatDiff(t *testing.T) {
	tests := []struct {
		name       string
		current    int64
		baseline   *int64
		thresholds schema.Thresholds
		expected   string
	}{
		{"new route", 2048, nil, schema.Thresholds{}, NewLabel},
		{"identical", 1024, ptr(1024), schema.Thresholds{}, UnchangedLabel},
		{"identical zero", 0, ptr(0), schema.Thresholds{}, UnchangedLabel},
		{"critical increase", 2048, ptr(1024), schema.Thresholds{}, "🔴 `+1 KB` (+100%)"},
		{"decrease", 1024, ptr(2048), schema.Thresholds{}, "🟢 `-1 KB` (-50%)"},
		{"increase within budget", 1100, ptr(1000), schema.Thresholds{BudgetPercentIncreaseRed: 20}, "🟡 `+100 B` (+10%)"},
		{"increase on budget is warning", 1200, ptr(1000), schema.Thresholds{BudgetPercentIncreaseRed: 20}, "🟡 `+200 B` (+20%)"},
		{"increase over budget", 1201, ptr(1000), schema.Thresholds{BudgetPercentIncreaseRed: 20}, "🔴 `+201 B` (+20.1%)"},
		{"below minimum change", 1100, ptr(1000), schema.Thresholds{MinimumChange: 200}, UnchangedLabel},
		{"at minimum change", 1200, ptr(1000), schema.Thresholds{MinimumChange: 200}, UnchangedLabel},
		{"decrease at minimum change", 800, ptr(1000), schema.Thresholds{MinimumChange: 200}, UnchangedLabel},
		{"above minimum change", 1201, ptr(1000), schema.Thresholds{MinimumChange: 200, BudgetPercentIncreaseRed: 50}, "🟡 `+201 B` (+20.1%)"},
		{"increase from zero baseline", 512, ptr(0), schema.Thresholds{}, "🟡 `+512 B`"},
		{"fractional percent", 1501, ptr(1000), schema.Thresholds{BudgetPercentIncreaseRed: 100}, "🟡 `+501 B` (+50.1%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDiff(tt.current, tt.baseline, tt.thresholds))
		})
	}
}

func TestComputeDiff(t *testing.T) {
	d := ComputeDiff(2048, ptr(1024), schema.Thresholds{})
	assert.Equal(t, schema.IncreaseKind, d.Kind)
	assert.Equal(t, int64(1024), d.Delta)
	assert.True(t, d.HasPercent)
	assert.InDelta(t, 100.0, d.Percent, 1e-9)
	assert.Equal(t, schema.CriticalSeverity, d.Severity)

	d = ComputeDiff(500, ptr(1000), schema.Thresholds{})
	assert.Equal(t, schema.DecreaseKind, d.Kind)
	assert.Equal(t, schema.NoSeverity, d.Severity)

	d = ComputeDiff(100, ptr(0), schema.Thresholds{})
	assert.Equal(t, schema.IncreaseKind, d.Kind)
	assert.False(t, d.HasPercent)
	assert.Equal(t, schema.WarningSeverity, d.Severity)

	assert.False(t, ComputeDiff(5, ptr(5), schema.Thresholds{}).IsChanged())
	assert.True(t, ComputeDiff(5, nil, schema.Thresholds{}).IsChanged())
}

func TestComputeRemoved(t *testing.T) {
	d := ComputeRemoved(500)
	assert.Equal(t, schema.RemovedKind, d.Kind)
	assert.Equal(t, int64(500), d.Delta)
	assert.False(t, d.HasPercent)
	assert.Equal(t, RemovedLabel, RenderDiff(d))
}

func TestFormatDiff_Properties(t *testing.T) {
	values := []int64{0, 1, 7, 512, 1024, 99999, 1 << 30}
	thresholds := []int64{0, 1, 100, 4096}

	for _, x := range values {
		assert.Equal(t, NewLabel, FormatDiff(x, nil, schema.Thresholds{}), "new for %d", x)
		assert.Equal(t, UnchangedLabel, FormatDiff(x, ptr(x), schema.Thresholds{}), "unchanged for %d", x)

		for _, floor := range thresholds {
			for _, d := range []int64{-floor, floor, floor + 1} {
				base := x + 5000
				cur := base + d
				got := FormatDiff(cur, ptr(base), schema.Thresholds{MinimumChange: floor})
				if abs := max(d, -d); abs <= floor {
					assert.Equal(t, UnchangedLabel, got, "cur=%d base=%d floor=%d", cur, base, floor)
				} else {
					assert.NotEqual(t, UnchangedLabel, got, "cur=%d base=%d floor=%d", cur, base, floor)
				}
			}
		}
	}
}
