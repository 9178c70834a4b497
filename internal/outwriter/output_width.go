package outwriter

import (
	"os"

	"github.com/huangsam/bundlesize/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableRouteWidth calculates the maximum width for routes in table output
// based on terminal width and the fixed size columns.
func GetMaxTableRouteWidth(cfg *contract.Config, fixedWidth int) int {
	termWidth := cfg.Width

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for table borders, separators, and padding
	available := termWidth - fixedWidth - 10
	if available < 15 {
		return 15
	}
	if available > 80 {
		return 80
	}
	return available
}
