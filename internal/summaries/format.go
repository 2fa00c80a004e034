package summaries

import (
	"fmt"

	"annostat-backend/internal/stats"
)

// FormatCell renders an estimate and its interval into a Cell. Estimates are
// shown to two decimals; a degenerate interval collapses the display to the
// point estimate alone.
func FormatCell(estimate float64, iv stats.Interval) Cell {
	cell := Cell{
		Estimate: estimate,
		Display:  fmt.Sprintf("%.2f", estimate),
	}
	if iv.Valid() {
		low, high := iv.Low, iv.High
		cell.Low = &low
		cell.High = &high
		cell.Display = fmt.Sprintf("%.2f (%.2f, %.2f)", estimate, low, high)
	}
	return cell
}
