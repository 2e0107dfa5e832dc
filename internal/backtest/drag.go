package backtest

import (
	"time"

	"github.com/quantfarm/harvest/internal/series"
)

// DragSchedule models the seasonal roll cost of holding a lean hog futures
// position across contract expiries. Contracts roll on even calendar
// months; the per-roll rate depends on where the roll lands in the hog
// production cycle. Positive rates cost money (contango), negative rates
// pay (backwardation).
type DragSchedule struct{}

// NewHogRollSchedule returns the lean hog roll-yield schedule.
func NewHogRollSchedule() *DragSchedule {
	return &DragSchedule{}
}

// IsRollMonth reports whether contracts roll during m.
func (d *DragSchedule) IsRollMonth(m time.Month) bool {
	switch m {
	case time.February, time.April, time.June, time.August, time.October, time.December:
		return true
	}
	return false
}

// Rate returns the seasonal drag applied at a roll landing in month m,
// expressed as a fraction of position value.
func (d *DragSchedule) Rate(m time.Month) float64 {
	switch m {
	case time.December, time.January, time.February:
		return 0.10 / 6 // winter storage cost
	case time.March, time.April:
		return 0.25 / 6 // spring contango is steepest
	case time.May, time.June:
		return 0.00
	case time.July, time.August:
		return -0.20 / 6 // summer backwardation pays the holder
	default: // Sep, Oct, Nov
		return -0.05 / 6
	}
}

// Compound multiplies the drag factors for every roll month inside the
// holding window [entry+1m, entry+holdingMonths]. The returned factor is
// applied to exit proceeds.
func (d *DragSchedule) Compound(entry time.Time, holdingMonths int) float64 {
	factor := 1.0
	for i := 1; i <= holdingMonths; i++ {
		at := series.AddMonths(entry, i)
		if d.IsRollMonth(at.Month()) {
			factor *= 1 - d.Rate(at.Month())
		}
	}
	return factor
}
