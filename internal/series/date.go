package series

import "time"

// Day truncates a timestamp to midnight UTC. All series dates are stored
// in this form so exact-match lookups behave like calendar-date lookups.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts a date by n calendar months, clamping the day of month
// to the target month's length (Jan 31 + 1 month = Feb 28/29). This mirrors
// the month offset arithmetic of the upstream data tooling rather than Go's
// normalizing AddDate.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()

	total := int(m) - 1 + n
	year := y + total/12
	month := total % 12
	if month < 0 {
		month += 12
		year--
	}
	target := time.Month(month + 1)

	if last := daysIn(year, target); d > last {
		d = last
	}
	return time.Date(year, target, d, 0, 0, 0, 0, time.UTC)
}

// MonthKey identifies a calendar month for dedup and labelling.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the MonthKey containing t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Start returns the first day of the month.
func (k MonthKey) Start() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
