package series

import (
	"fmt"
	"time"

	"github.com/quantfarm/harvest/internal/core"
)

// TemperatureSeries is an immutable date-indexed sequence of daily
// temperature records for one growing region.
type TemperatureSeries struct {
	records []core.TemperatureRecord
}

// NewTemperatureSeries validates and wraps a slice of records. Records must
// be sorted by date with no duplicates; sentinel readings are rejected
// because the ingest layer is responsible for dropping them.
func NewTemperatureSeries(records []core.TemperatureRecord) (*TemperatureSeries, error) {
	out := make([]core.TemperatureRecord, len(records))
	var prev time.Time
	for i, r := range records {
		if !r.IsValid() {
			return nil, core.WrapError(core.ErrBadSeries,
				fmt.Errorf("record %d (%s): implausible reading max=%v min=%v",
					i, r.Date.Format("2006-01-02"), r.MaxTempC, r.MinTempC))
		}
		r.Date = Day(r.Date)
		if i > 0 && !prev.Before(r.Date) {
			return nil, core.WrapError(core.ErrBadSeries,
				fmt.Errorf("record %d: date %s not after %s", i,
					r.Date.Format("2006-01-02"), prev.Format("2006-01-02")))
		}
		prev = r.Date
		out[i] = r
	}
	return &TemperatureSeries{records: out}, nil
}

// Len returns the number of daily records.
func (s *TemperatureSeries) Len() int { return len(s.records) }

// At returns the i-th record.
func (s *TemperatureSeries) At(i int) core.TemperatureRecord { return s.records[i] }

// Records returns a copy of the underlying records.
func (s *TemperatureSeries) Records() []core.TemperatureRecord {
	out := make([]core.TemperatureRecord, len(s.records))
	copy(out, s.records)
	return out
}
