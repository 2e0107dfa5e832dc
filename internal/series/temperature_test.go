package series

import (
	"errors"
	"testing"
	"time"

	"github.com/quantfarm/harvest/internal/core"
)

func TestNewTemperatureSeries(t *testing.T) {
	recs := []core.TemperatureRecord{
		{Date: day(2020, 9, 14), MaxTempC: 34.1, MinTempC: 17.9},
		{Date: day(2020, 9, 15), MaxTempC: 31.0, MinTempC: 16.2},
	}
	s, err := NewTemperatureSeries(recs)
	if err != nil {
		t.Fatalf("NewTemperatureSeries: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if got := s.At(0).MaxTempC; got != 34.1 {
		t.Errorf("At(0).MaxTempC = %v", got)
	}
}

func TestNewTemperatureSeries_Empty(t *testing.T) {
	s, err := NewTemperatureSeries(nil)
	if err != nil {
		t.Fatalf("empty input should not be an error: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestNewTemperatureSeries_RejectsSentinel(t *testing.T) {
	_, err := NewTemperatureSeries([]core.TemperatureRecord{
		{Date: day(2020, 1, 1), MaxTempC: -999, MinTempC: -999},
	})
	if !errors.Is(err, core.ErrBadSeries) {
		t.Errorf("expected ErrBadSeries, got %v", err)
	}
}

func TestNewTemperatureSeries_RejectsDuplicateDates(t *testing.T) {
	_, err := NewTemperatureSeries([]core.TemperatureRecord{
		{Date: day(2020, 1, 1), MaxTempC: 20, MinTempC: 10},
		{Date: time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC), MaxTempC: 21, MinTempC: 11},
	})
	if !errors.Is(err, core.ErrBadSeries) {
		t.Errorf("expected ErrBadSeries, got %v", err)
	}
}
