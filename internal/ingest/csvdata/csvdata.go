// Package csvdata reads and writes the local CSV caches that sit between
// the remote weather/market APIs and the pipeline, so reruns do not
// re-fetch ten years of data.
package csvdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/quantfarm/harvest/internal/commodity"
	"github.com/quantfarm/harvest/internal/core"
	"github.com/quantfarm/harvest/internal/ingest"
)

const dateLayout = "2006-01-02"

// temperature cache columns; Humidity_Pct and THI are optional
var tempHeader = []string{"Date", "Max_Temp_C", "Min_Temp_C", "Humidity_Pct", "THI"}

var priceHeader = []string{"Date", "Close"}

// TemperatureFile reads a cached temperature CSV as a TemperatureSource.
type TemperatureFile struct {
	Path string
}

func (f *TemperatureFile) Name() string { return "csv:" + f.Path }

// FetchDaily loads the cache, keeping only records inside [start, end].
// Sentinel rows are dropped rather than rejected, since older caches were
// written before upstream filtering.
func (f *TemperatureFile) FetchDaily(ctx context.Context, _ commodity.Region, start, end time.Time) ([]core.TemperatureRecord, error) {
	records, err := ReadTemperatures(f.Path)
	if err != nil {
		return nil, err
	}
	out := records[:0]
	for _, r := range records {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// PriceFile reads a cached price CSV as a PriceSource.
type PriceFile struct {
	Path string
}

func (f *PriceFile) Name() string { return "csv:" + f.Path }

func (f *PriceFile) FetchCloses(ctx context.Context, _ string, start, end time.Time) ([]core.PriceBar, error) {
	bars, err := ReadPrices(f.Path)
	if err != nil {
		return nil, err
	}
	out := bars[:0]
	for _, b := range bars {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// ReadTemperatures parses a temperature cache file.
func ReadTemperatures(path string) ([]core.TemperatureRecord, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.ErrNoData
	}

	cols, err := headerIndex(rows[0], "Date", "Max_Temp_C", "Min_Temp_C")
	if err != nil {
		return nil, err
	}
	humCol, hasHum := optionalColumn(rows[0], "Humidity_Pct")
	thiCol, hasTHI := optionalColumn(rows[0], "THI")

	records := make([]core.TemperatureRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		date, err := time.Parse(dateLayout, row[cols["Date"]])
		if err != nil {
			return nil, core.WrapError(core.ErrParseFailed,
				fmt.Errorf("%s row %d: %w", path, i+2, err))
		}
		maxT, err1 := strconv.ParseFloat(row[cols["Max_Temp_C"]], 64)
		minT, err2 := strconv.ParseFloat(row[cols["Min_Temp_C"]], 64)
		if err1 != nil || err2 != nil {
			return nil, core.WrapError(core.ErrParseFailed,
				fmt.Errorf("%s row %d: non-numeric temperature", path, i+2))
		}
		if maxT <= ingest.SentinelFloor || minT <= ingest.SentinelFloor {
			continue
		}
		rec := core.TemperatureRecord{Date: date, MaxTempC: maxT, MinTempC: minT}
		if hasHum {
			rec.HumidityPct, _ = strconv.ParseFloat(row[humCol], 64)
		}
		if hasTHI {
			rec.ThermalIndex, _ = strconv.ParseFloat(row[thiCol], 64)
		} else if hasHum {
			rec.ThermalIndex = ingest.ThermalIndex(maxT, rec.HumidityPct)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteTemperatures writes a temperature cache file.
func WriteTemperatures(path string, records []core.TemperatureRecord, withHumidity bool) error {
	header := tempHeader[:3]
	if withHumidity {
		header = tempHeader
	}
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for _, r := range records {
		row := []string{
			r.Date.Format(dateLayout),
			formatFloat(r.MaxTempC),
			formatFloat(r.MinTempC),
		}
		if withHumidity {
			row = append(row, formatFloat(r.HumidityPct), formatFloat(r.ThermalIndex))
		}
		rows = append(rows, row)
	}
	return writeAll(path, rows)
}

// ReadPrices parses a price cache file.
func ReadPrices(path string) ([]core.PriceBar, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.ErrNoData
	}

	cols, err := headerIndex(rows[0], "Date", "Close")
	if err != nil {
		return nil, err
	}

	bars := make([]core.PriceBar, 0, len(rows)-1)
	for i, row := range rows[1:] {
		date, err := time.Parse(dateLayout, row[cols["Date"]])
		if err != nil {
			return nil, core.WrapError(core.ErrParseFailed,
				fmt.Errorf("%s row %d: %w", path, i+2, err))
		}
		closePx, err := strconv.ParseFloat(row[cols["Close"]], 64)
		if err != nil {
			return nil, core.WrapError(core.ErrParseFailed,
				fmt.Errorf("%s row %d: non-numeric close", path, i+2))
		}
		bars = append(bars, core.PriceBar{Date: date, Close: closePx})
	}
	return bars, nil
}

// WritePrices writes a price cache file.
func WritePrices(path string, bars []core.PriceBar) error {
	rows := make([][]string, 0, len(bars)+1)
	rows = append(rows, priceHeader)
	for _, b := range bars {
		rows = append(rows, []string{b.Date.Format(dateLayout), formatFloat(b.Close)})
	}
	return writeAll(path, rows)
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrNoData, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrParseFailed, err)
	}
	return rows, nil
}

func writeAll(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func headerIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, core.WrapError(core.ErrParseFailed,
				fmt.Errorf("missing column %q", name))
		}
	}
	return idx, nil
}

func optionalColumn(header []string, name string) (int, bool) {
	for i, h := range header {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
