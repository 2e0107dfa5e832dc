// Package power fetches daily agro-climate data from the NASA POWER API.
package power

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/quantfarm/harvest/internal/commodity"
	"github.com/quantfarm/harvest/internal/core"
	"github.com/quantfarm/harvest/internal/ingest"
)

const baseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

// Client fetches daily temperature and humidity for a point location.
type Client struct {
	client       *http.Client
	baseURL      string
	withHumidity bool
}

// Option configures the Client.
type Option func(*Client)

// WithHumidity requests the RH2M channel and derives the thermal index.
func WithHumidity() Option {
	return func(c *Client) { c.withHumidity = true }
}

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// New creates a NASA POWER client.
func New(opts ...Option) *Client {
	c := &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return "nasa_power" }

// powerResponse mirrors the slice of the POWER JSON payload we consume.
// Values are keyed by YYYYMMDD date strings.
type powerResponse struct {
	Properties struct {
		Parameter struct {
			MaxTemp  map[string]float64 `json:"T2M_MAX"`
			MinTemp  map[string]float64 `json:"T2M_MIN"`
			Humidity map[string]float64 `json:"RH2M"`
		} `json:"parameter"`
	} `json:"properties"`
}

// FetchDaily fetches the region's daily records for [start, end], dropping
// sentinel error readings and deriving the thermal index when humidity was
// requested.
func (c *Client) FetchDaily(ctx context.Context, region commodity.Region, start, end time.Time) ([]core.TemperatureRecord, error) {
	params := "T2M_MAX,T2M_MIN"
	if c.withHumidity {
		params += ",RH2M"
	}

	q := url.Values{}
	q.Set("parameters", params)
	q.Set("community", "AG")
	q.Set("latitude", fmt.Sprintf("%.2f", region.Lat))
	q.Set("longitude", fmt.Sprintf("%.2f", region.Lon))
	q.Set("start", start.Format("20060102"))
	q.Set("end", end.Format("20060102"))
	q.Set("format", "JSON")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrFetchFailed,
			fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.Name()))
	}

	var payload powerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, core.WrapError(core.ErrParseFailed, err)
	}

	param := payload.Properties.Parameter
	if len(param.MaxTemp) == 0 {
		return nil, core.ErrNoData
	}

	keys := make([]string, 0, len(param.MaxTemp))
	for k := range param.MaxTemp {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]core.TemperatureRecord, 0, len(keys))
	for _, k := range keys {
		date, err := time.Parse("20060102", k)
		if err != nil {
			return nil, core.WrapError(core.ErrParseFailed,
				fmt.Errorf("bad date key %q", k))
		}
		maxT := param.MaxTemp[k]
		minT := param.MinTemp[k]
		if maxT <= ingest.SentinelFloor || minT <= ingest.SentinelFloor {
			continue
		}
		rec := core.TemperatureRecord{
			Date:     date,
			MaxTempC: maxT,
			MinTempC: minT,
		}
		if c.withHumidity {
			rec.HumidityPct = param.Humidity[k]
			rec.ThermalIndex = ingest.ThermalIndex(maxT, rec.HumidityPct)
		}
		records = append(records, rec)
	}
	return records, nil
}
