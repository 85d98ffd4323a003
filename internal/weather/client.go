package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"greencare-be/internal/logger"
	"greencare-be/internal/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

const (
	forecastPath  = "/v1/forecast"
	forecastDays  = 7
	dailyFields   = "precipitation_sum,temperature_2m_max"
	cacheCapacity = 256
)

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	Metrics  *metrics.Registry
}

// Client fetches daily forecasts from an Open-Meteo compatible API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *expirable.LRU[string, *Forecast]

	cacheHits *metrics.Counter
	failures  *metrics.Counter
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cacheHits:  &metrics.Counter{},
		failures:   &metrics.Counter{},
	}
	if cfg.CacheTTL > 0 {
		c.cache = expirable.NewLRU[string, *Forecast](cacheCapacity, nil, cfg.CacheTTL)
	}
	if cfg.Metrics != nil {
		c.cacheHits = cfg.Metrics.Counter("weather_cache_hits_total", "Forecasts served from cache.")
		c.failures = cfg.Metrics.Counter("weather_failures_total", "Forecast fetches that failed.")
	}
	return c
}

type openMeteoResponse struct {
	Daily *struct {
		Time             []string   `json:"time"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
		Temperature2mMax []*float64 `json:"temperature_2m_max"`
	} `json:"daily"`
}

// Forecast returns the 7-day forecast at loc. Any failure is reported as
// ErrForecastUnavailable.
func (c *Client) Forecast(ctx context.Context, loc Location) (*Forecast, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "weather"),
		zap.String("method", "Forecast"),
		zap.Float64("latitude", loc.Latitude),
		zap.Float64("longitude", loc.Longitude),
	)

	key := loc.cacheKey()
	if c.cache != nil {
		if f, ok := c.cache.Get(key); ok {
			c.cacheHits.Inc()
			return f, nil
		}
	}

	f, err := c.fetch(ctx, loc)
	if err != nil {
		c.failures.Inc()
		log.Warn("forecast unavailable", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrForecastUnavailable, err)
	}

	if c.cache != nil {
		c.cache.Add(key, f)
	}
	return f, nil
}

func (c *Client) fetch(ctx context.Context, loc Location) (*Forecast, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	q.Set("daily", dailyFields)
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(forecastDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+forecastPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	if body.Daily == nil {
		return nil, fmt.Errorf("response has no daily block")
	}

	return &Forecast{
		Dates:          body.Daily.Time,
		Precipitation:  body.Daily.PrecipitationSum,
		TemperatureMax: body.Daily.Temperature2mMax,
	}, nil
}
