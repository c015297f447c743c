package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
)

// OpenMeteoClient calls the public Open-Meteo forecast API. No key is needed.
type OpenMeteoClient struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
	days    int
}

func NewOpenMeteoClient(baseURL string) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com"
	}
	return &OpenMeteoClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache.New(30*time.Minute, time.Hour),
		days:    3,
	}
}

type openMeteoResponse struct {
	Daily struct {
		Time             []string  `json:"time"`
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
		PrecipitationPct []int     `json:"precipitation_probability_max"`
	} `json:"daily"`
}

func (c *OpenMeteoClient) Forecast(ctx context.Context, place string, lat, lon float64) (*Forecast, error) {
	cacheKey := fmt.Sprintf("%.2f:%.2f", lat, lon)
	if val, ok := c.cache.Get(cacheKey); ok {
		f := *val.(*Forecast)
		f.Place = place
		return &f, nil
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,precipitation_probability_max")
	q.Set("timezone", "Asia/Kolkata")
	q.Set("forecast_days", fmt.Sprint(c.days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open-meteo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("open-meteo status %d: %s", resp.StatusCode, string(body))
	}

	var raw openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode open-meteo response: %w", err)
	}

	f := &Forecast{Place: place}
	d := raw.Daily
	for i, day := range d.Time {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		out := Day{Date: date}
		if i < len(d.TemperatureMax) {
			out.MaxTempC = d.TemperatureMax[i]
		}
		if i < len(d.TemperatureMin) {
			out.MinTempC = d.TemperatureMin[i]
		}
		if i < len(d.PrecipitationSum) {
			out.RainMM = d.PrecipitationSum[i]
		}
		if i < len(d.PrecipitationPct) {
			out.RainChancePct = d.PrecipitationPct[i]
		}
		f.Days = append(f.Days, out)
	}
	if len(f.Days) == 0 {
		return nil, fmt.Errorf("open-meteo returned no daily forecast")
	}

	c.cache.Set(cacheKey, f, cache.DefaultExpiration)
	cp := *f
	return &cp, nil
}
