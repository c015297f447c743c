package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleForecast = `{"daily":{
	"time":["2026-10-16","2026-10-17"],
	"temperature_2m_max":[34.2,33.0],
	"temperature_2m_min":[21.5,20.9],
	"precipitation_sum":[6.4,0],
	"precipitation_probability_max":[70,10]}}`

func TestOpenMeteoClient_Forecast(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "26.9124", r.URL.Query().Get("latitude"))
		assert.Equal(t, "Asia/Kolkata", r.URL.Query().Get("timezone"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleForecast))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL)
	f, err := c.Forecast(context.Background(), "Jaipur", 26.9124, 75.7873)
	require.NoError(t, err)
	require.Len(t, f.Days, 2)
	assert.Equal(t, 70, f.Days[0].RainChancePct)
	assert.InDelta(t, 34.2, f.Days[0].MaxTempC, 0.001)

	text := f.Render()
	assert.Contains(t, text, "*Jaipur का मौसम*")
	assert.Contains(t, text, "16/10")
	assert.Contains(t, text, "छिड़काव और सिंचाई टालें")

	// same point is served from cache under the new place name
	again, err := c.Forecast(context.Background(), "Jaipur City", 26.9124, 75.7873)
	require.NoError(t, err)
	assert.Equal(t, "Jaipur City", again.Place)
	assert.EqualValues(t, 1, hits.Load())
}

func TestOpenMeteoClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOpenMeteoClient(srv.URL).Forecast(context.Background(), "Sikar", 27.6, 75.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
