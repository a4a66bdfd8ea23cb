package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-forecast-router/internal/cache"
	"github.com/i474232898/weather-forecast-router/internal/testutils"
	"github.com/i474232898/weather-forecast-router/internal/weather"
)

type mockForecaster struct {
	mock.Mock
}

func (m *mockForecaster) GetForecast(ctx context.Context, loc weather.LocationInfo, date string) (weather.ForecastResult, error) {
	args := m.Called(ctx, loc, date)
	return args.Get(0).(weather.ForecastResult), args.Error(1)
}

var dayStart = time.Date(2025, 6, 3, 0, 0, 0, 0, time.FixedZone("CST", 8*3600))

func newApp(f Forecaster, stats StatsProvider) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, f, stats, nil)
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

// TestForecastQueryValidation verifies that malformed queries never reach
// the router.
func TestForecastQueryValidation(t *testing.T) {
	f := &mockForecaster{}
	app := newApp(f, nil)

	for _, target := range []string{
		"/api/v1/forecast?lng=120.2&date=2025-06-03",
		"/api/v1/forecast?lat=30.3&date=2025-06-03",
		"/api/v1/forecast?lng=120.2&lat=30.3",
		"/api/v1/forecast?lng=200&lat=30.3&date=2025-06-03",
		"/api/v1/forecast?lng=abc&lat=30.3&date=2025-06-03",
		"/api/v1/forecast?lng=120.2&lat=30.3&date=03/06/2025",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
	f.AssertNotCalled(t, "GetForecast", mock.Anything, mock.Anything, mock.Anything)
}

func TestForecastSuccess(t *testing.T) {
	f := &mockForecaster{}
	loc := weather.LocationInfo{Name: "杭州", Longitude: 120.2, Latitude: 30.3, AdminCode: "330100"}
	f.On("GetForecast", mock.Anything, loc, "2025-06-03").
		Return(testutils.Result(weather.SourceHourlyAPI, dayStart, weather.ConfidenceHourly), nil)
	app := newApp(f, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/forecast?name=%E6%9D%AD%E5%B7%9E&lng=120.2&lat=30.3&adcode=330100&date=2025-06-03", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body := decode(t, resp)
	assert.Equal(t, "HOURLY_API", body["source"])
	assert.Equal(t, 0.95, body["confidenceScore"])
	assert.Equal(t, "2025-06-03", body["date"])
	assert.Len(t, body["hourlyPoints"], weather.HoursPerDay)

	summary, ok := body["summary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 20.0, summary["tempAvgC"])
	assert.Equal(t, "clear", summary["condition"])
	f.AssertExpectations(t)
}

func TestRequestIDIsPropagated(t *testing.T) {
	f := &mockForecaster{}
	f.On("GetForecast", mock.Anything, mock.Anything, mock.Anything).
		Return(testutils.Result(weather.SourceSimulation, dayStart, weather.ConfidenceSimulation), nil)
	app := newApp(f, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast?lng=1&lat=2&date=2025-06-30", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestForecastErrorStatuses(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&weather.Error{Kind: weather.KindInvalidInput}, http.StatusBadRequest},
		{&weather.Error{Kind: weather.KindDateOutOfRange}, http.StatusBadRequest},
		{&weather.Error{Kind: weather.KindLocationNotFound}, http.StatusNotFound},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		f := &mockForecaster{}
		f.On("GetForecast", mock.Anything, mock.Anything, mock.Anything).Return(weather.ForecastResult{}, tt.err)
		app := newApp(f, nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/forecast?lng=1&lat=2&date=2025-06-03", nil))
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.StatusCode, tt.err.Error())

		body := decode(t, resp)
		assert.Equal(t, true, body["error"])
	}
}

func TestCacheStats(t *testing.T) {
	mem := cache.NewMemory(10)
	mem.Set("k", weather.ForecastResult{}, time.Minute)
	mem.Get("k")
	app := newApp(&mockForecaster{}, mem)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, 1.0, body["entries"])
	assert.Equal(t, 1.0, body["hits"])

	app = newApp(&mockForecaster{}, nil)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/health", Health(time.Now()))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, resp)["status"])
}
