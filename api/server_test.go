package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"weathernow/collector"
	"weathernow/geolocate"
	"weathernow/models"
	"weathernow/providers/openweathermap"
	"weathernow/summary"
)

const (
	currentBody = `{"name":"London","sys":{"country":"GB"},
		"main":{"temp":12.4,"feels_like":10.1,"humidity":81},
		"wind":{"speed":4.6},
		"weather":[{"description":"light rain","icon":"10d"}]}`
	forecastBody = `{"city":{"name":"London","country":"GB","timezone":0},"list":[
		{"dt":1709294400,"main":{"temp_min":4.2,"temp_max":9.6},"weather":[{"description":"clouds","icon":"03d"}]},
		{"dt":1709380800,"main":{"temp_min":3.1,"temp_max":8.8},"weather":[{"description":"rain","icon":"10d"}]}
	]}`
)

type upstream struct {
	*httptest.Server
	mu    sync.Mutex
	units []string
}

func (u *upstream) Units() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.units...)
}

func newUpstream(t *testing.T) *upstream {
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		u.mu.Lock()
		u.units = append(u.units, q.Get("units"))
		u.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Get("appid") != "test-key":
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"cod":401,"message":"Invalid API key."}`)
		case q.Get("q") == "Atlantis":
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"cod":"404","message":"city not found"}`)
		case r.URL.Path == "/weather":
			io.WriteString(w, currentBody)
		case r.URL.Path == "/forecast":
			io.WriteString(w, forecastBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(u.Close)
	return u
}

func newTestServer(t *testing.T, apiKey string, resolver geolocate.Resolver) (*Server, *upstream) {
	up := newUpstream(t)
	logger := zaptest.NewLogger(t)
	gw := openweathermap.NewGateway(apiKey, up.URL, 5*time.Second, logger)
	c := collector.NewCollector(gw, resolver, models.Metric, summary.DefaultOptions(), logger)
	return NewServer(c, NewReportStore(), 0, logger), up
}

func do(t *testing.T, s *Server, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

type errorBody struct {
	Error   bool   `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func decodeError(t *testing.T, data []byte) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(data, &body))
	assert.True(t, body.Error)
	return body
}

func TestHealthCheck(t *testing.T) {
	s, _ := newTestServer(t, "test-key", nil)

	resp, data := do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"status":"ok"`)
}

func TestGetWeather(t *testing.T) {
	s, up := newTestServer(t, "test-key", nil)

	resp, data := do(t, s, http.MethodGet, "/api/weather?q=London&units=imperial", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var report models.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "London, GB", report.Current.Location)
	assert.Equal(t, 12, report.Current.Temperature)
	assert.Equal(t, models.Imperial, report.Units)
	require.Len(t, report.Forecast, 2)
	assert.Equal(t, 4, report.Forecast[0].Min)
	assert.Equal(t, 10, report.Forecast[0].Max)
	assert.Equal(t, []string{"imperial", "imperial"}, up.Units())

	resp, data = do(t, s, http.MethodGet, "/api/weather/locations", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Reports []models.Report `json:"reports"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(data, &listing))
	assert.Equal(t, 1, listing.Count)
	assert.Equal(t, "London", listing.Reports[0].Location.City)

	// the stateless lookup leaves the session alone
	assert.Nil(t, s.collector.Snapshot().Report)
}

func TestGetWeather_Errors(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		target  string
		status  int
		kind    string
		message string
	}{
		{
			name:    "unknown city",
			apiKey:  "test-key",
			target:  "/api/weather?q=Atlantis",
			status:  http.StatusNotFound,
			kind:    "not_found",
			message: "I couldn't find that city. Try a different spelling.",
		},
		{
			name:    "rejected key",
			apiKey:  "wrong",
			target:  "/api/weather?q=London",
			status:  http.StatusBadGateway,
			kind:    "unauthorized",
			message: "Invalid API key. Double-check the configured credential.",
		},
		{
			name:    "missing key",
			apiKey:  "",
			target:  "/api/weather?q=London",
			status:  http.StatusInternalServerError,
			kind:    "configuration",
			message: "Missing OpenWeatherMap API key.",
		},
		{
			name:    "empty city",
			apiKey:  "test-key",
			target:  "/api/weather?q=%20%20",
			status:  http.StatusBadRequest,
			kind:    "invalid_request",
			message: "Please enter a city name.",
		},
		{
			name:    "city and coordinates",
			apiKey:  "test-key",
			target:  "/api/weather?q=London&lat=1&lon=2",
			status:  http.StatusBadRequest,
			kind:    "invalid_request",
			message: "Search by city or by coordinates, not both.",
		},
		{
			name:   "lat without lon",
			apiKey: "test-key",
			target: "/api/weather?lat=51.5",
			status: http.StatusBadRequest,
			kind:   "request",
		},
		{
			name:   "bad lat",
			apiKey: "test-key",
			target: "/api/weather?lat=north&lon=2",
			status: http.StatusBadRequest,
			kind:   "request",
		},
		{
			name:   "unknown units",
			apiKey: "test-key",
			target: "/api/weather?q=London&units=kelvin",
			status: http.StatusBadRequest,
			kind:   "request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, tt.apiKey, nil)

			resp, data := do(t, s, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeError(t, data)
			assert.Equal(t, tt.kind, body.Kind)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			}
		})
	}
}

func TestGetWeatherHere(t *testing.T) {
	t.Run("static position", func(t *testing.T) {
		resolver := geolocate.Static{Coords: models.Coordinates{Latitude: 51.5, Longitude: -0.13}}
		s, _ := newTestServer(t, "test-key", resolver)

		resp, data := do(t, s, http.MethodGet, "/api/weather/here", "")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

		var report models.Report
		require.NoError(t, json.Unmarshal(data, &report))
		require.NotNil(t, report.Location.Coords)
		assert.Equal(t, 51.5, report.Location.Coords.Latitude)
	})

	t.Run("no resolver", func(t *testing.T) {
		s, _ := newTestServer(t, "test-key", nil)

		resp, data := do(t, s, http.MethodGet, "/api/weather/here", "")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "location_unavailable", decodeError(t, data).Kind)
	})
}

func TestSession(t *testing.T) {
	s, up := newTestServer(t, "test-key", nil)

	resp, data := do(t, s, http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap collector.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Nil(t, snap.Report)
	assert.Equal(t, models.Metric, snap.Units)

	resp, data = do(t, s, http.MethodPost, "/api/session/fetch", `{"city":" London "}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &snap))
	require.NotNil(t, snap.Report)
	assert.Equal(t, "London, GB", snap.Report.Current.Location)

	resp, data = do(t, s, http.MethodPut, "/api/session/units", `{"units":"imperial"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	snap = collector.Snapshot{}
	require.NoError(t, json.Unmarshal(data, &snap))
	require.NotNil(t, snap.Report)
	assert.Equal(t, models.Imperial, snap.Report.Units)
	assert.Equal(t, []string{"metric", "metric", "imperial", "imperial"}, up.Units())

	resp, data = do(t, s, http.MethodPut, "/api/session/units", `{"units":"kelvin"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "request", decodeError(t, data).Kind)
}

func TestSessionFetch_Failure(t *testing.T) {
	s, _ := newTestServer(t, "test-key", nil)

	resp, data := do(t, s, http.MethodPost, "/api/session/fetch", `{"city":"Atlantis"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decodeError(t, data).Kind)

	snap := s.collector.Snapshot()
	assert.Nil(t, snap.Report)
	assert.Equal(t, "not_found", snap.ErrorKind)

	resp, _ = do(t, s, http.MethodPost, "/api/session/fetch", `{"lat":51.5}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPost, "/api/session/fetch", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
