package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/quakemap/internal/config"
)

func TestNewLogger_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", "country", "JPN")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "JPN", rec["country"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "text"}, &buf)

	logger.Debug("filter applied", "events", 3)
	assert.Contains(t, buf.String(), "msg=\"filter applied\"")
	assert.Contains(t, buf.String(), "events=3")
}

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.FilterRuns.WithLabelValues(OutcomeFiltered).Inc()
	m.DatasetEvents.Set(42)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilterRuns.WithLabelValues(OutcomeFiltered)))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.DatasetEvents))

	n, err := testutil.GatherAndCount(reg, "quakemap_filter_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func newTestServer(ready bool) *Server {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.DatasetCountries.Set(2)
	return NewServer(":0", reg, func() bool { return ready }, slog.Default())
}

func TestServer_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestServer_Readyz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newTestServer(false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quakemap_dataset_countries 2")
}
