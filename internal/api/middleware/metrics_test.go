package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamhub/internal/api/middleware"
)

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(metrics.Handler)
	r.Get("/teams/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, slug := range []string{"acme", "globex"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teams/"+slug, nil))
	}

	expected := `
# HELP teamhub_api_http_requests_total Count of processed HTTP requests
# TYPE teamhub_api_http_requests_total counter
teamhub_api_http_requests_total{method="GET",route="/teams/{slug}",status="404"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "teamhub_api_http_requests_total"))
	count, err := testutil.GatherAndCount(reg, "teamhub_api_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_DefaultStatusIsOK(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(metrics.Handler)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	expected := `
# HELP teamhub_api_http_requests_total Count of processed HTTP requests
# TYPE teamhub_api_http_requests_total counter
teamhub_api_http_requests_total{method="GET",route="/health",status="200"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "teamhub_api_http_requests_total"))
}
