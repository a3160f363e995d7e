package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddlewareCountsByRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Post("/chat", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	chat4xx := RequestsTotal.WithLabelValues("/chat", http.MethodPost, "4xx")
	health2xx := RequestsTotal.WithLabelValues("/health", http.MethodGet, "2xx")
	beforeChat := testutil.ToFloat64(chat4xx)
	beforeHealth := testutil.ToFloat64(health2xx)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/chat", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/chat", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, beforeChat+2, testutil.ToFloat64(chat4xx))
	assert.Equal(t, beforeHealth+1, testutil.ToFloat64(health2xx))
}

func TestMetricsMiddlewareUnmatched(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	unmatched := RequestsTotal.WithLabelValues("unmatched", http.MethodGet, "4xx")
	before := testutil.ToFloat64(unmatched)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(unmatched))
}
