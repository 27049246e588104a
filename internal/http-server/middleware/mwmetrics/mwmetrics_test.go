package mwmetrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRecordsRoutePattern(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	router := chi.NewRouter()
	router.Use(m.Handler)
	router.Delete("/api/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"a", "b"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/bookings/"+id, nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	}

	count := testutil.ToFloat64(m.requestTotal.With(prometheus.Labels{
		"method": http.MethodDelete,
		"route":  "/api/bookings/{id}",
		"status": "204",
	}))
	assert.Equal(t, float64(2), count)
}

func TestHandlerUnmatchedRoute(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	router := chi.NewRouter()
	router.Use(m.Handler)
	router.Get("/known", func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	count := testutil.ToFloat64(m.requestTotal.With(prometheus.Labels{
		"method": http.MethodGet,
		"route":  "unmatched",
		"status": "404",
	}))
	assert.Equal(t, float64(1), count)
}
