package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/party-bets/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(RequestLogger(zap.New(core), m))
	r.Get("/entries/{entryID}", func(w http.ResponseWriter, r *http.Request) {
		LoggerFromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/entries/7", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/entries/{entryID}", fields["route"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.NotEmpty(t, fields["request_id"])

	inner := logs.FilterMessage("inside handler").All()
	require.Len(t, inner, 1)
	assert.Equal(t, fields["request_id"], inner[0].ContextMap()["request_id"])

	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Len(t, logs.FilterMessage("request failed").All(), 1)
}

func TestLoggerFromContext_Default(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.NotNil(t, LoggerFromContext(req.Context()))
}
