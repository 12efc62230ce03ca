package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.EntrySubmitted()
	m.ValidationFailed("PapaCountInvalid")
	m.ValidationFailed("PapaCountInvalid")
	m.DuplicatesCollapsed(2)
	m.DuplicatesCollapsed(0)
	m.SnapshotExported(nil)
	m.SnapshotExported(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntriesSubmitted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("PapaCountInvalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PapaDuplicatesCollapsed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotExports.WithLabelValues("error")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.EntrySubmitted()
		m.ValidationFailed("x")
		m.DuplicatesCollapsed(1)
		m.PublishFailed()
		m.SnapshotExported(nil)
		m.ObserveRequest("GET", "/entries", "200", 0.1)
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).EntrySubmitted()

	healthy := NewHandler(reg, func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "partybets_entries_submitted_total 1")

	unhealthy := NewHandler(reg, func(context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	unhealthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}
