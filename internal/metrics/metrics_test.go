package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()
	m.RecordGenerate("ok")
	m.RecordGenerate("ok")
	m.RecordProject(true, time.Second)
	m.RecordGallery(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generateCalls.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.projectsScored.WithLabelValues("error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordGenerate("ok")
	m.RecordProject(false, 0)
	m.RecordHTTP("x", "GET", 200, 0)
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	h := m.Middleware("score", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/score", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("score", "POST", "400")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "judge_http_requests_total"))
}
