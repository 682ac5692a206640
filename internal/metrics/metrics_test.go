package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordProvider(t *testing.T) {
	before := testutil.ToFloat64(providerRequests.WithLabelValues("metrics-test", "error"))

	RecordProvider("metrics-test", 20*time.Millisecond, errors.New("boom"))
	RecordProvider("metrics-test", 20*time.Millisecond, nil)

	assert.Equal(t, before+1, testutil.ToFloat64(providerRequests.WithLabelValues("metrics-test", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(providerRequests.WithLabelValues("metrics-test", "ok")))
}

func TestRecordAnalysis(t *testing.T) {
	before := testutil.ToFloat64(anomalies.WithLabelValues("insufficient_data"))
	RecordAnalysis(false, true)
	assert.Equal(t, before+1, testutil.ToFloat64(anomalies.WithLabelValues("insufficient_data")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordHub("KUL", "ok", 2)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fareradar_interline_hub_runs_total")
	assert.Contains(t, rec.Body.String(), "fareradar_interline_offers_total")
}
