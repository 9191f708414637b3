package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(FetchesTotal.WithLabelValues(FetchNetwork))
	FetchesTotal.WithLabelValues(FetchNetwork).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(FetchesTotal.WithLabelValues(FetchNetwork)))

	DispatchesTotal.WithLabelValues("ACTION_GET_DATA_START").Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(DispatchesTotal.WithLabelValues("ACTION_GET_DATA_START")), 1.0)
}

func TestHandler(t *testing.T) {
	RecordsLoaded.Set(42)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "codash_records_loaded 42")
}
