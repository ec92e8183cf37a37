// internal/observability/metrics_test.go
package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordMealLogged(t *testing.T) {
	before := testutil.ToFloat64(mealsLoggedCounter)
	ts := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)

	RecordMealLogged(ts)
	require.Equal(t, before+1, testutil.ToFloat64(mealsLoggedCounter))
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(lastMealGauge))

	RecordMealLogged(time.Time{})
	require.Equal(t, before+2, testutil.ToFloat64(mealsLoggedCounter))
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(lastMealGauge))
}

func TestRecordLookupAndQuery(t *testing.T) {
	lookups := lookupCounter.WithLabelValues("not_found")
	before := testutil.ToFloat64(lookups)
	RecordLookup("not_found")
	require.Equal(t, before+1, testutil.ToFloat64(lookups))

	queries := queryCounter.WithLabelValues("average", OutcomeOK)
	before = testutil.ToFloat64(queries)
	RecordQuery("average", OutcomeOK)
	RecordQuery("average", OutcomeOK)
	require.Equal(t, before+2, testutil.ToFloat64(queries))
}
