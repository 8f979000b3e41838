package metrics

import (
	"testing"
	"time"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRangeValidation(t *testing.T) {
	end := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	adjustedBefore := testutil.ToFloat64(rangeValidationsTotal.WithLabelValues("1h", ResultAdjusted))
	validBefore := testutil.ToFloat64(rangeValidationsTotal.WithLabelValues("1d", ResultValid))
	unknownBefore := testutil.ToFloat64(rangeValidationsTotal.WithLabelValues("unknown", ResultUnknownTimeframe))

	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	RecordRangeValidation("1H", timeframe.Validate(start, end, "1H"))
	RecordRangeValidation("1d", timeframe.Validate(start, end, "1d"))
	RecordRangeValidation("5h", timeframe.Validate(start, end, "5h"))

	assert.Equal(t, adjustedBefore+1, testutil.ToFloat64(rangeValidationsTotal.WithLabelValues("1h", ResultAdjusted)))
	assert.Equal(t, validBefore+1, testutil.ToFloat64(rangeValidationsTotal.WithLabelValues("1d", ResultValid)))
	assert.Equal(t, unknownBefore+1, testutil.ToFloat64(rangeValidationsTotal.WithLabelValues("unknown", ResultUnknownTimeframe)))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/timeframes", "200"))
	RecordHTTPRequest("GET", "/api/v1/timeframes", 200)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/timeframes", "200")))

	unmatchedBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	RecordHTTPRequest("GET", "", 404)
	assert.Equal(t, unmatchedBefore+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
