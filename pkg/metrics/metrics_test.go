package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAuthOperation(t *testing.T) {
	before := testutil.ToFloat64(AuthOperationsTotal.WithLabelValues("login", "rejected"))
	RecordAuthOperation("login", "rejected")
	after := testutil.ToFloat64(AuthOperationsTotal.WithLabelValues("login", "rejected"))

	assert.Equal(t, before+1, after)
}

func TestRecordStoreQuery_StatusLabel(t *testing.T) {
	ok := StoreQueriesTotal.WithLabelValues("memory", "get_user", OutcomeSuccess)
	failed := StoreQueriesTotal.WithLabelValues("memory", "get_user", OutcomeError)
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordStoreQuery("memory", "get_user", nil, time.Millisecond)
	RecordStoreQuery("memory", "get_user", errors.New("down"), time.Millisecond)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestRecordHTTPMetrics(t *testing.T) {
	c := HttpRequestsTotal.WithLabelValues("auth", "GET", "/me", "401")
	before := testutil.ToFloat64(c)

	RecordHTTPMetrics("auth", "GET", "/me", 401, 5*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
