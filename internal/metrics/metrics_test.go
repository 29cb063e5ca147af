package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCompileTotal(t *testing.T) {
	before := testutil.ToFloat64(CompileTotal.WithLabelValues("issue", OutcomeOK))
	CompileTotal.WithLabelValues("issue", OutcomeOK).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CompileTotal.WithLabelValues("issue", OutcomeOK)))
}

func TestObserveSearch(t *testing.T) {
	ObserveSearch("pack", time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(SearchDuration))
}
