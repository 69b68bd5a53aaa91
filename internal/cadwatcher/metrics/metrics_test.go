package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRun(t *testing.T) {
	before := testutil.ToFloat64(RunsTotal.WithLabelValues("success"))
	failedBefore := testutil.ToFloat64(RunsTotal.WithLabelValues("ToolNotFound"))

	RecordRun("", 2*time.Second)
	RecordRun("ToolNotFound", 0)

	if got := testutil.ToFloat64(RunsTotal.WithLabelValues("success")); got != before+1 {
		t.Errorf("Expected success count %v, got %v", before+1, got)
	}
	if got := testutil.ToFloat64(RunsTotal.WithLabelValues("ToolNotFound")); got != failedBefore+1 {
		t.Errorf("Expected ToolNotFound count %v, got %v", failedBefore+1, got)
	}
}
