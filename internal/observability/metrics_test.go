package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordAndServe(t *testing.T) {
	m := NewMetrics()
	m.Update("command")
	m.Update("command")
	m.Denied("monthly_limit")
	m.UsageRecorded()
	m.ObserveLLM("consult", time.Now(), nil)
	m.ObserveLLM("consult", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(m.UpdatesTotal.WithLabelValues("command")); got != 2 {
		t.Fatalf("updates_total{command} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("consult", "error")); got != 1 {
		t.Fatalf("llm_requests_total{consult,error} = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "legalbot_usage_recorded_total 1") {
		t.Fatalf("metrics output missing usage counter:\n%s", body)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Update("text")
	m.Denied("capability")
	m.UsageRecorded()
	m.ObserveLLM("draft", time.Now(), nil)
	m.Broadcast("sent")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("nil metrics handler status = %d, want 404", rec.Code)
	}
}
