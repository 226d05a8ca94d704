package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics body: %v", err)
	}
	return string(body)
}

func TestHandlerExposesRecordedSeries(t *testing.T) {
	RecordReconciliation("created")
	RecordResolution("synthetic")
	ObserveBackendRequest("get_daily_log", 0, 10*time.Millisecond)
	ObserveBackendRequest("get_daily_log", 404, 5*time.Millisecond)
	SetCatalogSize("alcohol", 12)

	out := scrape(t)
	for _, want := range []string{
		`kcal_sync_ledger_reconciliations_total{outcome="created"}`,
		`kcal_sync_resolver_resolutions_total{path="synthetic"}`,
		`kcal_sync_backend_requests_total{op="get_daily_log",status="error"}`,
		`kcal_sync_backend_requests_total{op="get_daily_log",status="404"}`,
		`kcal_sync_catalog_products{catalog="alcohol"} 12`,
		`kcal_sync_backend_request_duration_seconds_count{op="get_daily_log"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in metrics output:\n%s", want, out)
		}
	}
}
