package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// TestHandler_ServesRegisteredMetrics はHandlerが登録済みのメトリクスを返すことを検証する。
func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordGenerationSuccess()
	c.RecordSkillMapOperation("create")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	for _, name := range []string{
		"skillmap_generation_success_total",
		"skillmap_persistence_operations_total",
	} {
		if !strings.Contains(bodyStr, name) {
			t.Errorf("response should contain %s metric", name)
		}
	}
}
