package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/decimal-knapsack/internal/api"
	"github.com/eugenenazirov/decimal-knapsack/internal/knapsack"
	"github.com/eugenenazirov/decimal-knapsack/internal/storage"
)

func newRouter(t *testing.T, store storage.Storage) http.Handler {
	t.Helper()

	solver := knapsack.New()
	handler := api.NewHandler(solver, store)
	logger := zaptest.NewLogger(t)
	return api.NewRouter(handler, logger, api.WithRateLimit(0, 0))
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

type solveResult struct {
	Step       decimal.Decimal `json:"step"`
	TotalScore decimal.Decimal `json:"totalScore"`
	TotalSize  decimal.Decimal `json:"totalSize"`
	Items      []struct {
		Name string `json:"name"`
	} `json:"items"`
}

func runFlow(t *testing.T, handler http.Handler) {
	t.Helper()
	jsonHeaders := map[string]string{"Content-Type": "application/json"}

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	inventory := map[string]any{
		"capacity": "10",
		"items": []map[string]any{
			{"name": "A", "size": "5", "price": "10"},
			{"name": "B", "size": "4", "price": "40"},
			{"name": "C", "size": "6", "price": "30"},
		},
	}
	payload, _ := json.Marshal(inventory)
	rec = performRequest(t, handler, http.MethodPut, "/api/inventory", payload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from inventory update, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(t, handler, http.MethodPost, "/api/solve", nil, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from solve, got %d: %s", rec.Code, rec.Body.String())
	}

	var response solveResult
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !response.TotalScore.Equal(decimal.NewFromInt(70)) || !response.Step.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected solution: score %s step %s", response.TotalScore, response.Step)
	}
	if len(response.Items) != 2 || response.Items[0].Name != "B" || response.Items[1].Name != "C" {
		t.Fatalf("unexpected items %+v", response.Items)
	}

	rec = performRequest(t, handler, http.MethodPost, "/api/solve", []byte(`{"capacity": "3.9"}`), jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from solve with capacity override, got %d", rec.Code)
	}
	response = solveResult{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !response.TotalScore.IsZero() || len(response.Items) != 0 {
		t.Fatalf("expected empty selection below the smallest size, got %+v", response)
	}

	rec = performRequest(t, handler, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `knapsack_solves_total{outcome="ok"} 2`) {
		t.Fatalf("expected two successful solves in metrics:\n%s", rec.Body.String())
	}
}

func TestIntegrationFlowMemory(t *testing.T) {
	runFlow(t, newRouter(t, storage.NewMemoryStorage()))
}

func TestIntegrationFlowSQLite(t *testing.T) {
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "knapsack.db"))
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	runFlow(t, newRouter(t, store))
}
