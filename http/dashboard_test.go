package http

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"fatiguecast/dataset"
)

// newTestDefaultService uses the full behavioral schema. No model is
// loaded; the dashboard only needs the schema to render the form.
func newTestDefaultService(t *testing.T) *PredictorService {
	t.Helper()
	service, err := NewPredictorService(dataset.DefaultSchema(), filepath.Join(t.TempDir(), "model.json"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return service
}

func TestDashboardPage(t *testing.T) {
	SetPredictorService(newTestService(t))
	mux := http.NewServeMux()
	RegisterDashboardRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Decision Fatigue Predictor", `name="decisions_made"`, `name="sleep_hours"`, `name="task_switches"`} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard page missing %q", want)
		}
	}
}

func TestDashboardCategoricalFields(t *testing.T) {
	SetPredictorService(newTestDefaultService(t))
	mux := http.NewServeMux()
	RegisterDashboardRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<select name="time_of_day">`) {
		t.Fatalf("expected a select for time_of_day")
	}
	if !strings.Contains(body, `<option value="morning">Morning</option>`) {
		t.Fatalf("expected encoded categories as options")
	}
}

func TestAdviceFor(t *testing.T) {
	if adviceFor("take_break") == "" {
		t.Fatalf("expected advice for take_break")
	}
	if adviceFor("unknown") != "" {
		t.Fatalf("expected no advice for unknown class")
	}
}
