package summary

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ahara/ahara/internal/domain/dietchart"
	"github.com/ahara/ahara/internal/domain/patient"
)

func TestHandler_GetSummary(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.patients[id] = &patient.Patient{ID: id, Name: "Asha Rao"}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store.charts[id] = &dietchart.DietChart{Name: "Plan", StartDate: start, EndDate: start.AddDate(0, 0, 30), DurationDays: 30}

	h := NewHandler(newTestService(t, store))
	h.now = func() time.Time { return start.AddDate(0, 0, 6) }
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	if err := h.GetSummary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body struct {
		Patient   patient.Patient        `json:"patient"`
		Prakriti  json.RawMessage        `json:"latest_prakriti"`
		DietChart map[string]interface{} `json:"latest_diet_chart"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Patient.Name != "Asha Rao" {
		t.Errorf("unexpected patient %q", body.Patient.Name)
	}
	if string(body.Prakriti) != "null" {
		t.Errorf("expected null prakriti, got %s", body.Prakriti)
	}
	if body.DietChart["days_remaining"] != float64(24) || body.DietChart["progress_percentage"] != float64(20) {
		t.Errorf("unexpected chart view: %v", body.DietChart)
	}
}

func TestHandler_GetSummary_NotFound(t *testing.T) {
	h := NewHandler(newTestService(t, newFakeStore()))
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	he, ok := h.GetSummary(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", he)
	}
}
