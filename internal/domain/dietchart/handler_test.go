package dietchart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ahara/ahara/internal/assessment"
	"github.com/ahara/ahara/pkg/pagination"
)

func newTestHandler() (*Handler, *fixture, *echo.Echo) {
	f := newFixture()
	h := NewHandler(f.svc)
	h.now = func() time.Time { return day("2024-03-16") }
	return h, f, echo.New()
}

func idContext(e *echo.Echo, method, body string, id uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	return c, rec
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

func TestHandler_GenerateChart(t *testing.T) {
	h, f, e := newTestHandler()
	f.withPrakriti(assessment.Kapha)

	c, rec := idContext(e, http.MethodPost, `{"name":"Spring reset","type":"detox"}`, f.patientID)
	if err := h.GenerateChart(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["category"] != "kapha" || body["type"] != "detox" {
		t.Errorf("unexpected chart: %v", body)
	}
	if body["days_remaining"] != float64(15) || body["progress_percentage"] != float64(50) {
		t.Errorf("unexpected derived fields: %v / %v", body["days_remaining"], body["progress_percentage"])
	}
}

func TestHandler_GenerateChart_Errors(t *testing.T) {
	h, f, e := newTestHandler()
	tests := []struct {
		name string
		id   uuid.UUID
		body string
		code int
	}{
		{"unknown patient", uuid.New(), `{"name":"x"}`, http.StatusNotFound},
		{"invalid body", f.patientID, `{"name":`, http.StatusBadRequest},
		{"invalid type", f.patientID, `{"name":"x","type":"cleanse"}`, http.StatusBadRequest},
		{"invalid activity", f.patientID, `{"name":"x","activity_factor":-1}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := idContext(e, http.MethodPost, tt.body, tt.id)
			if code := statusOf(t, h.GenerateChart(c)); code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, code)
			}
		})
	}
}

func TestHandler_UpdateAndGetChart(t *testing.T) {
	h, f, e := newTestHandler()
	d, _ := f.svc.Generate(context.Background(), f.patientID, GenerateRequest{Name: "Plan", Category: "pitta"})

	c, rec := idContext(e, http.MethodPut, `{"status":"active","notes":"started well"}`, d.ID)
	if err := h.UpdateChart(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, rec = idContext(e, http.MethodGet, "", d.ID)
	if err := h.GetChart(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got DietChart
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != Active || got.Notes == nil || *got.Notes != "started well" || got.Name != "Plan" {
		t.Errorf("unexpected chart: %+v", got)
	}
}

func TestHandler_ListAndDelete(t *testing.T) {
	h, f, e := newTestHandler()
	d, _ := f.svc.Generate(context.Background(), f.patientID, GenerateRequest{Name: "One", Category: "vata"})
	f.svc.Generate(context.Background(), f.patientID, GenerateRequest{Name: "Two", Category: "vata"})

	c, rec := idContext(e, http.MethodGet, "", f.patientID)
	if err := h.ListCharts(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp pagination.Response[DietChart]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || resp.Data[0].Name != "Two" {
		t.Errorf("expected newest first, got total=%d", resp.Total)
	}

	c, rec = idContext(e, http.MethodDelete, "", d.ID)
	if err := h.DeleteChart(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	c, _ = idContext(e, http.MethodGet, "", d.ID)
	if code := statusOf(t, h.GetChart(c)); code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}
