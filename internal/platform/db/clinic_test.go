package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestResolveClinicID(t *testing.T) {
	tests := []struct {
		name   string
		claim  string
		header string
		want   string
	}{
		{"default", "", "", "default"},
		{"header", "", "ayur_pune", "ayur_pune"},
		{"claim wins over header", "from_token", "ayur_pune", "from_token"},
		{"empty claim falls through", "", "ayur_pune", "ayur_pune"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(ClinicHeader, tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())
			c.Set("jwt_clinic_id", tt.claim)

			if got := resolveClinicID(c, "default"); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestValidClinicID(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"default", true},
		{"ayur_pune_2", true},
		{"a", true},
		{"", false},
		{"Pune", false},
		{"a-b", false},
		{"a.b", false},
		{"a b", false},
		{"x; DROP SCHEMA public", false},
		{"abcdefghijabcdefghijabcdefghijabcdefghijabcdefghij", false},
	}
	for _, tt := range tests {
		if got := ValidClinicID(tt.input); got != tt.valid {
			t.Errorf("ValidClinicID(%q) = %v, want %v", tt.input, got, tt.valid)
		}
	}
}

func TestSchemaName(t *testing.T) {
	if got := SchemaName("default"); got != "clinic_default" {
		t.Errorf("expected clinic_default, got %s", got)
	}
}

func TestClinicFromContext(t *testing.T) {
	ctx := WithClinic(context.Background(), "ayur_pune")
	if got := ClinicFromContext(ctx); got != "ayur_pune" {
		t.Errorf("expected ayur_pune, got %s", got)
	}
	if got := ClinicFromContext(context.Background()); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	ctx = context.WithValue(context.Background(), ClinicIDKey, 42)
	if got := ClinicFromContext(ctx); got != "" {
		t.Errorf("expected empty string for wrong type, got %q", got)
	}
}

func TestConnFromContext_Nil(t *testing.T) {
	if conn := ConnFromContext(context.Background()); conn != nil {
		t.Error("expected nil conn from empty context")
	}
	ctx := context.WithValue(context.Background(), DBConnKey, "not-a-conn")
	if conn := ConnFromContext(ctx); conn != nil {
		t.Error("expected nil when context value is wrong type")
	}
}

func TestCreateClinicSchema_InvalidID(t *testing.T) {
	for _, id := range []string{"clinic-with-dash", "clinic.dot", "cl inic", "drop;table", ""} {
		if err := CreateClinicSchema(context.Background(), nil, id, nil); err == nil {
			t.Errorf("expected error for invalid clinic ID %q", id)
		}
	}
}

func TestMigratorUp_RejectsForeignSchema(t *testing.T) {
	m := newTestMigrator(nil)
	if _, err := m.Up(context.Background(), "public"); err == nil {
		t.Error("expected error for non-clinic schema")
	}
}

func TestFork_OutsideRequest(t *testing.T) {
	ctx := WithClinic(context.Background(), "ayur_pune")
	forked, release, err := Fork(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()
	if forked != ctx {
		t.Error("expected context to be returned unchanged without a pool")
	}
}
