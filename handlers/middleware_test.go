package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"septicestimator/services"
	"septicestimator/testhelpers"
)

func TestGetCostTables_FromContext(t *testing.T) {
	tables := loadedTables(t)
	req := withCostData(httptest.NewRequest(http.MethodGet, "/", nil), CostData{Tables: tables})

	got, err := GetCostTables(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != tables {
		t.Error("expected the tables stored in context")
	}
}

func TestGetCostTables_NotInContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := GetCostTables(req); !errors.Is(err, services.ErrDataUnavailable) {
		t.Errorf("err = %v, want ErrDataUnavailable", err)
	}
}

func TestGetCostTables_LoadFailed(t *testing.T) {
	loadErr := errors.New("invalid cost data: systems: no systems")
	req := withCostData(httptest.NewRequest(http.MethodGet, "/", nil), CostData{Err: loadErr})

	_, err := GetCostTables(req)
	if !errors.Is(err, services.ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
	if err.Error() != "calculator data is unavailable: invalid cost data: systems: no systems" {
		t.Errorf("err = %q", err.Error())
	}
}

func TestCostDataMiddleware_StoresData(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tables := loadedTables(t)
	middleware := CostDataMiddleware(CostData{Tables: tables})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	// e.Next() with no further handler is a no-op
	_ = middleware(e)

	got, err := GetCostTables(e.Request)
	if err != nil {
		t.Fatalf("unexpected error after middleware: %v", err)
	}
	if got != tables {
		t.Error("expected middleware to store the tables in the request context")
	}
}

func TestIsHTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTMX(req) {
		t.Error("plain request reported as HTMX")
	}
	req.Header.Set("HX-Request", "true")
	if !isHTMX(req) {
		t.Error("HX-Request: true not reported as HTMX")
	}
}
