package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"septicestimator/costdata"
	"septicestimator/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// withCostData attaches a load result to req the way CostDataMiddleware does.
func withCostData(req *http.Request, data CostData) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), CostDataKey, data))
}

// serve runs handler against req with the seeded tables in context.
func serve(t *testing.T, handler func(*pocketbase.PocketBase) func(*core.RequestEvent) error, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	app, tables := testhelpers.NewSeededApp(t)
	return serveWith(t, app, handler, withCostData(req, CostData{Tables: tables}))
}

// serveUnavailable runs handler as if the cost data had failed to load.
func serveUnavailable(t *testing.T, handler func(*pocketbase.PocketBase) func(*core.RequestEvent) error, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	return serveWith(t, app, handler, withCostData(req, CostData{Err: errors.New("cost_documents: no rows")}))
}

func serveWith(t *testing.T, app *pocketbase.PocketBase, handler func(*pocketbase.PocketBase) func(*core.RequestEvent) error, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := handler(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

// installationValues is a complete installation submission for a region
// with a 1.0 multiplier, as posted by the details step.
func installationValues() url.Values {
	return url.Values{
		"step":          {"2"},
		"work_type":     {"installation"},
		"region":        {"AZ"},
		"area_type":     {"suburban"},
		"bedrooms":      {"3"},
		"water_usage":   {"average"},
		"soil_type":     {"good"},
		"system_type":   {"conventional-gravity"},
		"tank_size":     {"1000"},
		"tank_material": {"concrete"},
	}
}

func loadedTables(t *testing.T) *costdata.Tables {
	t.Helper()
	tables, err := costdata.Load("")
	if err != nil {
		t.Fatalf("failed to load embedded cost data: %v", err)
	}
	return tables
}
