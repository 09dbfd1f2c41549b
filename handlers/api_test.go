package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"septicestimator/services"
	"septicestimator/testhelpers"
)

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleAPIEstimate_JSON(t *testing.T) {
	body := `{
		"work_type": "installation",
		"region": "AZ",
		"bedrooms": 3,
		"soil_type": "good",
		"system_type": "conventional-gravity",
		"tank_size": 1000
	}`
	rec := serve(t, HandleAPIEstimate, jsonRequest(body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res services.EstimateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if res.Low != 7000 || res.High != 14500 {
		t.Errorf("total = %v - %v, want 7000 - 14500", res.Low, res.High)
	}
	if res.Reference == "" {
		t.Error("expected a reference id")
	}
	if len(res.Lines) != 4 {
		t.Errorf("lines = %d, want 4", len(res.Lines))
	}
}

func TestHandleAPIEstimate_JSONArrayItems(t *testing.T) {
	body := `{"work_type": "maintenance", "region": "AZ", "maintenance_item": ["pumping", "inspection"], "maint_tank_size": 1500}`
	rec := serve(t, HandleAPIEstimate, jsonRequest(body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res services.EstimateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := []string{"pumping", "inspection"}
	if diff := cmp.Diff(want, res.Selection.MaintenanceItems); diff != "" {
		t.Errorf("maintenance items mismatch (-want +got):\n%s", diff)
	}
	if res.Selection.MaintTankSize != 1500 {
		t.Errorf("maint tank size = %d", res.Selection.MaintTankSize)
	}
}

func TestHandleAPIEstimate_Form(t *testing.T) {
	form := url.Values{"work_type": {"repair"}, "zip_code": {"85001"}, "repair_item": {"baffle,pump"}}
	rec := serve(t, HandleAPIEstimate, testhelpers.FormRequest("/api/estimate", form, false))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res services.EstimateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if res.Region.Code != "AZ" {
		t.Errorf("region = %q, want AZ from the zip code", res.Region.Code)
	}
	if res.Low != 1100 || res.High != 2900 {
		t.Errorf("total = %v - %v, want 1100 - 2900", res.Low, res.High)
	}
}

func TestHandleAPIEstimate_ValidationErrors(t *testing.T) {
	rec := serve(t, HandleAPIEstimate, jsonRequest(`{"work_type": "repair"}`))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var got struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := map[string]string{
		"region":      "Please select a location.",
		"repair_item": "Please select at least one repair item.",
	}
	if diff := cmp.Diff(want, got.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleAPIEstimate_Incompatible(t *testing.T) {
	body := `{"work_type": "installation", "region": "AZ", "bedrooms": "3", "soil_type": "high-water-table", "system_type": "drip"}`
	rec := serve(t, HandleAPIEstimate, jsonRequest(body))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var got struct {
		Error       string                `json:"error"`
		Suggestions []services.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !strings.Contains(got.Error, "Drip Distribution System") {
		t.Errorf("error = %q", got.Error)
	}
	keys := make([]string, 0, len(got.Suggestions))
	for _, s := range got.Suggestions {
		keys = append(keys, s.Key)
	}
	if diff := cmp.Diff([]string{"aerobic", "sand-filter", "mound"}, keys); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleAPIEstimate_BadJSON(t *testing.T) {
	rec := serve(t, HandleAPIEstimate, jsonRequest(`{"work_type":`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleAPIEstimate_Unavailable(t *testing.T) {
	rec := serveUnavailable(t, HandleAPIEstimate, jsonRequest(`{"work_type": "repair"}`))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
