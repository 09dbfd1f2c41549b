package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"septicestimator/testhelpers"
)

func TestHandleEstimator_FullPage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := serve(t, HandleEstimator, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"<!doctype html>",
		"Septic System Cost Estimator",
		`id="wizard"`,
		`data-step="work-type"`,
		"New Installation",
		"Repair",
		"Maintenance",
		`name="work_type" value="installation"`,
	)
	testhelpers.AssertHTMLNotContains(t, body, "septic-calculator-form", "Could not load calculator data")
}

func TestHandleEstimator_DeepLinkToDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?step=2&work_type=repair&region=tx", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(t, HandleEstimator, req)

	body := rec.Body.String()
	testhelpers.AssertHTMLNotContains(t, body, "<!doctype html>")
	testhelpers.AssertHTMLContains(t, body,
		`data-step="details"`,
		"Repair Details",
		`id="repair-questions"`,
		"Baffle Replacement",
		`<option value="TX" selected>Texas (TX)</option>`,
	)
	testhelpers.AssertHTMLNotContains(t, body, `id="installation-questions"`, `id="maintenance-questions"`)
}

func TestHandleEstimator_Unavailable(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := serveUnavailable(t, HandleEstimator, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"Error: Could not load calculator data.",
		`<fieldset disabled class="selection-cards">`,
	)
}

func TestHandleWizard_SelectWorkType(t *testing.T) {
	form := url.Values{"step": {"1"}, "action": {"select"}, "work_type": {"installation"}}
	rec := serve(t, HandleWizard, testhelpers.FormRequest("/wizard", form, true))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`data-step="details"`,
		"New Installation Profile",
		`id="installation-questions"`,
		`<option value="suburban" selected>Suburban</option>`,
		`<option value="average" selected>Average</option>`,
		`<option value="concrete" selected>Concrete</option>`,
		`<option value="1000" selected>1000 Gallons (Recommended)</option>`,
	)
}

func TestHandleWizard_NextWithoutWorkType(t *testing.T) {
	form := url.Values{"step": {"1"}, "action": {"next"}}
	rec := serve(t, HandleWizard, testhelpers.FormRequest("/wizard", form, true))

	_, toast := toastFromTrigger(t, rec)
	if toast["type"] != ToastWarning || toast["message"] != "Please choose the type of work first." {
		t.Errorf("toast = %v", toast)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`data-step="work-type"`,
		`id="work-type-error"`,
	)
}

func TestHandleWizard_BackKeepsValues(t *testing.T) {
	form := installationValues()
	form.Set("step", "3")
	form.Set("action", "back")
	rec := serve(t, HandleWizard, testhelpers.FormRequest("/wizard", form, true))

	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`data-step="details"`,
		`<option value="AZ" selected>Arizona (AZ)</option>`,
		`<option value="3" selected>3</option>`,
		`<option value="conventional-gravity" selected>Conventional Gravity System</option>`,
		`id="system-info-box"`,
		"Typical base cost: $7,000 - $14,500",
	)
}

func TestHandleWizard_Reset(t *testing.T) {
	form := installationValues()
	form.Set("step", "3")
	form.Set("action", "reset")
	rec := serve(t, HandleWizard, testhelpers.FormRequest("/wizard", form, true))

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, `data-step="work-type"`)
	testhelpers.AssertHTMLNotContains(t, body, `class="selection-card selected"`)
}

func TestHandleWizard_NextFromDetailsPrices(t *testing.T) {
	form := installationValues()
	form.Set("action", "next")
	rec := serve(t, HandleWizard, testhelpers.FormRequest("/wizard", form, true))

	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`data-step="results"`,
		"$7,000 - $14,500",
	)
}

func TestHandleEstimate_Installation(t *testing.T) {
	rec := serve(t, HandleEstimate, testhelpers.FormRequest("/estimate", installationValues(), true))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		`data-step="results"`,
		"Estimate for a New Conventional Gravity System",
		`<p id="results-range" class="results-range">$7,000 - $14,500</p>`,
		"Permits &amp; Site Evaluation",
		"Drainfield (3 bedrooms)",
		"Estimated Total",
		"$14,500",
		`action="/estimate/pdf"`,
		`action="/estimate/xlsx"`,
		`<input type="hidden" name="system_type" value="conventional-gravity">`,
		"Disclaimer: This is a budget estimate",
	)
	if strings.Count(body, `class="breakdown-item"`) != 4 {
		t.Errorf("expected 4 breakdown rows, got %d", strings.Count(body, `class="breakdown-item"`))
	}
}

func TestHandleEstimate_HiddenFieldsDropped(t *testing.T) {
	form := installationValues()
	form.Set("repair_item", "baffle")
	form.Set("maint_tank_size", "2000")
	rec := serve(t, HandleEstimate, testhelpers.FormRequest("/estimate", form, true))

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "$7,000 - $14,500")
	testhelpers.AssertHTMLNotContains(t, body,
		`name="repair_item"`,
		`name="maint_tank_size" value="2000"`,
	)
}

func TestHandleEstimate_ValidationErrors(t *testing.T) {
	form := url.Values{"step": {"2"}, "work_type": {"installation"}, "region": {"AZ"}}

	t.Run("htmx", func(t *testing.T) {
		rec := serve(t, HandleEstimate, testhelpers.FormRequest("/estimate", form, true))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		_, toast := toastFromTrigger(t, rec)
		if toast["type"] != ToastWarning || toast["message"] != "Please choose the number of bedrooms." {
			t.Errorf("toast = %v", toast)
		}
		testhelpers.AssertHTMLContains(t, rec.Body.String(),
			`data-step="details"`,
			`id="bedrooms-error"`,
			`id="soil-type-error"`,
			"Please fill out all site and system fields.",
		)
	})

	t.Run("full page", func(t *testing.T) {
		rec := serve(t, HandleEstimate, testhelpers.FormRequest("/estimate", form, false))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		testhelpers.AssertHTMLContains(t, rec.Body.String(), "<!doctype html>", `class="form-group has-error"`)
	})
}

func TestHandleEstimate_MissingLocation(t *testing.T) {
	form := url.Values{"step": {"2"}, "work_type": {"repair"}, "repair_item": {"baffle"}}
	rec := serve(t, HandleEstimate, testhelpers.FormRequest("/estimate", form, true))

	_, toast := toastFromTrigger(t, rec)
	if toast["message"] != "Please select a location." {
		t.Errorf("toast = %v", toast)
	}
}

func TestHandleEstimate_Incompatible(t *testing.T) {
	form := installationValues()
	form.Set("soil_type", "clay")
	rec := serve(t, HandleEstimate, testhelpers.FormRequest("/estimate", form, true))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		`id="results-incompatible"`,
		"System Not Suitable",
		"is not suitable for properties with",
		`data-system="chamber"`,
		"Mound System",
	)
	testhelpers.AssertHTMLNotContains(t, body, `id="results-breakdown"`, "$")
}

func TestHandleEstimate_NoWorkType(t *testing.T) {
	form := url.Values{"step": {"2"}, "region": {"AZ"}}
	rec := serve(t, HandleEstimate, testhelpers.FormRequest("/estimate", form, true))

	testhelpers.AssertHTMLContains(t, rec.Body.String(), `data-step="work-type"`)
	_, toast := toastFromTrigger(t, rec)
	if toast["message"] != "Please choose the type of work first." {
		t.Errorf("toast = %v", toast)
	}
}

func TestHandleEstimate_Unavailable(t *testing.T) {
	t.Run("htmx", func(t *testing.T) {
		rec := serveUnavailable(t, HandleEstimate, testhelpers.FormRequest("/estimate", installationValues(), true))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		if rec.Header().Get("HX-Reswap") != "none" {
			t.Error("expected HX-Reswap: none")
		}
	})

	t.Run("full page", func(t *testing.T) {
		rec := serveUnavailable(t, HandleEstimate, testhelpers.FormRequest("/estimate", installationValues(), false))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		testhelpers.AssertHTMLContains(t, rec.Body.String(), "Error: Could not load calculator data.", "disabled")
	})
}

func TestHandleSystemOptions(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/estimator/systems?soil_type=high-water-table&system_type=conventional-gravity", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(t, HandleSystemOptions, req)

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		`<option value="" selected>Select system...</option>`,
		`<option value="mound">Mound System</option>`,
		`<option value="aerobic">Aerobic Treatment Unit</option>`,
		`<option value="sand-filter">Sand Filter System</option>`,
		`id="system-info-box" hx-swap-oob="true" class="system-info hidden"`,
	)
	testhelpers.AssertHTMLNotContains(t, body, "conventional-gravity", `value="chamber"`, `value="drip"`)
}

func TestHandleSystemOptions_KeepsCompatibleSelection(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/estimator/systems?soil_type=clay&system_type=mound", nil)
	rec := serve(t, HandleSystemOptions, req)

	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`<option value="mound" selected>Mound System</option>`,
		`data-system="mound"`,
	)
}

func TestHandleSystemInfo(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/estimator/systems/mound", nil)
	req.SetPathValue("key", "mound")
	rec := serve(t, HandleSystemInfo, req)

	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`id="system-info-box"`,
		`<h4 id="system-info-title">Mound System</h4>`,
		"Typical base cost: $",
	)
}

func TestHandleSystemInfo_Unknown(t *testing.T) {
	t.Run("plain request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/estimator/systems/lagoon", nil)
		req.SetPathValue("key", "lagoon")
		rec := serve(t, HandleSystemInfo, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("htmx clears the box", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/estimator/systems/none", nil)
		req.SetPathValue("key", "none")
		req.Header.Set("HX-Request", "true")
		rec := serve(t, HandleSystemInfo, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		testhelpers.AssertHTMLContains(t, rec.Body.String(), `class="system-info hidden"`)
	})
}

func TestHandleTankSizes(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		selected string
		marked   string
	}{
		{"small household", "bedrooms=2&occupants=1-2", "1000", "1000"},
		{"four bedrooms", "bedrooms=4", "1250", "1250"},
		{"six plus bedrooms", "bedrooms=6%2B", "1500", "1500"},
		{"many occupants", "bedrooms=2&occupants=7%2B", "1500", "1500"},
		{"explicit size kept", "bedrooms=2&tank_size=2000", "2000", "1000"},
		{"invalid size replaced", "bedrooms=2&tank_size=1100", "1000", "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/estimator/tank-sizes?"+tt.query, nil)
			rec := serve(t, HandleTankSizes, req)

			body := rec.Body.String()
			testhelpers.AssertHTMLContains(t, body,
				`<option value="`+tt.selected+`" selected>`,
				tt.marked+" Gallons (Recommended)",
			)
			if strings.Count(body, " selected>") != 1 {
				t.Errorf("expected exactly one selected option:\n%s", body)
			}
			if strings.Count(body, "(Recommended)") != 1 {
				t.Errorf("expected exactly one recommended option:\n%s", body)
			}
		})
	}
}

func TestHandleTankSizes_Unavailable(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/estimator/tank-sizes?bedrooms=3", nil)
	req.Header.Set("HX-Request", "true")
	rec := serveUnavailable(t, HandleTankSizes, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
