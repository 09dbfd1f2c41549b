package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"septicestimator/costdata"
	"septicestimator/services"
	"septicestimator/templates"
)

// renderWizard writes the wizard panel for HTMX requests and the full page
// otherwise.
func renderWizard(e *core.RequestEvent, status int, data templates.WizardData) error {
	var component templ.Component
	if isHTMX(e.Request) {
		component = templates.WizardPanel(data)
	} else {
		component = templates.EstimatorPage(data)
	}
	e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	e.Response.WriteHeader(status)
	return component.Render(e.Request.Context(), e.Response)
}

// HandleEstimator returns a handler that renders the estimator page. The
// step and work type may be preset in the query string.
func HandleEstimator(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tables, err := GetCostTables(e.Request)
		if err != nil {
			app.Logger().Warn("estimator: rendering without cost data", "error", err)
		}
		query := e.Request.URL.Query()
		w := services.ParseWizard(query)
		if w.Step == services.StepResults {
			w.Step = services.StepDetails
		}
		return renderWizard(e, http.StatusOK, buildWizardData(tables, w, query))
	}
}

// HandleWizard returns a handler for wizard navigation (select, next,
// back, reset). Moving forward from the details step prices the
// submission.
func HandleWizard(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data.")
		}
		form := e.Request.PostForm
		tables, dataErr := GetCostTables(e.Request)

		current := services.ParseWizard(form)
		action := form.Get("action")
		if action == "" {
			action = services.ActionNext
		}
		next, err := current.Apply(action, services.WorkType(form.Get(services.FieldWorkType)))
		if err != nil {
			app.Logger().Debug("wizard: action rejected", "action", action, "step", current.Step.String(), "error", err)
			data := buildWizardData(tables, current, form)
			if errors.Is(err, services.ErrNoWorkType) || errors.Is(err, services.ErrUnknownWorkType) {
				data.Errors[services.FieldWorkType] = err.Error()
			}
			SetToast(e, ToastWarning, toastMessage(err))
			return renderWizard(e, http.StatusOK, data)
		}

		values := form
		if action == services.ActionReset {
			values = url.Values{}
		}
		if next.Step != services.StepResults {
			return renderWizard(e, http.StatusOK, buildWizardData(tables, next, values))
		}
		if dataErr != nil {
			return unavailable(app, e, dataErr)
		}
		return renderEstimate(app, e, tables, next, values)
	}
}

// HandleEstimate returns a handler that prices the details form and
// renders the results step, or the details step with field errors.
func HandleEstimate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data.")
		}
		form := e.Request.PostForm
		tables, err := GetCostTables(e.Request)
		if err != nil {
			return unavailable(app, e, err)
		}

		w := services.ParseWizard(form)
		if w.WorkType == "" {
			data := buildWizardData(tables, services.NewWizard(), nil)
			data.Errors[services.FieldWorkType] = services.ErrNoWorkType.Error()
			SetToast(e, ToastWarning, services.ErrNoWorkType.Error())
			return renderWizard(e, formErrorStatus(e), data)
		}
		w.Step = services.StepDetails
		return renderEstimate(app, e, tables, w, form)
	}
}

// renderEstimate prices values for w and renders the outcome.
func renderEstimate(app *pocketbase.PocketBase, e *core.RequestEvent, tables *costdata.Tables, w services.Wizard, values url.Values) error {
	filtered := w.Filter(values)
	res, err := services.Calculate(tables, filtered)

	w.Step = services.StepDetails
	data := buildWizardData(tables, w, values)
	if err := applyEstimate(&data, filtered, res, err); err != nil {
		data.Errors = services.FieldErrors(err)
		msg := firstFieldError(w, data.Errors)
		app.Logger().Debug("estimate: invalid selection", "workType", string(w.WorkType), "errors", data.Errors)
		SetToast(e, ToastWarning, msg)
		return renderWizard(e, formErrorStatus(e), data)
	}

	if data.Result != nil {
		app.Logger().Info("estimate: computed",
			"reference", res.Reference,
			"workType", string(res.WorkType),
			"region", res.Region.Name,
			"low", res.Low,
			"high", res.High,
		)
	}
	return renderWizard(e, http.StatusOK, data)
}

// HandleSystemOptions returns a handler that lists the systems suited to
// the chosen soil. The info box is refreshed out of band because the
// current system may have been dropped from the list.
func HandleSystemOptions(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tables, err := GetCostTables(e.Request)
		if err != nil {
			return unavailable(app, e, err)
		}
		q := e.Request.URL.Query()
		opts, info := systemOptions(tables, q.Get(services.FieldSoilType), q.Get(services.FieldSystemType))

		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.SystemOptions(opts).Render(e.Request.Context(), e.Response); err != nil {
			return err
		}
		return templates.SystemInfoOOB(info).Render(e.Request.Context(), e.Response)
	}
}

// HandleSystemInfo returns a handler that renders the description box of
// one system.
func HandleSystemInfo(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tables, err := GetCostTables(e.Request)
		if err != nil {
			return unavailable(app, e, err)
		}
		var info *templates.SystemInfo
		if system, ok := tables.System(e.Request.PathValue("key")); ok {
			info = systemInfo(system)
		} else if !isHTMX(e.Request) {
			return e.String(http.StatusNotFound, "Unknown system type.")
		}
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return templates.SystemInfoBox(info).Render(e.Request.Context(), e.Response)
	}
}

// HandleTankSizes returns a handler that lists tank sizes with the
// recommendation for the household marked.
func HandleTankSizes(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tables, err := GetCostTables(e.Request)
		if err != nil {
			return unavailable(app, e, err)
		}
		q := e.Request.URL.Query()
		opts := tankSizeOptions(tables,
			q.Get(services.FieldBedrooms),
			q.Get(services.FieldOccupants),
			q.Get(services.FieldTankSize),
		)
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return templates.TankSizeOptions(opts).Render(e.Request.Context(), e.Response)
	}
}

// unavailable answers a request that needs the cost tables when they
// failed to load.
func unavailable(app *pocketbase.PocketBase, e *core.RequestEvent, err error) error {
	app.Logger().Error("cost data unavailable", "path", e.Request.URL.Path, "error", err)
	if isHTMX(e.Request) {
		return ErrorToast(e, http.StatusServiceUnavailable, unavailableMessage)
	}
	data := buildWizardData(nil, services.NewWizard(), nil)
	return renderWizard(e, http.StatusServiceUnavailable, data)
}

// formErrorStatus keeps HTMX responses at 200 so the panel is swapped in
// with its field errors.
func formErrorStatus(e *core.RequestEvent) int {
	if isHTMX(e.Request) {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

func toastMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrLastStep):
		return "You are already on the last step."
	case errors.Is(err, services.ErrUnknownAction):
		return "Unknown wizard action."
	default:
		return err.Error()
	}
}
