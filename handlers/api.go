package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"septicestimator/services"
)

// HandleAPIEstimate returns a handler that prices a selection posted as a
// JSON object or as form data and answers with the EstimateResult as JSON.
//
//	422 {"errors": {field: message}}        invalid selection
//	409 {"error": ..., "suggestions": [...]} unsuitable soil/system
//	503 {"error": ...}                       cost data unavailable
func HandleAPIEstimate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tables, err := GetCostTables(e.Request)
		if err != nil {
			app.Logger().Error("api: cost data unavailable", "error", err)
			return e.JSON(http.StatusServiceUnavailable, map[string]any{"error": unavailableMessage})
		}

		values, err := requestValues(e)
		if err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request body."})
		}

		res, err := services.Calculate(tables, values)
		if err != nil {
			var incompatible *services.IncompatibleError
			if errors.As(err, &incompatible) {
				return e.JSON(http.StatusConflict, map[string]any{
					"error":       incompatible.Error(),
					"suggestions": incompatible.Suggestions,
				})
			}
			return e.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": services.FieldErrors(err)})
		}

		app.Logger().Info("api: estimate computed", "reference", res.Reference, "workType", string(res.WorkType))
		return e.JSON(http.StatusOK, res)
	}
}

// requestValues reads the selection as form values. JSON arrays become
// repeated values and scalars are stringified.
func requestValues(e *core.RequestEvent) (url.Values, error) {
	if !strings.HasPrefix(e.Request.Header.Get("Content-Type"), "application/json") {
		if err := e.Request.ParseForm(); err != nil {
			return nil, err
		}
		return e.Request.PostForm, nil
	}

	body := map[string]any{}
	if err := e.BindBody(&body); err != nil {
		return nil, err
	}
	values := url.Values{}
	for k, v := range body {
		switch v := v.(type) {
		case nil:
		case []any:
			values[k] = cast.ToStringSlice(v)
		default:
			values.Set(k, cast.ToString(v))
		}
	}
	return values, nil
}
