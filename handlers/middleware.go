package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"septicestimator/costdata"
	"septicestimator/services"
)

type contextKey string

const CostDataKey contextKey = "costData"

// unavailableMessage is shown in place of the form when the cost data
// could not be loaded.
const unavailableMessage = "Error: Could not load calculator data. Please try again later."

// CostData is the outcome of loading the cost tables at startup.
type CostData struct {
	Tables *costdata.Tables
	Err    error
}

// CostDataMiddleware stores the startup load result in the request
// context. The tables are immutable and shared by every request.
func CostDataMiddleware(data CostData) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctx := context.WithValue(e.Request.Context(), CostDataKey, data)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}

// GetCostTables returns the cost tables from the request context, or an
// error wrapping services.ErrDataUnavailable when they failed to load.
func GetCostTables(r *http.Request) (*costdata.Tables, error) {
	data, ok := r.Context().Value(CostDataKey).(CostData)
	switch {
	case !ok:
		return nil, services.ErrDataUnavailable
	case data.Err != nil:
		return nil, fmt.Errorf("%w: %v", services.ErrDataUnavailable, data.Err)
	case data.Tables == nil:
		return nil, services.ErrDataUnavailable
	}
	return data.Tables, nil
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
