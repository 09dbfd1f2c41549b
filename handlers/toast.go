package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
)

// Toast levels understood by static/js/estimator.js.
const (
	ToastSuccess = "success"
	ToastInfo    = "info"
	ToastWarning = "warning"
	ToastError   = "error"
)

const flashCookie = "flash_toast"

// SetToast queues a toast for the client. HTMX requests pick it up from the
// HX-Trigger header, merged into any events already set there; full page
// loads read it from a short-lived flash cookie.
func SetToast(e *core.RequestEvent, level, message string) {
	payload := map[string]string{"message": message, "type": level}

	events := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		// a bare event name is not JSON; it is replaced
		if err := json.Unmarshal([]byte(existing), &events); err != nil {
			events = map[string]any{}
		}
	}
	events["showToast"] = payload
	if data, err := json.Marshal(events); err == nil {
		e.Response.Header().Set("HX-Trigger", string(data))
	}

	if data, err := json.Marshal(payload); err == nil {
		http.SetCookie(e.Response, &http.Cookie{
			Name:     flashCookie,
			Value:    url.QueryEscape(string(data)),
			Path:     "/",
			MaxAge:   10,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ErrorToast shows an error toast and tells HTMX not to swap the body.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, ToastError, message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
