// Package testhelpers provides utilities for testing the estimator against
// a throwaway PocketBase app.
package testhelpers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"

	"septicestimator/collections"
	"septicestimator/costdata"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup. The directory is
// removed when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: t.TempDir(),
	})
	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}
	if err := collections.Setup(app); err != nil {
		t.Fatalf("failed to set up collections: %v", err)
	}
	return app
}

// NewSeededApp is NewTestApp with the embedded cost documents stored and
// loaded, the way the server starts.
func NewSeededApp(t *testing.T) (*pocketbase.PocketBase, *costdata.Tables) {
	t.Helper()

	app := NewTestApp(t)
	tables, err := collections.Prepare(app, "")
	if err != nil {
		t.Fatalf("failed to prepare cost tables: %v", err)
	}
	return app, tables
}

// FormRequest builds a form-encoded POST request. Pass htmx to mark it as
// an HTMX request.
func FormRequest(target string, form url.Values, htmx bool) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return req
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHTMLNotContains checks that body contains none of the fragments.
func AssertHTMLNotContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if strings.Contains(body, frag) {
			t.Errorf("expected HTML not to contain %q", frag)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
