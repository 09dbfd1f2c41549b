// Package templates holds the estimator's templ components. Handlers
// render the same components for full pages and HTMX fragments.
package templates

import (
	"strings"

	"github.com/a-h/templ"

	"septicestimator/services"
)

var stepLabels = map[services.Step]string{
	services.StepWorkType: "Type of Work",
	services.StepDetails:  "Details",
	services.StepResults:  "Estimate",
}

// selectField describes a labelled select. attrs are extra attributes for
// the select element, usually HTMX triggers.
type selectField struct {
	name        string
	label       string
	placeholder string
	options     []Option
	attrs       templ.Attributes
}

// tankSizeRefresh reloads the tank size options when the household changes.
// The current size is sent along so a size the user picked survives.
var tankSizeRefresh = templ.Attributes{
	"hx-get":     "/estimator/tank-sizes",
	"hx-trigger": "change",
	"hx-target":  "#tank-size",
	"hx-include": "[name='bedrooms'],[name='occupants'],[name='tank_size']",
}

var systemRefresh = templ.Attributes{
	"hx-get":     "/estimator/systems",
	"hx-trigger": "change",
	"hx-target":  "#system-type",
	"hx-include": "[name='system_type']",
}

var systemInfoRefresh = templ.Attributes{
	"hx-on:change": "htmx.ajax('GET', '/estimator/systems/' + encodeURIComponent(this.value || 'none'), {target: '#system-info-box', swap: 'outerHTML'})",
}

var oobSwap = templ.Attributes{"hx-swap-oob": "true"}

// withPlaceholder prepends an empty option labelled placeholder, selected
// when nothing else is. An empty placeholder returns opts unchanged.
func withPlaceholder(placeholder string, opts []Option) []Option {
	if placeholder == "" {
		return opts
	}
	first := Option{Label: placeholder, Selected: true}
	for _, o := range opts {
		if o.Selected {
			first.Selected = false
			break
		}
	}
	return append([]Option{first}, opts...)
}

func groupClass(name string, errs map[string]string) string {
	if _, ok := errs[name]; ok {
		return "form-group has-error"
	}
	return "form-group"
}

func fieldID(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
