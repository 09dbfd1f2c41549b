package services

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"septicestimator/costdata"
)

// Humanize turns a document key such as "septic_tank" or
// "high-water-table" into "Septic Tank" / "High Water Table".
func Humanize(key string) string {
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	return cases.Title(language.English).String(key)
}

// ComponentLabel is the display label of an installation component.
func ComponentLabel(c costdata.Component) string {
	if c.Label != "" {
		return c.Label
	}
	return Humanize(c.Key)
}
