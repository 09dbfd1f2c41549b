package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDataUnavailable is returned when the cost tables failed to load.
var ErrDataUnavailable = errors.New("calculator data is unavailable")

// Suggestion is an alternative system offered for an unsuitable soil.
type Suggestion struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// IncompatibleError reports a system that cannot be installed in the
// selected soil. It is a result for the user, not a fault.
type IncompatibleError struct {
	SystemKey   string       `json:"system"`
	SystemName  string       `json:"system_name"`
	Soil        string       `json:"soil"`
	Suggestions []Suggestion `json:"suggestions"`
}

func (e *IncompatibleError) Error() string {
	msg := fmt.Sprintf("A %s is not suitable for properties with %q soil.", e.SystemName, e.Soil)
	if len(e.Suggestions) == 0 {
		return msg + " Please consult a licensed septic designer."
	}
	names := make([]string, 0, len(e.Suggestions))
	for _, s := range e.Suggestions {
		names = append(names, s.Name)
	}
	if len(names) > 2 {
		names = names[:2]
	}
	return msg + " Please choose a different system, like a " + strings.Join(names, " or a ") + "."
}
