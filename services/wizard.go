package services

import (
	"errors"
	"net/url"

	"github.com/spf13/cast"
)

// Step is a wizard panel.
type Step int

const (
	StepWorkType Step = iota + 1
	StepDetails
	StepResults
)

var stepNames = map[Step]string{
	StepWorkType: "work-type",
	StepDetails:  "details",
	StepResults:  "results",
}

// Steps lists the wizard panels in order.
var Steps = []Step{StepWorkType, StepDetails, StepResults}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "unknown"
}

// Wizard actions accepted by Apply.
const (
	ActionSelect = "select"
	ActionNext   = "next"
	ActionBack   = "back"
	ActionReset  = "reset"
)

var (
	ErrNoWorkType      = errors.New("Please choose the type of work first.")
	ErrUnknownWorkType = errors.New("Unknown type of work.")
	ErrLastStep        = errors.New("already at the last step")
	ErrUnknownAction   = errors.New("unknown wizard action")
)

// Wizard is the estimator's step controller. It is a value type: every
// transition returns a new Wizard and the state travels with the form.
type Wizard struct {
	Step     Step
	WorkType WorkType
}

// NewWizard starts at the work type step.
func NewWizard() Wizard {
	return Wizard{Step: StepWorkType}
}

// ParseWizard restores wizard state from submitted "step" and "work_type"
// values. Out-of-range or inconsistent values fall back to a safe state.
func ParseWizard(values url.Values) Wizard {
	w := Wizard{
		Step:     Step(cast.ToInt(values.Get("step"))),
		WorkType: WorkType(values.Get(FieldWorkType)),
	}
	if !w.WorkType.Valid() {
		w.WorkType = ""
	}
	if w.Step < StepWorkType || w.Step > StepResults {
		w.Step = StepWorkType
	}
	if w.WorkType == "" {
		w.Step = StepWorkType
	}
	return w
}

// SelectWorkType records the work type and moves to the details step.
func (w Wizard) SelectWorkType(t WorkType) (Wizard, error) {
	if !t.Valid() {
		return w, ErrUnknownWorkType
	}
	return Wizard{Step: StepDetails, WorkType: t}, nil
}

// Next advances one step. Leaving the first step requires a work type.
func (w Wizard) Next() (Wizard, error) {
	if w.Step >= StepResults {
		return w, ErrLastStep
	}
	if w.WorkType == "" {
		return w, ErrNoWorkType
	}
	w.Step++
	return w, nil
}

// Back returns to the previous step; the first step is a no-op.
func (w Wizard) Back() Wizard {
	if w.Step > StepWorkType {
		w.Step--
	}
	return w
}

// Reset clears the work type and returns to the first step.
func (w Wizard) Reset() Wizard {
	return NewWizard()
}

// Apply runs a named action. workType is only used by ActionSelect.
func (w Wizard) Apply(action string, workType WorkType) (Wizard, error) {
	switch action {
	case ActionSelect:
		return w.SelectWorkType(workType)
	case ActionNext:
		return w.Next()
	case ActionBack:
		return w.Back(), nil
	case ActionReset:
		return w.Reset(), nil
	default:
		return w, ErrUnknownAction
	}
}

// Title is the heading of the details panel for the selected work type.
func (w Wizard) Title() string {
	switch w.WorkType {
	case WorkInstallation:
		return "New Installation Profile"
	case WorkRepair:
		return "Repair Details"
	case WorkMaintenance:
		return "Maintenance Details"
	default:
		return "Details"
	}
}

var commonFields = []string{FieldRegion, FieldZipCode}

var workTypeFields = map[WorkType][]string{
	WorkInstallation: {
		FieldAreaType, FieldBedrooms, FieldOccupants, FieldWaterUsage,
		FieldSoilType, FieldSystemType, FieldTankSize, FieldTankMaterial,
	},
	WorkRepair:      {FieldRepairItem},
	WorkMaintenance: {FieldMaintenanceItem, FieldMaintTankSize},
}

// VisibleFields returns the form fields shown for the current work type.
func (w Wizard) VisibleFields() []string {
	if w.WorkType == "" {
		return nil
	}
	fields := append([]string{}, commonFields...)
	return append(fields, workTypeFields[w.WorkType]...)
}

// IsVisible reports whether field is shown for the current work type.
func (w Wizard) IsVisible(field string) bool {
	for _, f := range w.VisibleFields() {
		if f == field {
			return true
		}
	}
	return false
}

// Filter keeps only the visible fields of a submission, plus the work
// type. Values of hidden fields never reach the pricing function.
func (w Wizard) Filter(values url.Values) url.Values {
	out := url.Values{}
	if w.WorkType == "" {
		return out
	}
	out.Set(FieldWorkType, string(w.WorkType))
	for _, f := range w.VisibleFields() {
		if v, ok := values[f]; ok {
			out[f] = append([]string(nil), v...)
		}
	}
	return out
}
