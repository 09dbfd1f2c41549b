package templates

import "septicestimator/services"

// Option is a select option or checkbox. For checkboxes Selected means
// checked.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// WorkTypeCard is one of the selectable cards on the first step.
type WorkTypeCard struct {
	Value       services.WorkType
	Title       string
	Description string
	Selected    bool
}

// SystemInfo is the description box shown under the system select.
type SystemInfo struct {
	Key         string
	Name        string
	Description string
	BaseRange   string
}

// HiddenField carries a submitted value through the results step so the
// back button and the exports see the same selection.
type HiddenField struct {
	Name  string
	Value string
}

// ResultLine is a formatted breakdown row.
type ResultLine struct {
	Label string
	Low   string
	High  string
}

// AdjustmentLine is one formatted multiplier.
type AdjustmentLine struct {
	Label  string
	Factor string
}

// ResultData is a formatted estimate.
type ResultData struct {
	Title       string
	Reference   string
	Range       string
	Details     []services.Detail
	Lines       []ResultLine
	TotalLow    string
	TotalHigh   string
	Adjustments []AdjustmentLine
	Notes       []string
}

// IncompatibleData explains why no estimate was produced.
type IncompatibleData struct {
	Message     string
	Suggestions []Option
}

// WizardData is everything the wizard panel needs for any step.
type WizardData struct {
	Step     services.Step
	WorkType services.WorkType
	Title    string

	// Unavailable holds a message when the cost data failed to load; the
	// form is rendered disabled.
	Unavailable string

	WorkTypes []WorkTypeCard

	States         []Option
	ZipCode        string
	AreaTypes      []Option
	Bedrooms       []Option
	Occupants      []Option
	WaterUsage     []Option
	Soils          []Option
	Systems        []Option
	SystemInfo     *SystemInfo
	TankSizes      []Option
	TankMaterials  []Option
	RepairItems    []Option
	Maintenance    []Option
	MaintTankSizes []Option

	Errors map[string]string

	Result       *ResultData
	Incompatible *IncompatibleData
	Hidden       []HiddenField
}
