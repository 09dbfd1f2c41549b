package services

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWizard_Transitions(t *testing.T) {
	w := NewWizard()
	if w.Step != StepWorkType {
		t.Fatalf("initial step = %v", w.Step)
	}

	if _, err := w.Next(); !errors.Is(err, ErrNoWorkType) {
		t.Errorf("Next without work type: err = %v", err)
	}

	w, err := w.SelectWorkType(WorkRepair)
	if err != nil {
		t.Fatalf("SelectWorkType error = %v", err)
	}
	if w.Step != StepDetails || w.WorkType != WorkRepair {
		t.Errorf("after select = %+v", w)
	}

	w, err = w.Next()
	if err != nil || w.Step != StepResults {
		t.Errorf("Next = %+v, %v", w, err)
	}
	if _, err := w.Next(); !errors.Is(err, ErrLastStep) {
		t.Errorf("Next at last step: err = %v", err)
	}

	w = w.Back().Back().Back()
	if w.Step != StepWorkType || w.WorkType != WorkRepair {
		t.Errorf("Back x3 = %+v", w)
	}

	if w = w.Reset(); w != NewWizard() {
		t.Errorf("Reset = %+v", w)
	}

	if _, err := w.SelectWorkType("demolition"); !errors.Is(err, ErrUnknownWorkType) {
		t.Errorf("select unknown: err = %v", err)
	}
}

func TestWizard_Apply(t *testing.T) {
	tests := []struct {
		name     string
		start    Wizard
		action   string
		workType WorkType
		want     Wizard
		wantErr  error
	}{
		{"select", NewWizard(), ActionSelect, WorkMaintenance, Wizard{StepDetails, WorkMaintenance}, nil},
		{"next", Wizard{StepWorkType, WorkRepair}, ActionNext, "", Wizard{StepDetails, WorkRepair}, nil},
		{"back", Wizard{StepDetails, WorkRepair}, ActionBack, "", Wizard{StepWorkType, WorkRepair}, nil},
		{"reset", Wizard{StepResults, WorkRepair}, ActionReset, "", NewWizard(), nil},
		{"unknown", NewWizard(), "jump", "", NewWizard(), ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.start.Apply(tt.action, tt.workType)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Apply = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseWizard(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   Wizard
	}{
		{"empty", url.Values{}, NewWizard()},
		{"details", url.Values{"step": {"2"}, FieldWorkType: {"installation"}}, Wizard{StepDetails, WorkInstallation}},
		{"step without work type", url.Values{"step": {"3"}}, NewWizard()},
		{"out of range", url.Values{"step": {"9"}, FieldWorkType: {"repair"}}, Wizard{StepWorkType, WorkRepair}},
		{"bogus work type", url.Values{"step": {"2"}, FieldWorkType: {"x"}}, NewWizard()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseWizard(tt.values); got != tt.want {
				t.Errorf("ParseWizard = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWizard_VisibleFieldsAndFilter(t *testing.T) {
	w := Wizard{Step: StepDetails, WorkType: WorkMaintenance}
	want := []string{FieldRegion, FieldZipCode, FieldMaintenanceItem, FieldMaintTankSize}
	if diff := cmp.Diff(want, w.VisibleFields()); diff != "" {
		t.Errorf("visible fields (-want +got):\n%s", diff)
	}
	if w.IsVisible(FieldSoilType) {
		t.Error("soil type should be hidden for maintenance")
	}

	in := url.Values{
		FieldWorkType:        {"installation"},
		FieldRegion:          {"TX"},
		FieldSoilType:        {"clay"},
		FieldMaintenanceItem: {"pumping", "inspection"},
	}
	got := w.Filter(in)
	wantValues := url.Values{
		FieldWorkType:        {"maintenance"},
		FieldRegion:          {"TX"},
		FieldMaintenanceItem: {"pumping", "inspection"},
	}
	if diff := cmp.Diff(wantValues, got); diff != "" {
		t.Errorf("filtered (-want +got):\n%s", diff)
	}

	if len(NewWizard().Filter(in)) != 0 {
		t.Error("wizard without work type should filter everything")
	}
}

func TestStepString(t *testing.T) {
	if StepDetails.String() != "details" || Step(42).String() != "unknown" {
		t.Errorf("unexpected step names: %s %s", StepDetails, Step(42))
	}
}
