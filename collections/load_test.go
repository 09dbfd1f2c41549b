package collections_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"septicestimator/collections"
	"septicestimator/costdata"
	"septicestimator/testhelpers"
)

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	col, err := app.FindCollectionByNameOrId(collections.CostDocuments)
	if err != nil {
		t.Fatalf("collection not found after Setup(): %v", err)
	}
	for _, f := range []string{"name", "data", "source", "created", "updated"} {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("cost_documents: missing field %q", f)
		}
	}

	if err := collections.Setup(app); err != nil {
		t.Fatalf("second Setup() error: %v", err)
	}
	again, _ := app.FindCollectionByNameOrId(collections.CostDocuments)
	if again.Id != col.Id {
		t.Errorf("collection id changed after second Setup(): %s -> %s", col.Id, again.Id)
	}
}

func TestSeedCostDocuments_OnlyOnce(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	docs, err := costdata.Embedded()
	if err != nil {
		t.Fatalf("Embedded() error: %v", err)
	}

	n, err := collections.SeedCostDocuments(app, docs, "embedded", false)
	if err != nil || n != 2 {
		t.Fatalf("first seed = %d, %v; want 2, nil", n, err)
	}
	n, err = collections.SeedCostDocuments(app, docs, "embedded", false)
	if err != nil || n != 0 {
		t.Fatalf("second seed = %d, %v; want 0, nil", n, err)
	}

	records, err := app.FindAllRecords(collections.CostDocuments)
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestLoadCostTables_RoundTrip(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tables, err := collections.Prepare(app, "")
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	embedded, _ := costdata.Load("")

	if len(tables.Systems()) != len(embedded.Systems()) {
		t.Errorf("systems = %d, want %d", len(tables.Systems()), len(embedded.Systems()))
	}
	if len(tables.States()) != 50 {
		t.Errorf("states = %d, want 50", len(tables.States()))
	}
	got := tables.Resolve("NY", "10001")
	want := embedded.Resolve("NY", "10001")
	if got != want {
		t.Errorf("Resolve = %+v, want %+v", got, want)
	}
}

func TestLoadCostTables_AdminEditSurvivesRestart(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := collections.Prepare(app, ""); err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	record, err := app.FindFirstRecordByData(collections.CostDocuments, "name", costdata.RegionalDocumentName)
	if err != nil {
		t.Fatalf("find regional record: %v", err)
	}
	edited := strings.Replace(record.GetString("data"), `"National Average"`, `"Lower 48"`, 1)
	record.Set("data", edited)
	if err := app.Save(record); err != nil {
		t.Fatalf("save edited record: %v", err)
	}

	tables, err := collections.Prepare(app, "")
	if err != nil {
		t.Fatalf("second Prepare() error: %v", err)
	}
	if name := tables.Resolve("", "").Name; name != "Lower 48" {
		t.Errorf("default region = %q, want the edited name", name)
	}
}

func TestPrepare_DirectoryOverwrites(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := collections.Prepare(app, ""); err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	dir := t.TempDir()
	docs, _ := costdata.Embedded()
	systems, err := json.Marshal(docs.Systems)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "septic_systems.json"), systems, 0o644); err != nil {
		t.Fatal(err)
	}
	regional := "default:\n  name: Flat Rate\n  multiplier: 1.0\narea_types:\n  urban: 1.0\n  suburban: 1.0\n  rural: 1.0\nstates:\n  AZ:\n    name: Arizona\n    multiplier: 2.0\n    zip3: [\"850-865\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "regional_cost_data.yaml"), []byte(regional), 0o644); err != nil {
		t.Fatal(err)
	}

	tables, err := collections.Prepare(app, dir)
	if err != nil {
		t.Fatalf("Prepare(dir) error: %v", err)
	}
	if got := tables.Resolve("AZ", "").Multiplier; got != 2.0 {
		t.Errorf("AZ multiplier = %v, want 2.0 from the directory", got)
	}

	record, _ := app.FindFirstRecordByData(collections.CostDocuments, "name", costdata.RegionalDocumentName)
	if record.GetString("source") != dir {
		t.Errorf("source = %q, want %q", record.GetString("source"), dir)
	}
}

func TestPrepare_InvalidDirectory(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := collections.Prepare(app, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for a directory without cost documents")
	}
}
