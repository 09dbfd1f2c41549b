package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"septicestimator/costdata"
)

// LoadCostTables reads both documents back from the collection and builds
// validated tables from them.
func LoadCostTables(app *pocketbase.PocketBase) (*costdata.Tables, error) {
	systems, err := documentJSON(app, costdata.SystemsDocumentName)
	if err != nil {
		return nil, err
	}
	regional, err := documentJSON(app, costdata.RegionalDocumentName)
	if err != nil {
		return nil, err
	}

	docs, err := costdata.ParseJSON(systems, regional)
	if err != nil {
		return nil, fmt.Errorf("load cost documents: %w", err)
	}
	tables, err := costdata.New(docs)
	if err != nil {
		return nil, fmt.Errorf("load cost documents: %w", err)
	}
	return tables, nil
}

func documentJSON(app *pocketbase.PocketBase, name string) ([]byte, error) {
	record, err := app.FindFirstRecordByData(CostDocuments, "name", name)
	if err != nil {
		return nil, fmt.Errorf("load cost documents: %q not found: %w", name, err)
	}
	return rawField(record, "data"), nil
}

func rawField(record *core.Record, field string) []byte {
	if raw, ok := record.Get(field).(types.JSONRaw); ok {
		return raw
	}
	return []byte(record.GetString(field))
}

// Prepare ensures the collection exists, seeds it and loads the tables.
// Documents from dir replace the stored ones; with an empty dir the
// embedded defaults are only written when nothing is stored yet.
func Prepare(app *pocketbase.PocketBase, dir string) (*costdata.Tables, error) {
	if err := Setup(app); err != nil {
		return nil, err
	}

	docs, source, overwrite := costdata.Documents{}, "embedded", false
	var err error
	if dir != "" {
		docs, err = costdata.ReadDir(dir)
		source, overwrite = dir, true
	} else {
		docs, err = costdata.Embedded()
	}
	if err != nil {
		return nil, fmt.Errorf("read cost documents: %w", err)
	}
	if _, err := costdata.New(docs); err != nil {
		return nil, fmt.Errorf("cost documents from %s: %w", source, err)
	}
	if _, err := SeedCostDocuments(app, docs, source, overwrite); err != nil {
		return nil, err
	}
	return LoadCostTables(app)
}
