package collections

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"septicestimator/costdata"
)

// SeedCostDocuments stores both documents in the cost_documents collection.
// Existing records are left alone unless overwrite is set, so prices edited
// in the admin UI survive restarts. It returns how many records it wrote.
func SeedCostDocuments(app *pocketbase.PocketBase, docs costdata.Documents, source string, overwrite bool) (int, error) {
	col, err := app.FindCollectionByNameOrId(CostDocuments)
	if err != nil {
		return 0, fmt.Errorf("seed: could not find %s collection: %w", CostDocuments, err)
	}

	pending := []struct {
		name string
		doc  any
	}{
		{costdata.SystemsDocumentName, docs.Systems},
		{costdata.RegionalDocumentName, docs.Regional},
	}

	written := 0
	for _, p := range pending {
		record, err := app.FindFirstRecordByData(col, "name", p.name)
		switch {
		case err == nil && !overwrite:
			continue
		case err == nil:
		case errors.Is(err, sql.ErrNoRows):
			record = core.NewRecord(col)
			record.Set("name", p.name)
		default:
			return written, fmt.Errorf("seed: lookup %q: %w", p.name, err)
		}

		data, err := json.Marshal(p.doc)
		if err != nil {
			return written, fmt.Errorf("seed: encode %q: %w", p.name, err)
		}
		record.Set("data", types.JSONRaw(data))
		record.Set("source", source)
		if err := app.Save(record); err != nil {
			return written, fmt.Errorf("seed: save %q: %w", p.name, err)
		}
		written++
		app.Logger().Info("seeded cost document", "name", p.name, "source", source)
	}
	return written, nil
}
