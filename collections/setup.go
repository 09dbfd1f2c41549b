package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// CostDocuments is the collection holding the editable cost documents, one
// record per document name.
const CostDocuments = "cost_documents"

const maxDocumentSize = 2 << 20

// Setup ensures the cost_documents collection exists.
func Setup(app *pocketbase.PocketBase) error {
	_, err := ensureCollection(app, CostDocuments, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.JSONField{Name: "data", Required: true, MaxSize: maxDocumentSize})
		c.Fields.Add(&core.TextField{Name: "source"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_cost_documents_name", true, "name", "")
	})
	return err
}

// ensureCollection returns the named collection, creating it with the
// fields added by addFields when it does not exist yet.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) (*core.Collection, error) {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		return existing, nil
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}
	app.Logger().Info("created collection", "name", name, "id", collection.Id)
	return collection, nil
}
