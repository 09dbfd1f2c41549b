package costdata

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Document names, used both as file base names and as record names in the
// cost_documents collection.
const (
	SystemsDocumentName  = "septic_systems"
	RegionalDocumentName = "regional_cost_data"
)

//go:embed data/*.json
var embedded embed.FS

var documentExts = []string{".json", ".yaml", ".yml"}

// Embedded returns the default cost documents compiled into the binary.
func Embedded() (Documents, error) {
	return readFS(embedded, "data")
}

// ReadDir reads both cost documents from dir. Each document may be stored
// as JSON or YAML (septic_systems.json, regional_cost_data.yaml, ...).
func ReadDir(dir string) (Documents, error) {
	return readFS(os.DirFS(dir), ".")
}

func readFS(fsys fs.FS, dir string) (Documents, error) {
	var docs Documents
	if err := readDocument(fsys, dir, SystemsDocumentName, &docs.Systems); err != nil {
		return Documents{}, err
	}
	if err := readDocument(fsys, dir, RegionalDocumentName, &docs.Regional); err != nil {
		return Documents{}, err
	}
	return docs, nil
}

func readDocument(fsys fs.FS, dir, name string, v any) error {
	for _, ext := range documentExts {
		path := filepath.ToSlash(filepath.Join(dir, name+ext))
		data, err := fs.ReadFile(fsys, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := Decode(name+ext, data, v); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("cost document %q not found", name)
}

// Decode unmarshals a cost document, choosing the format from the file
// extension. Unknown fields are rejected in JSON documents.
func Decode(filename string, data []byte, v any) error {
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode %s: %w", filename, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", filename, err)
		}
	}
	return nil
}

// ParseJSON decodes both documents from raw JSON.
func ParseJSON(systems, regional []byte) (Documents, error) {
	var docs Documents
	if err := Decode(SystemsDocumentName+".json", systems, &docs.Systems); err != nil {
		return Documents{}, err
	}
	if err := Decode(RegionalDocumentName+".json", regional, &docs.Regional); err != nil {
		return Documents{}, err
	}
	return docs, nil
}
