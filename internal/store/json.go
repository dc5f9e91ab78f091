// Package store persists Project IR to disk (component J): a
// versioned JSON document, and a modernc.org/sqlite store that keeps
// that document per project alongside an index of its POU names and
// kinds, listable without deserializing the whole tree (§4.9).
package store

import (
	"encoding/json"
	"fmt"

	"plx/internal/ir"
)

// Document is the on-disk JSON shape of a Project: schema-versioned so
// a future plx can detect and migrate older documents (§4.9). It is a
// full, lossless rendering of the Project IR — every POU body, SFC
// chart, user type, and initial value — via the tagged wire structs in
// wire.go, so serialize∘deserialize is the identity (§6.3).
type Document struct {
	SchemaVersion int          `json:"schema_version"`
	Name          string       `json:"name"`
	Tasks         []wireTask   `json:"tasks"`
	Pous          []wirePOU    `json:"pous"`
	DataTypes     []wireType   `json:"data_types,omitempty"`
	Globals       []wireGlobal `json:"globals"`
}

const CurrentSchemaVersion = 1

// Marshal renders proj as a schema-versioned JSON document that
// round-trips through Unmarshal without loss (§6.3).
func Marshal(proj *ir.Project) ([]byte, error) {
	doc := projectToDocument(proj)
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal parses a Document, rejects a schema version this version of
// plx does not understand, and reconstructs the Project IR it encodes
// (§4.9, §6.3).
func Unmarshal(data []byte) (*ir.Project, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("store: invalid document: %w", err)
	}
	if doc.SchemaVersion > CurrentSchemaVersion {
		return nil, fmt.Errorf("store: document schema version %d is newer than supported version %d",
			doc.SchemaVersion, CurrentSchemaVersion)
	}
	return documentToProject(doc)
}
