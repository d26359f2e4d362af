// Package schema provides best-effort structural validation of extracted
// character records.
//
// Validation never blocks an upload: parsing hand-authored PDFs is
// inherently lossy, so a record that fails validation is logged and returned
// unchanged rather than rejected.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rollkeeper/rollkeeper/internal/sheet"
)

//go:embed record_schema.json
var recordSchemaJSON []byte

// Validator checks documents against the canonical record schema. The schema
// is compiled once at construction; a Validator is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
	logger *slog.Logger
}

// NewValidator compiles the embedded record schema.
func NewValidator(logger *slog.Logger) (*Validator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record_schema.json", bytes.NewReader(recordSchemaJSON)); err != nil {
		return nil, fmt.Errorf("load record schema: %w", err)
	}
	compiled, err := compiler.Compile("record_schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	return &Validator{schema: compiled, logger: logger}, nil
}

// Validate checks any JSON-serializable document against the record schema.
// On success it returns the round-tripped (coerced) document. On any failure
// it logs a warning with the diagnostics and returns the input unchanged.
func (v *Validator) Validate(doc any) any {
	raw, err := json.Marshal(doc)
	if err != nil {
		v.logger.Warn("record validation skipped, document not serializable", "error", err)
		return doc
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		v.logger.Warn("record validation skipped, document not parseable", "error", err)
		return doc
	}

	if err := v.schema.Validate(parsed); err != nil {
		v.logger.Warn("extracted record failed schema validation, keeping unvalidated data", "error", err)
		return doc
	}
	return parsed
}

// ValidateRecord validates a typed record. On validation failure the record
// is returned as-is; the upload continues either way.
func (v *Validator) ValidateRecord(rec *sheet.Record) *sheet.Record {
	if rec == nil {
		return nil
	}
	validated := v.Validate(rec)
	if validated == nil {
		return rec
	}

	// Round-trip back into the typed record when validation produced a
	// generic document.
	raw, err := json.Marshal(validated)
	if err != nil {
		return rec
	}
	out := &sheet.Record{}
	if err := json.Unmarshal(raw, out); err != nil {
		return rec
	}
	return out
}
