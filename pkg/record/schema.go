package record

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/appversion.schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

// SchemaDocument returns the embedded JSON Schema for the current layout.
func SchemaDocument() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}

func recordSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return compiledSchema, schemaErr
}

// validateSchema checks a migrated document. Violations become a ParseError
// listing each failing field.
func validateSchema(doc []byte) error {
	s, err := recordSchema()
	if err != nil {
		return fmt.Errorf("load record schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return newParseError(fmt.Errorf("validate record: %w", err))
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		details = append(details, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}
	return newParseError(errors.New("record does not match schema"), details...)
}
