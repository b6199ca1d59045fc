package pack

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed pack.schema.json
var packSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

const schemaURL = "mem://qinter/pack.schema.json"

func packSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(packSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("decode pack schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("register pack schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// ValidateDocument checks a decoded pack document against the pack schema.
// The document is round-tripped through JSON so YAML-decoded values carry
// the types the validator expects.
func ValidateDocument(doc any) error {
	s, err := packSchema()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode pack document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode pack document: %w", err)
	}
	if err := s.Validate(inst); err != nil {
		return fmt.Errorf("pack schema validation: %w", err)
	}
	return nil
}
