package output

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Index document names.
const (
	OutlineJSON  = "outline.json"
	SegmentsJSON = "segments.json"
	OutlineMD    = "outline.md"
)

var schemaFiles = map[string]string{
	OutlineJSON:  "schemas/outline.schema.json",
	SegmentsJSON: "schemas/segments.schema.json",
}

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

// SchemaError reports an index document that does not match its schema.
type SchemaError struct {
	File string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s does not match its schema: %v", e.File, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func loadSchemas() {
	schemas = make(map[string]*jsonschema.Schema, len(schemaFiles))
	for name, path := range schemaFiles {
		raw, err := schemaFS.ReadFile(path)
		if err != nil {
			schemasErr = fmt.Errorf("read schema %s: %w", path, err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(path, bytes.NewReader(raw)); err != nil {
			schemasErr = fmt.Errorf("load schema %s: %w", path, err)
			return
		}
		schema, err := compiler.Compile(path)
		if err != nil {
			schemasErr = fmt.Errorf("compile schema %s: %w", path, err)
			return
		}
		schemas[name] = schema
	}
}

// ValidateIndex checks an encoded index document against the schema for
// its file name.
func ValidateIndex(file string, data []byte) error {
	schemasOnce.Do(loadSchemas)
	if schemasErr != nil {
		return schemasErr
	}
	schema, ok := schemas[file]
	if !ok {
		return fmt.Errorf("no schema for %s", file)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &SchemaError{File: file, Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return &SchemaError{File: file, Err: err}
	}
	return nil
}
