package typespec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "typespec.schema.json"

//go:embed typespec.schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Decode reads a spec document and validates it against the embedded schema.
func Decode(r io.Reader) (TypeSpec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return TypeSpec{}, err
	}

	schema, err := loadSchema()
	if err != nil {
		return TypeSpec{}, fmt.Errorf("failed to compile typespec schema: %w", err)
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return TypeSpec{}, fmt.Errorf("invalid json: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return TypeSpec{}, fmt.Errorf("schema validation failed: %w", err)
	}

	var spec TypeSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return TypeSpec{}, err
	}
	return spec, nil
}

// Encode writes the spec as indented json.
func Encode(w io.Writer, spec TypeSpec) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(spec)
}

// LoadFile reads and validates a spec document from disk.
func LoadFile(path string) (TypeSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeSpec{}, fmt.Errorf("failed to open typespec %s: %w", path, err)
	}
	defer f.Close()

	spec, err := Decode(f)
	if err != nil {
		return TypeSpec{}, fmt.Errorf("failed to load typespec %s: %w", path, err)
	}
	return spec, nil
}

// SaveFile writes a spec document to disk.
func SaveFile(path string, spec TypeSpec) error {
	var buf bytes.Buffer
	if err := Encode(&buf, spec); err != nil {
		return fmt.Errorf("failed to encode typespec: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write typespec %s: %w", path, err)
	}
	return nil
}
