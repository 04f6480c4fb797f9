package validate

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/kaptinlin/jsonschema"
)

// ValidateJSON checks data against a JSON Schema document.
func ValidateJSON(schemaDoc, data []byte) error {
	schema, err := compile(schemaDoc)
	if err != nil {
		return err
	}
	return validateJSON(schema, data)
}

// ValidateJSONL checks every non-empty line of data against a JSON Schema
// document, reporting the first offending line.
func ValidateJSONL(schemaDoc, data []byte) error {
	schema, err := compile(schemaDoc)
	if err != nil {
		return err
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		if err := validateJSON(schema, b); err != nil {
			return fmt.Errorf("jsonl line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read jsonl: %w", err)
	}
	return nil
}

func compile(schemaDoc []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile(schemaDoc)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validateJSON(schema *jsonschema.Schema, data []byte) error {
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}
