package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaValidator compiles and caches a jsonschema.Schema per tool name
// so argument validation against the catalog's schemas doesn't
// recompile on every call.
type SchemaValidator struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// NewSchemaValidator returns a validator ready to validate any tool in
// Catalog().
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{compiled: make(map[string]*jsonschema.Schema)}
}

func (v *SchemaValidator) schemaFor(toolName string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.compiled[toolName]; ok {
		return s, nil
	}

	def, ok := ByName(toolName)
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", toolName)
	}

	raw, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", toolName, err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema for %s: %w", toolName, err)
	}

	compiler := jsonschema.NewCompiler()
	resourceName := toolName + ".json"
	if err := compiler.AddResource(resourceName, doc); err != nil {
		return nil, fmt.Errorf("add schema resource for %s: %w", toolName, err)
	}

	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", toolName, err)
	}

	v.compiled[toolName] = compiled
	return compiled, nil
}

// Validate parses argsJSON and validates it against toolName's schema.
// It returns the decoded arguments on success.
func (v *SchemaValidator) Validate(toolName string, argsJSON []byte) (map[string]interface{}, error) {
	schema, err := v.schemaFor(toolName)
	if err != nil {
		return nil, err
	}

	var args map[string]interface{}
	if len(argsJSON) == 0 {
		args = map[string]interface{}{}
	} else if err := json.Unmarshal(argsJSON, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments json: %w", err)
	}

	if err := schema.Validate(args); err != nil {
		return nil, fmt.Errorf("argument validation failed: %w", err)
	}

	return args, nil
}
