package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0},
		"kind": {"enum": ["command", "role", "item"]}
	},
	"required": ["name"]
}`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"schemas/person.schema.json": {Data: []byte(personSchema)},
		"schemas/broken.schema.json": {Data: []byte(`{not json`)},
	}
}

func TestSchemaValidator_ValidateBytes(t *testing.T) {
	validator := NewSchemaValidator(testFS())

	tests := []struct {
		name      string
		data      string
		wantError bool
		errorMsg  string
	}{
		{name: "valid data", data: `{"name": "John", "age": 30}`},
		{name: "valid data without optional field", data: `{"name": "Jane"}`},
		{name: "missing required field", data: `{"age": 25}`, wantError: true, errorMsg: "required"},
		{name: "wrong type for field", data: `{"name": "John", "age": "thirty"}`, wantError: true, errorMsg: "age"},
		{name: "constraint violation", data: `{"name": "John", "age": -5}`, wantError: true, errorMsg: "age"},
		{name: "enum violation", data: `{"name": "John", "kind": "pet"}`, wantError: true, errorMsg: "kind"},
		{name: "invalid JSON", data: `{"name": "John", "age": }`, wantError: true, errorMsg: "parse JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateBytes([]byte(tt.data), "schemas/person.schema.json")

			if tt.wantError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error to contain %q, got: %v", tt.errorMsg, err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestSchemaValidator_ValidateFile(t *testing.T) {
	validator := NewSchemaValidator(testFS())

	dataPath := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(dataPath, []byte(`{"name": "Jane"}`), 0644); err != nil {
		t.Fatalf("Failed to write data file: %v", err)
	}

	if err := validator.ValidateFile(dataPath, "schemas/person.schema.json"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	if err := validator.ValidateFile(filepath.Join(t.TempDir(), "missing.json"), "schemas/person.schema.json"); err == nil {
		t.Error("Expected error for missing data file")
	}
}

func TestSchemaValidator_SchemaErrors(t *testing.T) {
	validator := NewSchemaValidator(testFS())

	err := validator.ValidateBytes([]byte(`{}`), "schemas/missing.schema.json")
	if err == nil || !strings.Contains(err.Error(), "failed to load schema") {
		t.Errorf("Expected load error for missing schema, got: %v", err)
	}

	err = validator.ValidateBytes([]byte(`{}`), "schemas/broken.schema.json")
	if err == nil || !strings.Contains(err.Error(), "parse schema JSON") {
		t.Errorf("Expected parse error for broken schema, got: %v", err)
	}
}

func TestSchemaValidator_CachesCompiledSchemas(t *testing.T) {
	v := NewSchemaValidator(testFS()).(*validator)

	for i := 0; i < 3; i++ {
		if err := v.ValidateBytes([]byte(`{"name": "x"}`), "schemas/person.schema.json"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if len(v.schemas) != 1 {
		t.Errorf("Expected 1 cached schema, got %d", len(v.schemas))
	}
}
