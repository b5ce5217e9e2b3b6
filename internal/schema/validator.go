package schema

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalid wraps every shape violation.
var ErrInvalid = errors.New("schema validation failed")

//go:embed schemas/*.json
var builtin embed.FS

// Validator validates data against a JSON Schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles schema bytes. Custom formats are registered first.
func NewValidator(schemaData []byte) (*Validator, error) {
	RegisterCustomFormats()
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaData))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Builtin loads one of the embedded schemas: formation, zone, team or event.
func Builtin(name string) (*Validator, error) {
	data, err := builtin.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	return NewValidator(data)
}

// MustBuiltin is Builtin for package-level initialization.
func MustBuiltin(name string) *Validator {
	v, err := Builtin(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate validates a decoded document.
func (v *Validator) Validate(data interface{}) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	return nil
}

// ValidateBytes validates raw JSON bytes.
func (v *Validator) ValidateBytes(data []byte) error {
	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrInvalid, err)
	}
	return v.Validate(obj)
}
