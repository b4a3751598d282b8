package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidResponse is returned when a response body does not have the
// shape of the todo contract.
var ErrInvalidResponse = errors.New("invalid response")

const schemaBase = "https://todos.local/schema/"

//go:embed schema/*.json
var schemaFS embed.FS

var (
	schemaOnce  sync.Once
	todoSchema  *jsonschema.Schema
	todosSchema *jsonschema.Schema
	schemaErr   error
)

func loadSchemas() error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		for _, name := range []string{"todo.json", "todos.json"} {
			b, err := schemaFS.ReadFile("schema/" + name)
			if err != nil {
				schemaErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(schemaBase+name, bytes.NewReader(b)); err != nil {
				schemaErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
		}
		if todoSchema, schemaErr = compiler.Compile(schemaBase + "todo.json"); schemaErr != nil {
			return
		}
		todosSchema, schemaErr = compiler.Compile(schemaBase + "todos.json")
	})
	return schemaErr
}

// validateBody checks raw JSON against one of the embedded schemas.
func validateBody(raw []byte, list bool) error {
	if err := loadSchemas(); err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	schema := todoSchema
	if list {
		schema = todosSchema
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidResponse, describeSchemaError(err))
	}
	return nil
}

// describeSchemaError flattens a validation error tree into one line.
func describeSchemaError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var msgs []string
	collectSchemaMessages(ve, &msgs)
	return strings.Join(msgs, "; ")
}

func collectSchemaMessages(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaMessages(c, out)
	}
}
