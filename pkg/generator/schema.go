package generator

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
)

// headerProperties describes the fields promoted from models.Header. The
// reflector does not flatten embedded structs, and phone_number must accept
// null.
var headerProperties = map[string]any{
	"company_name":  map[string]any{"type": "string", "description": "Full legal name of the company"},
	"last_updated":  map[string]any{"type": "string", "description": "Date in YYYY-MM-DD format"},
	"website_url":   map[string]any{"type": "string", "description": "Company website URL"},
	"contact_email": map[string]any{"type": "string", "description": "Contact email for inquiries"},
	"phone_number":  map[string]any{"type": []string{"string", "null"}, "description": "Contact phone number, null if not provided"},
}

var headerFields = []string{"company_name", "last_updated", "website_url", "contact_email", "phone_number"}

// SchemaFor derives the JSON Schema of a structured document type.
func SchemaFor(doc models.StructuredDocument, description string) (types.Schema, error) {
	def, err := jsonschema.GenerateSchemaForType(doc)
	if err != nil {
		return types.Schema{}, fmt.Errorf("failed to generate schema for %s: %w", doc.Type(), err)
	}

	raw, err := json.Marshal(def)
	if err != nil {
		return types.Schema{}, fmt.Errorf("failed to encode schema for %s: %w", doc.Type(), err)
	}

	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return types.Schema{}, fmt.Errorf("failed to decode schema for %s: %w", doc.Type(), err)
	}
	flattenHeader(tree)
	nullablePointers(tree, reflect.TypeOf(doc).Elem())

	out, err := json.Marshal(tree)
	if err != nil {
		return types.Schema{}, fmt.Errorf("failed to encode schema for %s: %w", doc.Type(), err)
	}

	return types.Schema{
		Name:        string(doc.Type()),
		Description: description,
		Definition:  out,
	}, nil
}

func flattenHeader(tree map[string]any) {
	props, _ := tree["properties"].(map[string]any)
	if props == nil {
		props = map[string]any{}
		tree["properties"] = props
	}
	delete(props, "Header")
	for k, v := range headerProperties {
		props[k] = v
	}

	required := append([]string{}, headerFields...)
	if existing, ok := tree["required"].([]any); ok {
		for _, r := range existing {
			if name, ok := r.(string); ok && name != "Header" {
				required = append(required, name)
			}
		}
	}
	tree["required"] = required
	tree["additionalProperties"] = false

	if defs, ok := tree["$defs"].(map[string]any); ok {
		delete(defs, "Header")
	}
}

var headerType = reflect.TypeOf(models.Header{})

// nullablePointers lets every *string field accept null. The reflector
// renders a pointer as its element type, and strict mode would then force the
// model to invent a value.
func nullablePointers(tree map[string]any, root reflect.Type) {
	defs, _ := tree["$defs"].(map[string]any)
	seen := map[reflect.Type]bool{}

	var visit func(t reflect.Type, node map[string]any)
	visit = func(t reflect.Type, node map[string]any) {
		if seen[t] {
			return
		}
		seen[t] = true
		props, _ := node["properties"].(map[string]any)

		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || f.Type == headerType {
				continue
			}
			name := strings.TrimSuffix(f.Tag.Get("json"), ",omitempty")
			if name == "" {
				name = f.Name
			}
			if f.Type.Kind() == reflect.Ptr && f.Type.Elem().Kind() == reflect.String {
				if prop, ok := props[name].(map[string]any); ok {
					prop["type"] = []string{"string", "null"}
				}
			}

			elem := f.Type
			for elem.Kind() == reflect.Ptr || elem.Kind() == reflect.Slice {
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.Struct || elem.Name() == "" {
				continue
			}
			if def, ok := defs[elem.Name()].(map[string]any); ok {
				visit(elem, def)
			}
		}
	}
	visit(root, tree)
}
