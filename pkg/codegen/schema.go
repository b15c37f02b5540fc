/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: schema.go
Description: JSON Schema backend. Renders the IR as one draft 2020-12 document: every shape
becomes an entry under $defs, references use $ref and unions use anyOf. Property order
follows the inferred field order.
*/

package codegen

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	"github.com/kleascm/typeforge/pkg/ir"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SchemaBackend renders a JSON Schema document
type SchemaBackend struct {
	opts Options
}

// NewSchemaBackend creates the schema backend
func NewSchemaBackend(opts Options) (*SchemaBackend, error) {
	return &SchemaBackend{opts: opts}, nil
}

func (b *SchemaBackend) Language() string      { return "schema" }
func (b *SchemaBackend) FileExtension() string { return "schema.json" }

// Render implements Backend. The whole document is a single declaration named after
// the root.
func (b *SchemaBackend) Render(root *ir.Type, table *ir.Table, rootName string) (*Rendering, error) {
	c := newRenderContext(b.Language(), root, table, rootName, b.opts)

	doc := b.schemaFor(c, root, nil, "")
	doc.Version = jsonschema.Version
	doc.Title = rootName
	if b.opts.IncludeComments {
		doc.Description = "Generated by typeforge."
	}
	if len(c.names.Order) > 0 {
		doc.Definitions = make(jsonschema.Definitions, len(c.names.Order))
		for _, id := range c.names.Order {
			doc.Definitions[c.typeName(id)] = b.objectSchema(c, id)
		}
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "encode schema for %s", rootName)
	}
	name := rootName
	if c.names.Alias != "" {
		name = c.names.Alias
	} else if c.names.Root != "" {
		name = c.typeName(c.names.Root)
	}
	return c.finish("", []Declaration{{Name: name, Source: string(raw) + "\n"}}), nil
}

func (b *SchemaBackend) objectSchema(c *renderContext, id ir.ShapeID) *jsonschema.Schema {
	s := c.shape(id)
	out := &jsonschema.Schema{
		Type:       "object",
		Properties: orderedmap.New[string, *jsonschema.Schema](),
	}
	if b.opts.IncludeComments {
		out.Description = c.typeName(id) + " " + c.describe(id) + "."
	}
	for _, f := range s.Fields {
		var prop *jsonschema.Schema
		if lit, ok := c.override(s, f.Key); ok {
			prop = overrideSchema(lit)
		} else {
			prop = b.schemaFor(c, f.Type, s, f.Key)
		}
		out.Properties.Set(f.Key, prop)
		if !c.optional(f) {
			out.Required = append(out.Required, f.Key)
		}
	}
	return out
}

func (b *SchemaBackend) schemaFor(c *renderContext, t *ir.Type, s *ir.Shape, key string) *jsonschema.Schema {
	var out *jsonschema.Schema
	switch t.Kind {
	case ir.Bool:
		out = &jsonschema.Schema{Type: "boolean"}
	case ir.Int:
		out = &jsonschema.Schema{Type: "integer"}
	case ir.Float:
		out = &jsonschema.Schema{Type: "number"}
	case ir.String:
		out = &jsonschema.Schema{Type: "string"}
	case ir.Array:
		out = &jsonschema.Schema{Type: "array", Items: b.schemaFor(c, t.Elem, s, key)}
	case ir.Object:
		if t.IsRef() {
			out = &jsonschema.Schema{Ref: "#/$defs/" + c.typeName(t.Shape)}
		} else {
			out = &jsonschema.Schema{Type: "object"}
		}
	case ir.Union:
		out = &jsonschema.Schema{}
		for _, v := range t.Variants {
			out.AnyOf = append(out.AnyOf, b.schemaFor(c, v, s, key))
		}
	default:
		c.warn(fieldPath(s, key), shapeID(s), "Unknown", "{}")
		return &jsonschema.Schema{}
	}
	if t.Nullable {
		return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{out, {Type: "null"}}}
	}
	return out
}

// overrideSchema reads a type override: a JSON object is taken as a literal schema,
// anything else as a type name
func overrideSchema(lit string) *jsonschema.Schema {
	out := &jsonschema.Schema{}
	if len(lit) > 0 && lit[0] == '{' && json.Unmarshal([]byte(lit), out) == nil {
		return out
	}
	return &jsonschema.Schema{Type: lit}
}
