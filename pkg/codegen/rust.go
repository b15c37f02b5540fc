/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: rust.go
Description: Rust backend. Shapes become serde structs, unions become untagged enums named
after their owning type and field, optional fields become Option, and references that
close a cycle are boxed.
*/

package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kleascm/typeforge/pkg/ir"
	"github.com/kleascm/typeforge/pkg/naming"
)

const rustDerive = "#[derive(Debug, Clone, PartialEq, Serialize, Deserialize)]"

// RustBackend renders serde structs and enums
type RustBackend struct {
	opts   Options
	fields naming.Convention
}

// NewRustBackend creates the Rust backend
func NewRustBackend(opts Options) (*RustBackend, error) {
	conv, err := fieldConvention(opts, naming.SnakeCase)
	if err != nil {
		return nil, err
	}
	return &RustBackend{opts: opts, fields: conv}, nil
}

func (b *RustBackend) Language() string      { return "rust" }
func (b *RustBackend) FileExtension() string { return "rs" }

// rustRender carries the enums produced while rendering one struct
type rustRender struct {
	*renderContext
	enums []Declaration
}

// Render implements Backend
func (b *RustBackend) Render(root *ir.Type, table *ir.Table, rootName string) (*Rendering, error) {
	r := &rustRender{renderContext: newRenderContext(b.Language(), root, table, rootName, b.opts)}

	var decls []Declaration
	if r.names.Alias != "" {
		decls = append(decls, b.alias(r)...)
	}
	for _, id := range r.names.Order {
		decls = append(decls, b.structDecl(r, id))
		decls = append(decls, r.enums...)
		r.enums = nil
	}
	return r.finish(b.prelude(), decls), nil
}

func (b *RustBackend) prelude() string {
	var sb strings.Builder
	if b.opts.IncludeComments {
		sb.WriteString("// Code generated by typeforge. DO NOT EDIT.\n\n")
	}
	sb.WriteString("use serde::{Deserialize, Serialize};\n")
	return sb.String()
}

func (b *RustBackend) alias(r *rustRender) []Declaration {
	name := r.names.Alias
	if r.root.Kind == ir.Union {
		// the enum itself is the root declaration
		enum := b.enumDecl(r, name, r.root, nil, "")
		return append([]Declaration{enum}, b.drainEnums(r)...)
	}
	var sb strings.Builder
	if b.opts.IncludeComments {
		fmt.Fprintf(&sb, "/// %s is the type of the whole document.\n", name)
	}
	fmt.Fprintf(&sb, "pub type %s = %s;\n", name, b.rustType(r, r.root, nil, name, ""))
	return append([]Declaration{{Name: name, Source: sb.String()}}, b.drainEnums(r)...)
}

func (b *RustBackend) drainEnums(r *rustRender) []Declaration {
	out := r.enums
	r.enums = nil
	return out
}

func (b *RustBackend) structDecl(r *rustRender, id ir.ShapeID) Declaration {
	s := r.shape(id)
	name := r.typeName(id)

	var sb strings.Builder
	if b.opts.IncludeComments {
		fmt.Fprintf(&sb, "/// %s %s.\n", name, r.describe(id))
	}
	sb.WriteString(rustDerive + "\n")
	if len(s.Fields) == 0 {
		fmt.Fprintf(&sb, "pub struct %s {}\n", name)
		return Declaration{Name: name, Source: sb.String()}
	}

	fmt.Fprintf(&sb, "pub struct %s {\n", name)
	scope := naming.NewScope(b.fields, naming.Keywords("rust"))
	for _, m := range members(s, scope) {
		if m.Material {
			fmt.Fprintf(&sb, "    /// %s\n", rawKeyNote(m.Key))
		}
		var attrs []string
		if m.Ident != m.Key {
			attrs = append(attrs, "rename = "+strconv.Quote(m.Key))
		}
		typ := b.fieldType(r, s, name, m)
		if r.optional(m.Field) {
			attrs = append(attrs, "default", `skip_serializing_if = "Option::is_none"`)
		}
		if len(attrs) > 0 {
			fmt.Fprintf(&sb, "    #[serde(%s)]\n", strings.Join(attrs, ", "))
		}
		fmt.Fprintf(&sb, "    pub %s: %s,\n", m.Ident, typ)
	}
	sb.WriteString("}\n")
	return Declaration{Name: name, Source: sb.String()}
}

func (b *RustBackend) fieldType(r *rustRender, s *ir.Shape, owner string, m member) string {
	if lit, ok := r.override(s, m.Key); ok {
		return lit
	}
	typ := b.rustType(r, m.Type, s, owner, m.Key)
	if m.Type.IsRef() && r.table.Recursive(s.ID, m.Type.Shape) {
		typ = "Box<" + typ + ">"
	}
	if r.optional(m.Field) {
		typ = "Option<" + typ + ">"
	}
	return typ
}

// rustType maps t. Unions are declared as enums named after owner and key.
func (b *RustBackend) rustType(r *rustRender, t *ir.Type, s *ir.Shape, owner, key string) string {
	var typ string
	switch t.Kind {
	case ir.Bool:
		typ = "bool"
	case ir.Int:
		typ = "i64"
	case ir.Float:
		typ = "f64"
	case ir.String:
		typ = "String"
	case ir.Array:
		typ = "Vec<" + b.rustType(r, t.Elem, s, owner, key+"[]") + ">"
	case ir.Object:
		if t.IsRef() {
			typ = r.typeName(t.Shape)
		} else {
			r.warn(fieldPath(s, key), shapeID(s), "inline object", "serde_json::Value")
			typ = "serde_json::Value"
		}
	case ir.Union:
		name := r.types.TypeName(owner + " " + key)
		r.enums = append(r.enums, b.enumDecl(r, name, t, s, key))
		typ = name
	default:
		r.warn(fieldPath(s, key), shapeID(s), "Unknown", "serde_json::Value")
		typ = "serde_json::Value"
	}
	if t.Nullable && t.Kind != ir.Unknown {
		typ = "Option<" + typ + ">"
	}
	return typ
}

// enumDecl declares an untagged enum with one variant per union member
func (b *RustBackend) enumDecl(r *rustRender, name string, t *ir.Type, s *ir.Shape, key string) Declaration {
	var sb strings.Builder
	if b.opts.IncludeComments {
		fmt.Fprintf(&sb, "/// %s holds any of the JSON kinds seen at %s.\n", name, describePath(s, key))
	}
	sb.WriteString(rustDerive + "\n")
	sb.WriteString("#[serde(untagged)]\n")
	fmt.Fprintf(&sb, "pub enum %s {\n", name)
	for _, v := range t.Variants {
		variant := *v
		variant.Nullable = false
		typ := b.rustType(r, &variant, s, name, v.Kind.String())
		if v.IsRef() && s != nil && r.table.Recursive(s.ID, v.Shape) {
			typ = "Box<" + typ + ">"
		}
		fmt.Fprintf(&sb, "    %s(%s),\n", v.Kind.String(), typ)
	}
	sb.WriteString("}\n")
	return Declaration{Name: name, Source: sb.String()}
}

func describePath(s *ir.Shape, key string) string {
	if key == "" {
		return "the document root"
	}
	return fieldPath(s, key)
}

func shapeID(s *ir.Shape) ir.ShapeID {
	if s == nil {
		return ""
	}
	return s.ID
}
