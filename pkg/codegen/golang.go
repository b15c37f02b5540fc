/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: golang.go
Description: Go backend. Shapes become structs with encoding/json tags, optional fields
become pointers with omitempty, and unions widen to any with a warning since Go has no sum
types.
*/

package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kleascm/typeforge/pkg/ir"
	"github.com/kleascm/typeforge/pkg/naming"
)

// GoBackend renders Go structs
type GoBackend struct {
	opts   Options
	fields naming.Convention
}

// NewGoBackend creates the Go backend
func NewGoBackend(opts Options) (*GoBackend, error) {
	conv, err := fieldConvention(opts, naming.GoPascalCase)
	if err != nil {
		return nil, err
	}
	if opts.Package == "" {
		opts.Package = "main"
	}
	return &GoBackend{opts: opts, fields: conv}, nil
}

func (b *GoBackend) Language() string      { return "go" }
func (b *GoBackend) FileExtension() string { return "go" }

// Render implements Backend
func (b *GoBackend) Render(root *ir.Type, table *ir.Table, rootName string) (*Rendering, error) {
	c := newRenderContext(b.Language(), root, table, rootName, b.opts)

	var decls []Declaration
	if c.names.Alias != "" {
		decls = append(decls, b.alias(c))
	}
	for _, id := range c.names.Order {
		decls = append(decls, b.structDecl(c, id))
	}
	return c.finish(b.prelude(), decls), nil
}

func (b *GoBackend) prelude() string {
	var sb strings.Builder
	if b.opts.IncludeComments {
		sb.WriteString("// Code generated by typeforge. DO NOT EDIT.\n\n")
	}
	fmt.Fprintf(&sb, "package %s\n", b.opts.Package)
	return sb.String()
}

func (b *GoBackend) alias(c *renderContext) Declaration {
	var sb strings.Builder
	if b.opts.IncludeComments {
		fmt.Fprintf(&sb, "// %s is the type of the whole document.\n", c.names.Alias)
	}
	fmt.Fprintf(&sb, "type %s = %s\n", c.names.Alias, b.goType(c, c.root, "", nil))
	return Declaration{Name: c.names.Alias, Source: sb.String()}
}

func (b *GoBackend) structDecl(c *renderContext, id ir.ShapeID) Declaration {
	s := c.shape(id)
	name := c.typeName(id)

	var sb strings.Builder
	if b.opts.IncludeComments {
		fmt.Fprintf(&sb, "// %s %s.\n", name, c.describe(id))
	}
	if len(s.Fields) == 0 {
		fmt.Fprintf(&sb, "type %s struct{}\n", name)
		return Declaration{Name: name, Source: sb.String()}
	}

	fmt.Fprintf(&sb, "type %s struct {\n", name)
	scope := naming.NewScope(b.fields, naming.Keywords("go"))
	rows := make([][]string, 0, len(s.Fields))
	for _, m := range members(s, scope) {
		typ := b.fieldType(c, s, m.Field)
		note := ""
		if m.Material {
			note = "// " + rawKeyNote(m.Key)
		}
		rows = append(rows, []string{m.Ident, typ, b.tag(c, s, m), note})
	}
	sb.WriteString(alignColumns(rows, "\t"))
	sb.WriteString("}\n")
	return Declaration{Name: name, Source: sb.String()}
}

func (b *GoBackend) fieldType(c *renderContext, s *ir.Shape, f ir.Field) string {
	if lit, ok := c.override(s, f.Key); ok {
		return lit
	}
	t := f.Type
	typ := b.goType(c, t, fieldPath(s, f.Key), s)
	if t.IsRef() && c.table.Recursive(s.ID, t.Shape) {
		return "*" + typ
	}
	if c.optional(f) && !nilable(t) {
		return "*" + typ
	}
	return typ
}

// nilable reports whether the Go rendering of t already has a nil value
func nilable(t *ir.Type) bool {
	switch t.Kind {
	case ir.Unknown, ir.Null, ir.Array, ir.Union:
		return true
	}
	return false
}

func (b *GoBackend) goType(c *renderContext, t *ir.Type, path string, owner *ir.Shape) string {
	var ownerID ir.ShapeID
	if owner != nil {
		ownerID = owner.ID
	}
	switch t.Kind {
	case ir.Bool:
		return "bool"
	case ir.Int:
		return "int64"
	case ir.Float:
		return "float64"
	case ir.String:
		return "string"
	case ir.Array:
		elem := b.goType(c, t.Elem, path, owner)
		if t.Elem.Nullable && !nilable(t.Elem) {
			elem = "*" + elem
		}
		return "[]" + elem
	case ir.Object:
		if t.IsRef() {
			return c.typeName(t.Shape)
		}
		c.warn(path, ownerID, "inline object", "map[string]any")
		return "map[string]any"
	case ir.Union:
		c.warn(path, ownerID, t.String(), "any")
		return "any"
	default:
		c.warn(path, ownerID, "Unknown", "any")
		return "any"
	}
}

// tag returns the struct tag literal. Keys with a backquote need an interpreted literal.
func (b *GoBackend) tag(c *renderContext, s *ir.Shape, m member) string {
	var value string
	switch {
	case m.Key == "" || strings.Contains(m.Key, ","):
		c.warn(fieldPath(s, m.Key), s.ID, "JSON key "+strconv.Quote(m.Key), "field skipped by encoding/json")
		return "`json:\"-\"`"
	case m.Key == "-":
		value = "-,"
	default:
		value = m.Key
	}
	if c.optional(m.Field) {
		if value == "-," {
			value = "-"
		}
		value += ",omitempty"
	}
	lit := "json:" + strconv.Quote(value)
	if strings.Contains(lit, "`") {
		return strconv.Quote(lit)
	}
	return "`" + lit + "`"
}
