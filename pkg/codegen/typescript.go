/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: typescript.go
Description: TypeScript backend. Shapes become exported interfaces and unions stay native
union types.
*/

package codegen

import (
	"fmt"
	"strings"

	"github.com/kleascm/typeforge/pkg/ir"
	"github.com/kleascm/typeforge/pkg/naming"
)

// TypeScriptBackend renders exported interfaces
type TypeScriptBackend struct {
	opts   Options
	fields naming.Convention
}

// NewTypeScriptBackend creates the TypeScript backend
func NewTypeScriptBackend(opts Options) (*TypeScriptBackend, error) {
	conv, err := fieldConvention(opts, naming.CamelCase)
	if err != nil {
		return nil, err
	}
	return &TypeScriptBackend{opts: opts, fields: conv}, nil
}

func (b *TypeScriptBackend) Language() string      { return "typescript" }
func (b *TypeScriptBackend) FileExtension() string { return "ts" }

// Render implements Backend
func (b *TypeScriptBackend) Render(root *ir.Type, table *ir.Table, rootName string) (*Rendering, error) {
	c := newRenderContext(b.Language(), root, table, rootName, b.opts)

	var decls []Declaration
	if c.names.Alias != "" {
		var sb strings.Builder
		if b.opts.IncludeComments {
			fmt.Fprintf(&sb, "/** %s is the type of the whole document. */\n", c.names.Alias)
		}
		fmt.Fprintf(&sb, "export type %s = %s;\n", c.names.Alias, b.tsType(c, root, nil, ""))
		decls = append(decls, Declaration{Name: c.names.Alias, Source: sb.String()})
	}
	for _, id := range c.names.Order {
		decls = append(decls, b.interfaceDecl(c, id))
	}

	prelude := ""
	if b.opts.IncludeComments {
		prelude = "// Code generated by typeforge. DO NOT EDIT.\n"
	}
	return c.finish(prelude, decls), nil
}

func (b *TypeScriptBackend) interfaceDecl(c *renderContext, id ir.ShapeID) Declaration {
	s := c.shape(id)
	name := c.typeName(id)

	var sb strings.Builder
	if b.opts.IncludeComments {
		fmt.Fprintf(&sb, "/** %s %s. */\n", name, c.describe(id))
	}
	if len(s.Fields) == 0 {
		fmt.Fprintf(&sb, "export interface %s {}\n", name)
		return Declaration{Name: name, Source: sb.String()}
	}

	fmt.Fprintf(&sb, "export interface %s {\n", name)
	scope := naming.NewScope(b.fields, naming.Keywords("typescript"))
	for _, m := range members(s, scope) {
		if m.Material {
			fmt.Fprintf(&sb, "  /** %s */\n", rawKeyNote(m.Key))
		}
		typ, ok := c.override(s, m.Key)
		if !ok {
			typ = b.tsType(c, m.Type, s, m.Key)
		}
		opt := ""
		if c.optional(m.Field) {
			opt = "?"
		}
		fmt.Fprintf(&sb, "  %s%s: %s;\n", m.Ident, opt, typ)
	}
	sb.WriteString("}\n")
	return Declaration{Name: name, Source: sb.String()}
}

func (b *TypeScriptBackend) tsType(c *renderContext, t *ir.Type, s *ir.Shape, key string) string {
	var typ string
	switch t.Kind {
	case ir.Bool:
		typ = "boolean"
	case ir.Int, ir.Float:
		typ = "number"
	case ir.String:
		typ = "string"
	case ir.Array:
		elem := b.tsType(c, t.Elem, s, key)
		if strings.Contains(elem, " ") {
			elem = "(" + elem + ")"
		}
		return withNull(elem+"[]", t.Nullable)
	case ir.Object:
		if t.IsRef() {
			typ = c.typeName(t.Shape)
		} else {
			typ = "Record<string, unknown>"
		}
	case ir.Union:
		parts := make([]string, 0, len(t.Variants))
		for _, v := range t.Variants {
			parts = append(parts, b.tsType(c, v, s, key))
		}
		typ = strings.Join(parts, " | ")
	default:
		c.warn(fieldPath(s, key), shapeID(s), "Unknown", "unknown")
		return "unknown"
	}
	return withNull(typ, t.Nullable)
}

func withNull(typ string, nullable bool) string {
	if !nullable {
		return typ
	}
	return typ + " | null"
}
