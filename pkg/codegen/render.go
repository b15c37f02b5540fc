/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: render.go
Description: State and helpers shared by the backends during one Render call: shape names,
field identifiers, warnings, type overrides, comment escaping and column alignment.
*/

package codegen

import (
	"strconv"
	"strings"

	"github.com/kleascm/typeforge/pkg/ir"
	"github.com/kleascm/typeforge/pkg/naming"
)

// renderContext is created per Render call and never shared
type renderContext struct {
	target   string
	table    *ir.Table
	root     *ir.Type
	names    *Names
	opts     Options
	types    *naming.Scope // Type names of the whole file
	warnings []*UnsupportedShapeError
}

func newRenderContext(target string, root *ir.Type, table *ir.Table, rootName string, opts Options) *renderContext {
	types := naming.NewScope(naming.PascalCase, naming.ReservedTypeNames(target))
	return &renderContext{
		target: target,
		table:  table,
		root:   root,
		names:  AssignNames(root, table, rootName, types),
		opts:   opts,
		types:  types,
	}
}

// shape returns a reachable shape; names only ever hold ids present in the table
func (c *renderContext) shape(id ir.ShapeID) *ir.Shape {
	s, _ := c.table.Get(id)
	return s
}

func (c *renderContext) typeName(id ir.ShapeID) string {
	return c.names.Types[id]
}

func (c *renderContext) warn(path string, owner ir.ShapeID, construct, fallback string) {
	c.warnings = append(c.warnings, &UnsupportedShapeError{
		Target:    c.target,
		Path:      path,
		Shape:     owner,
		Construct: construct,
		Fallback:  fallback,
	})
}

// finish builds the rendering from the collected declarations
func (c *renderContext) finish(prelude string, decls []Declaration) *Rendering {
	return &Rendering{
		Target:       c.target,
		Prelude:      prelude,
		Declarations: decls,
		Warnings:     c.warnings,
	}
}

// optional reports whether f renders with an optional wrapper
func (c *renderContext) optional(f ir.Field) bool {
	return f.Optional && c.opts.OptionalFields
}

// override returns the configured literal type for a field, if any
func (c *renderContext) override(s *ir.Shape, key string) (string, bool) {
	if len(c.opts.TypeOverrides) == 0 {
		return "", false
	}
	lit, ok := c.opts.TypeOverrides[fieldPath(s, key)]
	return lit, ok
}

// fieldPath is the dotted raw path of a field at the shape's first occurrence
func fieldPath(s *ir.Shape, key string) string {
	if s == nil {
		return key
	}
	return strings.Join(append(append([]string(nil), s.Path...), key), ".")
}

// member is a field paired with its target identifier
type member struct {
	ir.Field
	Ident    string
	Material bool // Identifier differs from the raw key by more than case
}

// members normalizes the field keys of s in a fresh field scope
func members(s *ir.Shape, scope *naming.Scope) []member {
	out := make([]member, len(s.Fields))
	for i, f := range s.Fields {
		ident := scope.Name(f.Key)
		out[i] = member{Field: f, Ident: ident, Material: naming.Material(f.Key, ident)}
	}
	return out
}

// fieldConvention resolves the field casing, honoring Options.FieldConvention
func fieldConvention(opts Options, def naming.Convention) (naming.Convention, error) {
	if opts.FieldConvention == "" {
		return def, nil
	}
	return naming.ParseConvention(opts.FieldConvention)
}

// describe returns the doc text of a shape
func (c *renderContext) describe(id ir.ShapeID) string {
	s := c.shape(id)
	// A merged recursive shape keeps the path of its first occurrence, which may be nested
	if s == nil || len(s.Path) == 0 || id == c.names.Root {
		return "mirrors the JSON object at the document root"
	}
	return "mirrors the JSON object at " + commentText(strings.Join(s.Path, "."))
}

// commentText makes raw text safe inside a line or block comment
func commentText(s string) string {
	s = strings.ReplaceAll(s, "*/", "* /")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// rawKeyNote is the comment attached to a materially renamed field
func rawKeyNote(key string) string {
	return "JSON key " + commentText(strconv.Quote(key))
}

// alignColumns pads every cell but the last of each row to the widest cell in its column.
// Trailing empty cells are dropped.
func alignColumns(rows [][]string, indent string) string {
	for i, row := range rows {
		for len(row) > 0 && row[len(row)-1] == "" {
			row = row[:len(row)-1]
		}
		rows[i] = row
	}
	var widths []int
	for _, row := range rows {
		for i := 0; i < len(row)-1; i++ {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if l := len([]rune(row[i])); l > widths[i] {
				widths[i] = l
			}
		}
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(indent)
		for i, cell := range row {
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len([]rune(cell))+1))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
