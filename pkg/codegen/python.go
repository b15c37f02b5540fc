/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: python.go
Description: Python backend. Shapes become dataclasses with typing annotations, emitted so
that referenced classes come first. Postponed annotation evaluation covers cycles.
*/

package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-set/v3"
	"github.com/kleascm/typeforge/pkg/ir"
	"github.com/kleascm/typeforge/pkg/naming"
)

// PythonBackend renders dataclasses
type PythonBackend struct {
	opts   Options
	fields naming.Convention
}

// NewPythonBackend creates the Python backend
func NewPythonBackend(opts Options) (*PythonBackend, error) {
	conv, err := fieldConvention(opts, naming.SnakeCase)
	if err != nil {
		return nil, err
	}
	return &PythonBackend{opts: opts, fields: conv}, nil
}

func (b *PythonBackend) Language() string      { return "python" }
func (b *PythonBackend) FileExtension() string { return "py" }

// pyRender tracks the typing names a rendering needs
type pyRender struct {
	*renderContext
	typing *set.Set[string]
}

// Render implements Backend
func (b *PythonBackend) Render(root *ir.Type, table *ir.Table, rootName string) (*Rendering, error) {
	r := &pyRender{
		renderContext: newRenderContext(b.Language(), root, table, rootName, b.opts),
		typing:        set.New[string](4),
	}

	var decls []Declaration
	for _, id := range DependencyOrder(root, table) {
		decls = append(decls, b.classDecl(r, id))
	}
	// module-level aliases are evaluated eagerly, so they follow the classes
	if r.names.Alias != "" {
		var sb strings.Builder
		if b.opts.IncludeComments {
			fmt.Fprintf(&sb, "# %s is the type of the whole document.\n", r.names.Alias)
		}
		fmt.Fprintf(&sb, "%s = %s\n", r.names.Alias, b.pyType(r, root, nil, ""))
		decls = append(decls, Declaration{Name: r.names.Alias, Source: sb.String()})
	}
	return r.finish(b.prelude(r, len(r.names.Order) > 0), decls), nil
}

func (b *PythonBackend) prelude(r *pyRender, dataclasses bool) string {
	var sb strings.Builder
	if b.opts.IncludeComments {
		sb.WriteString("# Code generated by typeforge. DO NOT EDIT.\n\n")
	}
	sb.WriteString("from __future__ import annotations\n")
	if dataclasses {
		sb.WriteString("\nfrom dataclasses import dataclass\n")
	}
	if r.typing.Size() > 0 {
		names := r.typing.Slice()
		sort.Strings(names)
		if !dataclasses {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "from typing import %s\n", strings.Join(names, ", "))
	}
	return sb.String()
}

func (b *PythonBackend) classDecl(r *pyRender, id ir.ShapeID) Declaration {
	s := r.shape(id)
	name := r.typeName(id)

	scope := naming.NewScope(b.fields, naming.Keywords("python"))
	ms := members(s, scope)

	// a required field after a defaulted one is only legal keyword-only
	decorator := "@dataclass"
	seenDefault := false
	for _, m := range ms {
		if r.optional(m.Field) {
			seenDefault = true
		} else if seenDefault {
			decorator = "@dataclass(kw_only=True)"
			break
		}
	}

	var sb strings.Builder
	sb.WriteString(decorator + "\n")
	fmt.Fprintf(&sb, "class %s:\n", name)
	body := false
	if b.opts.IncludeComments {
		fmt.Fprintf(&sb, "    \"\"\"%s %s.\"\"\"\n", name, pyDocText(r.describe(id)))
		body = true
		if len(ms) > 0 {
			sb.WriteString("\n")
		}
	}
	for _, m := range ms {
		typ, ok := r.override(s, m.Key)
		if !ok {
			typ = b.pyType(r, m.Type, s, m.Key)
		}
		line := fmt.Sprintf("    %s: %s", m.Ident, typ)
		if r.optional(m.Field) {
			if !ok && !strings.HasPrefix(typ, "Optional[") && typ != "Any" {
				r.typing.Insert("Optional")
				typ = "Optional[" + typ + "]"
			}
			line = fmt.Sprintf("    %s: %s = None", m.Ident, typ)
		}
		if m.Material {
			line += "  # " + rawKeyNote(m.Key)
		}
		sb.WriteString(line + "\n")
		body = true
	}
	if !body {
		sb.WriteString("    pass\n")
	}
	return Declaration{Name: name, Source: sb.String()}
}

// pyDocText keeps text from ending a docstring or forming an escape sequence
func pyDocText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"""`, `\"\"\"`)
}

func (b *PythonBackend) pyType(r *pyRender, t *ir.Type, s *ir.Shape, key string) string {
	var typ string
	switch t.Kind {
	case ir.Bool:
		typ = "bool"
	case ir.Int:
		typ = "int"
	case ir.Float:
		typ = "float"
	case ir.String:
		typ = "str"
	case ir.Array:
		typ = "list[" + b.pyType(r, t.Elem, s, key) + "]"
	case ir.Object:
		if t.IsRef() {
			typ = r.typeName(t.Shape)
		} else {
			typ = "dict[str, Any]"
			r.typing.Insert("Any")
		}
	case ir.Union:
		parts := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			parts[i] = b.pyType(r, v, s, key)
		}
		r.typing.Insert("Union")
		typ = "Union[" + strings.Join(parts, ", ") + "]"
	default:
		r.warn(fieldPath(s, key), shapeID(s), "Unknown", "Any")
		r.typing.Insert("Any")
		return "Any"
	}
	if t.Nullable {
		r.typing.Insert("Optional")
		typ = "Optional[" + typ + "]"
	}
	return typ
}
