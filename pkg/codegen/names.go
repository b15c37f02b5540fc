/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: names.go
Description: Deferred naming of table shapes. Shapes carry no names of their own; each
backend names them at render time with its own reserved words so identical IR can yield
different but always valid names per target.
*/

package codegen

import (
	"strings"

	"github.com/kleascm/typeforge/pkg/ir"
	"github.com/kleascm/typeforge/pkg/naming"
)

// Names is the outcome of naming one rendering
type Names struct {
	Types map[ir.ShapeID]string // Type name per reachable shape
	Order []ir.ShapeID          // Reachable shapes, depth-first in field order
	Root  ir.ShapeID            // Shape that took the root name, empty when there is none
	Alias string                // Declaration name for a root that is not an object, or ""
}

// AssignNames names every shape reachable from root. The root shape (the object reached
// from root through arrays and unions only) takes rootName. When the root is not itself an
// object an alias is named too: rootName when there is no root shape, otherwise rootName
// with a "List" or "Value" suffix. Every other shape is named after rootName followed by
// the raw path of its first occurrence. Collisions get numeric suffixes from scope.
func AssignNames(root *ir.Type, table *ir.Table, rootName string, scope *naming.Scope) *Names {
	n := &Names{
		Types: make(map[ir.ShapeID]string),
		Order: table.Reachable(root),
	}

	if id, ok := table.RootShape(root); ok {
		n.Root = id
		n.Types[id] = scope.TypeName(rootName)
	}

	if !root.IsRef() {
		switch {
		case n.Root == "":
			n.Alias = scope.TypeName(rootName)
		case root.Kind == ir.Array:
			n.Alias = scope.TypeName(rootName + " list")
		default:
			n.Alias = scope.TypeName(rootName + " value")
		}
	}

	for _, id := range n.Order {
		if _, ok := n.Types[id]; ok {
			continue
		}
		s, ok := table.Get(id)
		if !ok {
			continue
		}
		n.Types[id] = scope.TypeName(rootName + " " + strings.Join(s.Path, " "))
	}
	return n
}

// DependencyOrder returns the reachable shapes so that every shape comes after the shapes
// its fields refer to, except across cycles
func DependencyOrder(root *ir.Type, table *ir.Table) []ir.ShapeID {
	seen := make(map[ir.ShapeID]bool)
	var out []ir.ShapeID
	var visit func(id ir.ShapeID)
	visit = func(id ir.ShapeID) {
		if seen[id] {
			return
		}
		seen[id] = true
		if s, ok := table.Get(id); ok {
			for _, f := range s.Fields {
				for _, ref := range f.Type.Refs() {
					visit(ref)
				}
			}
		}
		out = append(out, id)
	}
	for _, ref := range root.Refs() {
		visit(ref)
	}
	return out
}
