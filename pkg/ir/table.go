/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: table.go
Description: Named-type table. Every object of the finished IR is a reference into this
table, keyed by a fingerprint of the object's key set, so repeated nested shapes are
declared once. Shapes remember the raw field path of their first occurrence; names are
assigned later by the code generators.
*/

package ir

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ShapeID fingerprints the key set of an object
type ShapeID string

// shapeNamespace scopes the name-based UUIDs used as shape fingerprints
var shapeNamespace = uuid.MustParse("6f1f7a52-2d0e-5c8a-9b43-1e07c0de5ba9")

// ShapeIDOf returns the fingerprint of a key set. Key order does not matter.
func ShapeIDOf(keys []string) ShapeID {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	var b strings.Builder
	for _, k := range sorted {
		fmt.Fprintf(&b, "%d:%s;", len(k), k)
	}
	return ShapeID(uuid.NewSHA1(shapeNamespace, []byte(b.String())).String())
}

// Short returns the first eight characters of the id, for logs and debug output
func (id ShapeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// Shape is one entry of the table
type Shape struct {
	ID     ShapeID
	Fields []Field  // First-seen order
	Path   []string // Raw keys from the root to the first occurrence
}

// Keys returns the raw keys in field order
func (s *Shape) Keys() []string {
	keys := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Index returns the position of key in the field list, or -1
func (s *Shape) Index(key string) int {
	for i, f := range s.Fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// Table maps shape fingerprints to shapes, remembering insertion order
type Table struct {
	shapes map[ShapeID]*Shape
	order  []ShapeID
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{shapes: make(map[ShapeID]*Shape)}
}

// Put inserts a new shape. It is meant for the inference engine while samples are
// being consumed; a finished table is read-only.
func (t *Table) Put(s *Shape) {
	if _, ok := t.shapes[s.ID]; !ok {
		t.order = append(t.order, s.ID)
	}
	t.shapes[s.ID] = s
}

// Get returns the shape with the given id
func (t *Table) Get(id ShapeID) (*Shape, bool) {
	s, ok := t.shapes[id]
	return s, ok
}

// Len returns the number of entries, reachable or not
func (t *Table) Len() int { return len(t.order) }

// IDs returns every id in insertion order
func (t *Table) IDs() []ShapeID {
	return append([]ShapeID(nil), t.order...)
}

// Position returns the insertion index of id, or -1
func (t *Table) Position(id ShapeID) int {
	for i, o := range t.order {
		if o == id {
			return i
		}
	}
	return -1
}

// Reachable returns the shapes reachable from root, depth-first in field order. Each
// shape appears once even when the graph has cycles.
func (t *Table) Reachable(root *Type) []ShapeID {
	seen := make(map[ShapeID]bool)
	var out []ShapeID
	var visit func(id ShapeID)
	visit = func(id ShapeID) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
		s, ok := t.shapes[id]
		if !ok {
			return
		}
		for _, f := range s.Fields {
			for _, ref := range f.Type.Refs() {
				visit(ref)
			}
		}
	}
	for _, ref := range root.Refs() {
		visit(ref)
	}
	return out
}

// RootShape returns the object reached from root through arrays and unions only. That
// shape takes the caller-supplied root name.
func (t *Table) RootShape(root *Type) (ShapeID, bool) {
	switch root.Kind {
	case Object:
		return root.Shape, root.Shape != ""
	case Array:
		return t.RootShape(root.Elem)
	case Union:
		for _, v := range root.Variants {
			if id, ok := t.RootShape(v); ok {
				return id, true
			}
		}
	}
	return "", false
}

// Reaches reports whether dst can be reached from src by following field references
func (t *Table) Reaches(src, dst ShapeID) bool {
	seen := make(map[ShapeID]bool)
	var walk func(id ShapeID) bool
	walk = func(id ShapeID) bool {
		if seen[id] {
			return false
		}
		seen[id] = true
		s, ok := t.shapes[id]
		if !ok {
			return false
		}
		for _, f := range s.Fields {
			for _, ref := range f.Type.Refs() {
				if ref == dst || walk(ref) {
					return true
				}
			}
		}
		return false
	}
	return walk(src)
}

// Recursive reports whether a field of owner that refers to target closes a cycle,
// i.e. target leads back to owner
func (t *Table) Recursive(owner, target ShapeID) bool {
	return owner == target || t.Reaches(target, owner)
}

type fieldDump struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	Optional bool   `json:"optional"`
}

type shapeDump struct {
	ID     ShapeID     `json:"id"`
	Path   []string    `json:"path"`
	Fields []fieldDump `json:"fields"`
}

// MarshalJSON dumps the table in insertion order
func (t *Table) MarshalJSON() ([]byte, error) {
	out := make([]shapeDump, 0, len(t.order))
	for _, id := range t.order {
		s := t.shapes[id]
		d := shapeDump{ID: id, Path: s.Path, Fields: make([]fieldDump, 0, len(s.Fields))}
		if d.Path == nil {
			d.Path = []string{}
		}
		for _, f := range s.Fields {
			d.Fields = append(d.Fields, fieldDump{Key: f.Key, Type: f.Type.String(), Optional: f.Optional})
		}
		out = append(out, d)
	}
	return json.Marshal(map[string]interface{}{"shapes": out})
}
