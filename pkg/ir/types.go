/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Language-agnostic type model shared by inference and code generation. A Type is
a tagged variant (unknown, null, bool, int, float, string, array, object, union). Objects
are either inline field lists (while samples are being folded) or references into the
shape table (once interned).
*/

package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the tag of a Type. The declaration order is the canonical order of union
// variants.
type Kind int

const (
	Unknown Kind = iota
	Null
	Bool
	Int
	Float
	String
	Array
	Object
	Union
)

var kindNames = map[Kind]string{
	Unknown: "Unknown",
	Null:    "Null",
	Bool:    "Bool",
	Int:     "Int",
	Float:   "Float",
	String:  "String",
	Array:   "Array",
	Object:  "Object",
	Union:   "Union",
}

// String returns the kind name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsScalar reports whether the kind carries no nested types
func (k Kind) IsScalar() bool {
	return k == Bool || k == Int || k == Float || k == String
}

// Field is one member of an object type
type Field struct {
	Key      string // Raw JSON key
	Type     *Type  // Field type
	Optional bool   // Absent or null in at least one sample
}

// Type is a node of the intermediate representation
type Type struct {
	Kind     Kind
	Nullable bool    // null was observed at this position
	Elem     *Type   // Array element type
	Shape    ShapeID // Object reference into the table (interned objects)
	Fields   []Field // Inline object fields (before interning)
	Variants []*Type // Union members in canonical kind order
}

// NewUnknown returns the type of a position with no observations
func NewUnknown() *Type { return &Type{Kind: Unknown} }

// NewNull returns the null type
func NewNull() *Type { return &Type{Kind: Null} }

// NewScalar returns a scalar type of the given kind
func NewScalar(k Kind) *Type { return &Type{Kind: k} }

// ArrayOf returns an array type with the given element type
func ArrayOf(elem *Type) *Type { return &Type{Kind: Array, Elem: elem} }

// InlineObject returns an object type that carries its own fields
func InlineObject(fields ...Field) *Type { return &Type{Kind: Object, Fields: fields} }

// Ref returns an object type that refers to a table entry
func Ref(id ShapeID) *Type { return &Type{Kind: Object, Shape: id} }

// UnionOf folds the given types into one type with Unify
func UnionOf(types ...*Type) *Type {
	out := NewUnknown()
	for _, t := range types {
		out = Unify(out, t)
	}
	return out
}

// IsRef reports whether t is an interned object reference
func (t *Type) IsRef() bool { return t.Kind == Object && t.Shape != "" }

// Field returns the inline field with the given key
func (t *Type) Field(key string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Variant returns the union member of kind k, or nil
func (t *Type) Variant(k Kind) *Type {
	for _, v := range t.Variants {
		if v.Kind == k {
			return v
		}
	}
	return nil
}

// Refs returns the shape references contained in t, in traversal order, without
// following them into the table
func (t *Type) Refs() []ShapeID {
	var out []ShapeID
	var walk func(*Type)
	walk = func(n *Type) {
		if n == nil {
			return
		}
		switch n.Kind {
		case Array:
			walk(n.Elem)
		case Union:
			for _, v := range n.Variants {
				walk(v)
			}
		case Object:
			if n.Shape != "" {
				out = append(out, n.Shape)
				return
			}
			for _, f := range n.Fields {
				walk(f.Type)
			}
		}
	}
	walk(t)
	return out
}

// String renders t compactly, e.g. "[]Int", "String|Int", "{id:Int, nick?:String}"
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var s string
	switch t.Kind {
	case Array:
		s = "[]" + t.Elem.String()
	case Union:
		parts := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			parts[i] = v.String()
		}
		s = strings.Join(parts, "|")
		if t.Nullable {
			return "(" + s + ")?"
		}
		return s
	case Object:
		if t.Shape != "" {
			s = "Object(" + t.Shape.Short() + ")"
			break
		}
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			opt := ""
			if f.Optional {
				opt = "?"
			}
			parts[i] = f.Key + opt + ":" + f.Type.String()
		}
		s = "{" + strings.Join(parts, ", ") + "}"
	default:
		s = t.Kind.String()
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

// Equal reports structural equality. Inline objects compare as field sets, so two
// objects that differ only in field order are equal.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Nullable != b.Nullable {
		return false
	}
	switch a.Kind {
	case Array:
		return Equal(a.Elem, b.Elem)
	case Union:
		if len(a.Variants) != len(b.Variants) {
			return false
		}
		for i := range a.Variants {
			if !Equal(a.Variants[i], b.Variants[i]) {
				return false
			}
		}
		return true
	case Object:
		if a.Shape != "" || b.Shape != "" {
			return a.Shape == b.Shape
		}
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for _, fa := range a.Fields {
			fb, ok := b.Field(fa.Key)
			if !ok || fa.Optional != fb.Optional || !Equal(fa.Type, fb.Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// sortVariants puts union members into canonical kind order
func sortVariants(vs []*Type) {
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].Kind < vs[j].Kind })
}
