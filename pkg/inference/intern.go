/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: intern.go
Description: Bottom-up interning of the folded type tree into the named-type table. Objects
with the same key set share one entry; when two entries meet at the same position of a
shared shape they are merged into the entry for the union of their key sets.
*/

package inference

import (
	"github.com/kleascm/typeforge/pkg/ir"
)

// builder owns the table during one inference run. It is single-threaded.
type builder struct {
	table   *ir.Table
	unifier ir.Unifier
	merging map[[2]ir.ShapeID]ir.ShapeID // in-progress reference merges
}

func newBuilder() *builder {
	b := &builder{
		table:   ir.NewTable(),
		merging: make(map[[2]ir.ShapeID]ir.ShapeID),
	}
	b.unifier = ir.Unifier{Objects: b.mergeRefs}
	return b
}

// intern rewrites t so every object becomes a table reference. Null positions become a
// nullable Unknown until finish runs; nullability at a field is folded into the field's
// optional flag.
func (b *builder) intern(t *ir.Type, path []string) *ir.Type {
	switch t.Kind {
	case ir.Null:
		return &ir.Type{Kind: ir.Unknown, Nullable: true}
	case ir.Array:
		return &ir.Type{Kind: ir.Array, Nullable: t.Nullable, Elem: b.intern(t.Elem, path)}
	case ir.Union:
		out := &ir.Type{Kind: ir.Union, Nullable: t.Nullable, Variants: make([]*ir.Type, len(t.Variants))}
		for i, v := range t.Variants {
			out.Variants[i] = b.intern(v, path)
		}
		return out
	case ir.Object:
		if t.Shape != "" {
			ref := ir.Ref(t.Shape)
			ref.Nullable = t.Nullable
			return ref
		}
		fields := make([]ir.Field, len(t.Fields))
		for i, f := range t.Fields {
			ft := b.intern(f.Type, childPath(path, f.Key))
			fields[i] = settle(ir.Field{Key: f.Key, Type: ft, Optional: f.Optional})
		}
		ref := ir.Ref(b.add(fields, path))
		ref.Nullable = t.Nullable
		return ref
	default:
		return &ir.Type{Kind: t.Kind, Nullable: t.Nullable}
	}
}

// add inserts fields as a shape, or merges them into the existing entry with the same
// key set
func (b *builder) add(fields []ir.Field, path []string) ir.ShapeID {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	id := ir.ShapeIDOf(keys)
	if s, ok := b.table.Get(id); ok {
		b.absorb(s, fields)
		return id
	}
	b.table.Put(&ir.Shape{ID: id, Fields: fields, Path: path})
	return id
}

// absorb merges newly observed fields into s, keeping s's field order
func (b *builder) absorb(s *ir.Shape, fields []ir.Field) {
	for _, f := range fields {
		i := s.Index(f.Key)
		if i < 0 {
			s.Fields = append(s.Fields, ir.Field{Key: f.Key, Type: f.Type, Optional: true})
			continue
		}
		before := s.Fields[i].Type
		merged := b.unifier.Unify(before, f.Type)
		// the merge above may have re-entered s through a recursive reference
		if cur := s.Fields[i].Type; cur != before {
			merged = b.unifier.Unify(cur, merged)
		}
		s.Fields[i] = settle(ir.Field{
			Key:      f.Key,
			Type:     merged,
			Optional: s.Fields[i].Optional || f.Optional,
		})
	}
}

// settle moves nullability of a field type onto the field. A nullable Unknown keeps its
// flag so a later merge with a concrete type still marks the field optional.
func settle(f ir.Field) ir.Field {
	if f.Type.Nullable && f.Type.Kind != ir.Unknown {
		t := *f.Type
		t.Nullable = false
		f.Type = &t
		f.Optional = true
	}
	return f
}

// finish drops the null markers left on Unknown positions once every sample is interned
func (b *builder) finish(root *ir.Type) {
	for _, id := range b.table.IDs() {
		s, _ := b.table.Get(id)
		for _, f := range s.Fields {
			clearUnknown(f.Type)
		}
	}
	clearUnknown(root)
}

func clearUnknown(t *ir.Type) {
	switch t.Kind {
	case ir.Unknown:
		t.Nullable = false
	case ir.Array:
		clearUnknown(t.Elem)
	case ir.Union:
		for _, v := range t.Variants {
			clearUnknown(v)
		}
	}
}

// mergeRefs is the object strategy used while interning: two references to different
// shapes merge into the shape of the union of their key sets
func (b *builder) mergeRefs(x, y *ir.Type) *ir.Type {
	if x.Shape == y.Shape {
		return ir.Ref(x.Shape)
	}
	key := pairKey(x.Shape, y.Shape)
	if id, ok := b.merging[key]; ok {
		return ir.Ref(id)
	}

	sx, okx := b.table.Get(x.Shape)
	sy, oky := b.table.Get(y.Shape)
	if !okx || !oky {
		// only reachable through a reference still being merged
		return ir.Ref(x.Shape)
	}
	if b.table.Position(sy.ID) < b.table.Position(sx.ID) {
		sx, sy = sy, sx
	}

	keys := append(sx.Keys(), missing(sy, sx)...)
	id := ir.ShapeIDOf(keys)
	b.merging[key] = id
	defer delete(b.merging, key)

	fields := make([]ir.Field, 0, len(keys))
	for _, fx := range sx.Fields {
		j := sy.Index(fx.Key)
		if j < 0 {
			fields = append(fields, ir.Field{Key: fx.Key, Type: fx.Type, Optional: true})
			continue
		}
		fy := sy.Fields[j]
		fields = append(fields, settle(ir.Field{
			Key:      fx.Key,
			Type:     b.unifier.Unify(fx.Type, fy.Type),
			Optional: fx.Optional || fy.Optional,
		}))
	}
	for _, fy := range sy.Fields {
		if sx.Index(fy.Key) < 0 {
			fields = append(fields, ir.Field{Key: fy.Key, Type: fy.Type, Optional: true})
		}
	}
	return ir.Ref(b.add(fields, sx.Path))
}

// missing returns the keys of a that b lacks, in a's order
func missing(a, b *ir.Shape) []string {
	var out []string
	for _, k := range a.Keys() {
		if b.Index(k) < 0 {
			out = append(out, k)
		}
	}
	return out
}

func pairKey(a, b ir.ShapeID) [2]ir.ShapeID {
	if b < a {
		a, b = b, a
	}
	return [2]ir.ShapeID{a, b}
}

func childPath(path []string, key string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = key
	return out
}
