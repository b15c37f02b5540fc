/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: unify.go
Description: Unification of two observed types for the same logical position. The rules are
symmetric: identical kinds merge, Int and Float widen to Float, null only marks the result
nullable, objects merge field-wise and anything else becomes a flat union.
*/

package ir

// ObjectMerger merges two object types seen at the same position. The result must be a
// freshly allocated Type.
type ObjectMerger func(a, b *Type) *Type

// Unifier carries the object merge strategy. The zero value merges inline objects.
type Unifier struct {
	Objects ObjectMerger
}

// Unify combines two inline types with the default rules
func Unify(a, b *Type) *Type {
	return Unifier{}.Unify(a, b)
}

// Unify combines a and b into one type consistent with both
func (u Unifier) Unify(a, b *Type) *Type {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Kind == Unknown:
		return markNullable(b, a.Nullable)
	case b.Kind == Unknown:
		return markNullable(a, b.Nullable)
	case a.Kind == Null:
		if b.Kind == Null {
			return NewNull()
		}
		return markNullable(b, true)
	case b.Kind == Null:
		return markNullable(a, true)
	case a.Kind == Union || b.Kind == Union:
		return u.unifyUnion(a, b)
	}

	nullable := a.Nullable || b.Nullable
	if !compatible(a.Kind, b.Kind) {
		vs := []*Type{stripNullable(a), stripNullable(b)}
		sortVariants(vs)
		return &Type{Kind: Union, Nullable: nullable, Variants: vs}
	}
	out := u.merge(a, b)
	out.Nullable = nullable
	return out
}

// compatible reports whether two non-union kinds merge without a union
func compatible(a, b Kind) bool {
	if a == b {
		return true
	}
	return isNumeric(a) && isNumeric(b)
}

func isNumeric(k Kind) bool { return k == Int || k == Float }

// merge combines two compatible, non-union, non-null types into a fresh node
func (u Unifier) merge(a, b *Type) *Type {
	switch a.Kind {
	case Int, Float:
		if a.Kind == Float || b.Kind == Float {
			return NewScalar(Float)
		}
		return NewScalar(Int)
	case Array:
		return ArrayOf(u.Unify(a.Elem, b.Elem))
	case Object:
		if u.Objects != nil {
			return u.Objects(a, b)
		}
		return u.mergeInline(a, b)
	default:
		return NewScalar(a.Kind)
	}
}

// mergeInline merges two inline objects. Fields keep a's order with b's new keys
// appended; a key missing on either side becomes optional.
func (u Unifier) mergeInline(a, b *Type) *Type {
	out := &Type{Kind: Object, Fields: make([]Field, 0, len(a.Fields)+len(b.Fields))}
	for _, fa := range a.Fields {
		fb, ok := b.Field(fa.Key)
		if !ok {
			out.Fields = append(out.Fields, Field{Key: fa.Key, Type: fa.Type, Optional: true})
			continue
		}
		out.Fields = append(out.Fields, Field{
			Key:      fa.Key,
			Type:     u.Unify(fa.Type, fb.Type),
			Optional: fa.Optional || fb.Optional,
		})
	}
	for _, fb := range b.Fields {
		if _, ok := a.Field(fb.Key); !ok {
			out.Fields = append(out.Fields, Field{Key: fb.Key, Type: fb.Type, Optional: true})
		}
	}
	return out
}

// unifyUnion flattens both sides into one variant list, merging members of compatible
// kinds so a union holds at most one member per kind
func (u Unifier) unifyUnion(a, b *Type) *Type {
	nullable := a.Nullable || b.Nullable
	var members []*Type
	insert := func(t *Type) {
		if t.Nullable {
			nullable = true
			t = stripNullable(t)
		}
		for i, m := range members {
			if compatible(m.Kind, t.Kind) {
				members[i] = u.merge(m, t)
				return
			}
		}
		members = append(members, t)
	}
	for _, side := range []*Type{a, b} {
		if side.Kind == Union {
			for _, v := range side.Variants {
				insert(v)
			}
			continue
		}
		insert(side)
	}
	sortVariants(members)
	if len(members) == 1 {
		return markNullable(members[0], nullable)
	}
	return &Type{Kind: Union, Nullable: nullable, Variants: members}
}

// markNullable returns t marked nullable when n is set, copying instead of mutating
func markNullable(t *Type, n bool) *Type {
	if !n || t.Nullable {
		return t
	}
	cp := *t
	cp.Nullable = true
	return &cp
}

// stripNullable returns t without the nullable flag
func stripNullable(t *Type) *Type {
	if !t.Nullable {
		return t
	}
	cp := *t
	cp.Nullable = false
	return &cp
}
