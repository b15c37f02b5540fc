/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: unify_test.go
Description: Tests for unification. Covers the algebraic laws (idempotence, commutativity,
associativity on scalars), numeric widening, null handling and union flattening.
*/

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalars() []*Type {
	return []*Type{
		NewScalar(Bool),
		NewScalar(Int),
		NewScalar(Float),
		NewScalar(String),
		NewNull(),
		ArrayOf(NewScalar(Int)),
		InlineObject(Field{Key: "a", Type: NewScalar(Int)}),
	}
}

// TestUnifyIdempotent tests that unify(a, a) == a
func TestUnifyIdempotent(t *testing.T) {
	for _, a := range scalars() {
		assert.True(t, Equal(a, Unify(a, a)), "unify(%s, %s)", a, a)
	}
}

// TestUnifyCommutative tests that argument order does not change the result
func TestUnifyCommutative(t *testing.T) {
	types := scalars()
	for _, a := range types {
		for _, b := range types {
			ab, ba := Unify(a, b), Unify(b, a)
			assert.True(t, Equal(ab, ba), "%s vs %s", ab, ba)
		}
	}
}

// TestUnifyAssociative tests grouping independence over the scalar kinds
func TestUnifyAssociative(t *testing.T) {
	types := scalars()
	for _, a := range types {
		for _, b := range types {
			for _, c := range types {
				left := Unify(Unify(a, b), c)
				right := Unify(a, Unify(b, c))
				assert.True(t, Equal(left, right), "(%s,%s,%s): %s vs %s", a, b, c, left, right)
			}
		}
	}
}

func TestUnifyUnknownIsIdentity(t *testing.T) {
	for _, a := range scalars() {
		assert.True(t, Equal(a, Unify(NewUnknown(), a)))
		assert.True(t, Equal(a, Unify(a, NewUnknown())))
	}
}

func TestUnifyNumericWidening(t *testing.T) {
	out := Unify(NewScalar(Int), NewScalar(Float))
	assert.Equal(t, Float, out.Kind)

	out = Unify(ArrayOf(NewScalar(Int)), ArrayOf(NewScalar(Float)))
	require.Equal(t, Array, out.Kind)
	assert.Equal(t, Float, out.Elem.Kind)
}

func TestUnifyNullMarksNullable(t *testing.T) {
	out := Unify(NewNull(), NewScalar(String))
	assert.Equal(t, String, out.Kind)
	assert.True(t, out.Nullable)
	assert.Equal(t, "String?", out.String())

	assert.Equal(t, Null, Unify(NewNull(), NewNull()).Kind)
}

func TestUnifyDoesNotMutateInputs(t *testing.T) {
	s := NewScalar(String)
	_ = Unify(NewNull(), s)
	assert.False(t, s.Nullable)
}

func TestUnifyUnionFlattening(t *testing.T) {
	u := Unify(NewScalar(String), NewScalar(Int))
	require.Equal(t, Union, u.Kind)
	assert.Equal(t, "Int|String", u.String())

	// a union joined with a union stays flat
	u = Unify(u, Unify(NewScalar(Bool), NewScalar(Float)))
	require.Equal(t, Union, u.Kind)
	assert.Equal(t, "Bool|Float|String", u.String())
	for _, v := range u.Variants {
		assert.NotEqual(t, Union, v.Kind)
	}
}

func TestUnifyUnionWithNull(t *testing.T) {
	u := UnionOf(NewScalar(String), NewNull(), NewScalar(Int))
	require.Equal(t, Union, u.Kind)
	assert.True(t, u.Nullable)
	assert.Len(t, u.Variants, 2)
	assert.Equal(t, "(Int|String)?", u.String())
}

func TestUnifyUnionMergesCompatibleMembers(t *testing.T) {
	u := UnionOf(
		NewScalar(String),
		InlineObject(Field{Key: "a", Type: NewScalar(Int)}),
		InlineObject(Field{Key: "b", Type: NewScalar(Bool)}),
	)
	require.Equal(t, Union, u.Kind)
	require.Len(t, u.Variants, 2)

	obj := u.Variant(Object)
	require.NotNil(t, obj)
	a, ok := obj.Field("a")
	require.True(t, ok)
	assert.True(t, a.Optional)
	b, ok := obj.Field("b")
	require.True(t, ok)
	assert.True(t, b.Optional)
}

func TestUnifyObjectFieldOrder(t *testing.T) {
	a := InlineObject(
		Field{Key: "id", Type: NewScalar(Int)},
		Field{Key: "name", Type: NewScalar(String)},
	)
	b := InlineObject(
		Field{Key: "nickname", Type: NewScalar(String)},
		Field{Key: "id", Type: NewScalar(Int)},
	)
	out := Unify(a, b)
	require.Len(t, out.Fields, 3)
	assert.Equal(t, "id", out.Fields[0].Key)
	assert.False(t, out.Fields[0].Optional)
	assert.Equal(t, "name", out.Fields[1].Key)
	assert.True(t, out.Fields[1].Optional)
	assert.Equal(t, "nickname", out.Fields[2].Key)
	assert.True(t, out.Fields[2].Optional)
}

func TestShapeIDOfOrderIndependent(t *testing.T) {
	assert.Equal(t, ShapeIDOf([]string{"a", "b"}), ShapeIDOf([]string{"b", "a"}))
	assert.NotEqual(t, ShapeIDOf([]string{"a", "b"}), ShapeIDOf([]string{"a"}))
	// length prefixes keep concatenations apart
	assert.NotEqual(t, ShapeIDOf([]string{"ab", "c"}), ShapeIDOf([]string{"a", "bc"}))
	assert.Len(t, ShapeIDOf(nil).Short(), 8)
}

func TestTableReachableAndRecursive(t *testing.T) {
	tbl := NewTable()
	node := ShapeIDOf([]string{"next"})
	leaf := ShapeIDOf([]string{"v"})
	orphan := ShapeIDOf([]string{"x"})
	tbl.Put(&Shape{ID: node, Fields: []Field{{Key: "next", Type: Ref(node)}, {Key: "leaf", Type: ArrayOf(Ref(leaf))}}})
	tbl.Put(&Shape{ID: leaf, Fields: []Field{{Key: "v", Type: NewScalar(Int)}}})
	tbl.Put(&Shape{ID: orphan, Fields: []Field{{Key: "x", Type: NewScalar(Int)}}})

	assert.Equal(t, []ShapeID{node, leaf}, tbl.Reachable(Ref(node)))
	assert.True(t, tbl.Recursive(node, node))
	assert.False(t, tbl.Recursive(node, leaf))
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 1, tbl.Position(leaf))

	id, ok := tbl.RootShape(ArrayOf(Ref(node)))
	require.True(t, ok)
	assert.Equal(t, node, id)
	_, ok = tbl.RootShape(NewScalar(Int))
	assert.False(t, ok)
}
