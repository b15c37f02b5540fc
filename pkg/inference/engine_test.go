/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine_test.go
Description: Tests for the inference engine. Feeds JSON samples through the full fold and
interning passes and checks the root type, the shape table and optionality.
*/

package inference

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/kleascm/typeforge/pkg/ir"
	"github.com/kleascm/typeforge/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// samples parses each argument as one JSON document
func samples(t *testing.T, docs ...string) []*value.Value {
	t.Helper()
	var out []*value.Value
	for _, d := range docs {
		vs, err := value.DecodeJSON(strings.NewReader(d))
		require.NoError(t, err)
		out = append(out, vs...)
	}
	return out
}

func infer(t *testing.T, docs ...string) *Result {
	t.Helper()
	res, err := NewEngine().Infer(samples(t, docs...))
	require.NoError(t, err)
	return res
}

func rootShape(t *testing.T, res *Result) *ir.Shape {
	t.Helper()
	id, ok := res.Table.RootShape(res.Root)
	require.True(t, ok)
	s, ok := res.Table.Get(id)
	require.True(t, ok)
	return s
}

func field(t *testing.T, s *ir.Shape, key string) ir.Field {
	t.Helper()
	i := s.Index(key)
	require.GreaterOrEqual(t, i, 0, "missing field %q", key)
	return s.Fields[i]
}

// TestInferOptionalField tests a key present in only one of two samples
func TestInferOptionalField(t *testing.T) {
	res := infer(t,
		`{"id": 1, "name": "a"}`,
		`{"id": 2, "name": "b", "nickname": "c"}`,
	)
	assert.Equal(t, 2, res.Samples)
	s := rootShape(t, res)
	assert.Equal(t, []string{"id", "name", "nickname"}, s.Keys())

	assert.Equal(t, ir.Int, field(t, s, "id").Type.Kind)
	assert.False(t, field(t, s, "id").Optional)
	assert.False(t, field(t, s, "name").Optional)
	assert.True(t, field(t, s, "nickname").Optional)
	assert.Len(t, res.Shapes(), 1)
}

func TestInferEmptyArray(t *testing.T) {
	res := infer(t, `{"tags": []}`)
	tags := field(t, rootShape(t, res), "tags")
	require.Equal(t, ir.Array, tags.Type.Kind)
	assert.Equal(t, ir.Unknown, tags.Type.Elem.Kind)
}

func TestInferScalarConflictBecomesUnion(t *testing.T) {
	res := infer(t, `{"v": "2"}`, `{"v": 2}`)
	v := field(t, rootShape(t, res), "v")
	require.Equal(t, ir.Union, v.Type.Kind)
	assert.Equal(t, "Int|String", v.Type.String())
	assert.False(t, v.Optional)
}

func TestInferNumericWidening(t *testing.T) {
	res := infer(t, `{"n": 1}`, `{"n": 1.5}`, `{"n": 2e3}`)
	assert.Equal(t, ir.Float, field(t, rootShape(t, res), "n").Type.Kind)
}

func TestInferNullMakesFieldOptional(t *testing.T) {
	res := infer(t, `{"a": null, "b": 1}`, `{"a": "x", "b": 2}`)
	s := rootShape(t, res)
	a := field(t, s, "a")
	assert.Equal(t, ir.String, a.Type.Kind)
	assert.True(t, a.Optional)
	assert.False(t, a.Type.Nullable)
}

func TestInferAlwaysNullIsUnknown(t *testing.T) {
	res := infer(t, `{"a": null}`)
	a := field(t, rootShape(t, res), "a")
	assert.Equal(t, ir.Unknown, a.Type.Kind)
}

func TestInferArrayElementNullability(t *testing.T) {
	res := infer(t, `{"xs": [1, null, 3]}`)
	xs := field(t, rootShape(t, res), "xs")
	require.Equal(t, ir.Array, xs.Type.Kind)
	assert.Equal(t, ir.Int, xs.Type.Elem.Kind)
	assert.True(t, xs.Type.Elem.Nullable)
	assert.False(t, xs.Optional)
}

// TestInferSharedShapeDeduplicated tests that identical nested objects share one entry
func TestInferSharedShapeDeduplicated(t *testing.T) {
	res := infer(t, `{
		"home": {"street": "a", "zip": "1"},
		"work": {"street": "b", "zip": "2"}
	}`)
	s := rootShape(t, res)
	home := field(t, s, "home").Type
	work := field(t, s, "work").Type
	require.True(t, home.IsRef())
	assert.Equal(t, home.Shape, work.Shape)
	assert.Len(t, res.Shapes(), 2)

	addr, ok := res.Table.Get(home.Shape)
	require.True(t, ok)
	assert.Equal(t, []string{"home"}, addr.Path)
}

// TestInferSharedShapeAbsorbsNestedDifferences tests that two same-keyed objects whose nested
// objects differ end up referring to one merged nested shape
func TestInferSharedShapeAbsorbsNestedDifferences(t *testing.T) {
	res := infer(t, `{
		"a": {"geo": {"lat": 1}},
		"b": {"geo": {"lat": 2, "lng": 3}}
	}`)
	s := rootShape(t, res)
	a := field(t, s, "a").Type
	b := field(t, s, "b").Type
	require.Equal(t, a.Shape, b.Shape)

	shared, ok := res.Table.Get(a.Shape)
	require.True(t, ok)
	geo := field(t, shared, "geo").Type
	require.True(t, geo.IsRef())
	g, ok := res.Table.Get(geo.Shape)
	require.True(t, ok)
	assert.Equal(t, []string{"lat", "lng"}, g.Keys())
	assert.False(t, field(t, g, "lat").Optional)
	assert.True(t, field(t, g, "lng").Optional)
	assert.Len(t, res.Shapes(), 3)
}

func TestInferRootArray(t *testing.T) {
	res := infer(t, `[{"id": 1}, {"id": 2, "x": true}]`)
	require.Equal(t, ir.Array, res.Root.Kind)
	s := rootShape(t, res)
	assert.True(t, field(t, s, "x").Optional)
}

func TestInferScalarRoot(t *testing.T) {
	res := infer(t, `1`, `2.5`)
	assert.Equal(t, ir.Float, res.Root.Kind)
	assert.Empty(t, res.Shapes())
}

func TestInferRecursiveShape(t *testing.T) {
	res := infer(t, `{"child": {"child": {"child": null}}}`)
	s := rootShape(t, res)
	child := field(t, s, "child").Type
	require.True(t, child.IsRef())
	assert.Equal(t, s.ID, child.Shape)
	assert.True(t, res.Table.Recursive(s.ID, child.Shape))
	assert.True(t, field(t, s, "child").Optional)
}

func TestInferDeterministic(t *testing.T) {
	docs := []string{
		`{"a": 1, "b": {"c": [1, 2]}, "d": "x"}`,
		`{"b": {"c": [], "e": null}, "a": 2.5}`,
		`{"d": 3, "f": [{"g": 1}, {"h": "z"}]}`,
	}
	first := infer(t, docs...)
	want, err := first.Table.MarshalJSON()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := infer(t, docs...).Table.MarshalJSON()
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got))
	}
}

// shapeFields summarizes the reachable shapes independently of field and table order
func shapeFields(res *Result) map[ir.ShapeID]map[string]string {
	out := make(map[ir.ShapeID]map[string]string)
	for _, id := range res.Table.Reachable(res.Root) {
		s, _ := res.Table.Get(id)
		fields := make(map[string]string, len(s.Fields))
		for _, f := range s.Fields {
			label := f.Type.String()
			if f.Optional {
				label += " (optional)"
			}
			fields[f.Key] = label
		}
		out[id] = fields
	}
	return out
}

func TestInferIndependentOfSampleOrder(t *testing.T) {
	docs := []string{
		`{"a": 1, "b": {"c": [1, 2]}, "d": "x"}`,
		`{"b": {"c": [], "e": null}, "a": 2.5}`,
		`{"d": 3, "f": [{"g": 1}, {"h": "z"}]}`,
		`{"f": [{"g": "s"}], "u": [1, "x", null], "d": null}`,
		`[{"a": 1}]`,
	}

	reversed := make([]string, len(docs))
	for i, d := range docs {
		reversed[len(docs)-1-i] = d
	}
	forward := infer(t, docs...)
	backward := infer(t, reversed...)
	assert.Equal(t, forward.Root.String(), backward.Root.String())
	assert.Equal(t, shapeFields(forward), shapeFields(backward))

	for i := range docs {
		for j := i + 1; j < len(docs); j++ {
			ab := infer(t, docs[i], docs[j])
			ba := infer(t, docs[j], docs[i])
			assert.Equal(t, ab.Root.String(), ba.Root.String(), "samples %d and %d", i, j)
			assert.Equal(t, shapeFields(ab), shapeFields(ba), "samples %d and %d", i, j)
		}
	}
}

func TestInferParallelMatchesSerial(t *testing.T) {
	var docs []string
	for i := 0; i < 40; i++ {
		if i%3 == 0 {
			docs = append(docs, `{"id": 1, "tags": ["a"], "meta": {"k": 1}}`)
		} else {
			docs = append(docs, `{"id": 2.5, "meta": {"k": 2, "v": null}}`)
		}
	}
	serial := infer(t, docs...)

	engine := &Engine{Workers: 8}
	parallel, err := engine.Infer(samples(t, docs...))
	require.NoError(t, err)

	want, err := serial.Table.MarshalJSON()
	require.NoError(t, err)
	got, err := parallel.Table.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
	assert.Equal(t, serial.Root.String(), parallel.Root.String())
}

func TestInferEmptyInput(t *testing.T) {
	_, err := NewEngine().Infer(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}
