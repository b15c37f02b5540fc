/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: codegen_test.go
Description: Tests for the shared backend machinery: deferred naming, the registry,
assembly and properties every backend must hold (determinism, reachable-only output).
*/

package codegen

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/kleascm/typeforge/pkg/inference"
	"github.com/kleascm/typeforge/pkg/naming"
	"github.com/kleascm/typeforge/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inferDocs runs inference over JSON documents
func inferDocs(t *testing.T, docs ...string) *inference.Result {
	t.Helper()
	var samples []*value.Value
	for _, d := range docs {
		vs, err := value.DecodeJSON(strings.NewReader(d))
		require.NoError(t, err)
		samples = append(samples, vs...)
	}
	res, err := inference.NewEngine().Infer(samples)
	require.NoError(t, err)
	return res
}

// render runs one target with default options
func render(t *testing.T, target string, opts Options, docs ...string) *Rendering {
	t.Helper()
	b, err := New(target, opts)
	require.NoError(t, err)
	res := inferDocs(t, docs...)
	r, err := b.Render(res.Root, res.Table, "Root")
	require.NoError(t, err)
	return r
}

func TestAssignNames(t *testing.T) {
	res := inferDocs(t, `{"profile": {"home": {"zip": "1"}}, "tags": [{"k": 1}]}`)
	scope := naming.NewScope(naming.PascalCase, nil)
	names := AssignNames(res.Root, res.Table, "User", scope)

	got := make([]string, 0, len(names.Order))
	for _, id := range names.Order {
		got = append(got, names.Types[id])
	}
	assert.Equal(t, []string{"User", "UserProfile", "UserProfileHome", "UserTags"}, got)
	assert.Empty(t, names.Alias)
}

func TestAssignNamesCollision(t *testing.T) {
	res := inferDocs(t, `{"a": {"b": {"x": 1}}, "a_b": {"y": 1}}`)
	names := AssignNames(res.Root, res.Table, "Root", naming.NewScope(naming.PascalCase, nil))
	var got []string
	for _, id := range names.Order {
		got = append(got, names.Types[id])
	}
	assert.Equal(t, []string{"Root", "RootA", "RootAB", "RootAB2"}, got)
}

func TestAssignNamesAlias(t *testing.T) {
	res := inferDocs(t, `[{"id": 1}]`)
	names := AssignNames(res.Root, res.Table, "Root", naming.NewScope(naming.PascalCase, nil))
	assert.Equal(t, "RootList", names.Alias)
	assert.Equal(t, "Root", names.Types[names.Root])

	res = inferDocs(t, `1`)
	names = AssignNames(res.Root, res.Table, "Root", naming.NewScope(naming.PascalCase, nil))
	assert.Equal(t, "Root", names.Alias)
	assert.Empty(t, names.Root)
}

func TestDependencyOrder(t *testing.T) {
	res := inferDocs(t, `{"outer": {"inner": {"x": 1}}}`)
	names := AssignNames(res.Root, res.Table, "Root", naming.NewScope(naming.PascalCase, nil))
	var got []string
	for _, id := range DependencyOrder(res.Root, res.Table) {
		got = append(got, names.Types[id])
	}
	assert.Equal(t, []string{"RootOuterInner", "RootOuter", "Root"}, got)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"go", "python", "rust", "schema", "typescript"}, Targets())

	for id, want := range map[string]string{
		"go": "go", "TS": "typescript", "py": "python", "Rust": "rust", "jsonschema": "schema",
	} {
		got, err := Canonical(id)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		b, err := New(id, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, want, b.Language())
	}

	_, err := New("cobol", DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedTarget))

	opts := DefaultOptions()
	opts.FieldConvention = "kebab"
	_, err = New("go", opts)
	assert.Error(t, err)

	assert.NotEmpty(t, Describe("ts"))
	assert.Contains(t, Aliases("python"), "py")
}

func TestFileExtensions(t *testing.T) {
	want := map[string]string{"go": "go", "rust": "rs", "typescript": "ts", "python": "py", "schema": "schema.json"}
	for target, ext := range want {
		b, err := New(target, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, ext, b.FileExtension())
	}
}

// TestRenderDeterministic tests byte-identical output across runs for every target
func TestRenderDeterministic(t *testing.T) {
	docs := []string{
		`{"id": 1, "user-name": "a", "address": {"street": "s", "geo": {"lat": 1.5}}, "v": "x"}`,
		`{"id": 2, "tags": ["a"], "v": 3, "address": {"street": "t", "geo": {"lat": 2, "lng": 3}}}`,
	}
	for _, target := range Targets() {
		t.Run(target, func(t *testing.T) {
			first := Assemble(render(t, target, DefaultOptions(), docs...))
			for i := 0; i < 3; i++ {
				assert.Equal(t, first, Assemble(render(t, target, DefaultOptions(), docs...)))
			}
		})
	}
}

// TestRenderReachableOnly tests that shapes superseded during inference are not declared
func TestRootShapeDescribedAsDocumentRoot(t *testing.T) {
	r := render(t, "go", DefaultOptions(), `{"a": {"a": {}}}`)
	src := Assemble(r)
	assert.Contains(t, src, "// Root mirrors the JSON object at the document root.")
	assert.NotContains(t, src, "Root mirrors the JSON object at a.")
}

func TestRenderReachableOnly(t *testing.T) {
	docs := `{"a": {"geo": {"lat": 1}}, "b": {"geo": {"lat": 2, "lng": 3}}}`
	res := inferDocs(t, docs)
	require.Equal(t, 4, res.Table.Len())

	r := render(t, "go", DefaultOptions(), docs)
	assert.Len(t, r.Declarations, 3)
}

func TestAssemble(t *testing.T) {
	r := &Rendering{
		Prelude:      "package main\n",
		Declarations: []Declaration{{Name: "A", Source: "type A struct{}\n"}, {Name: "B", Source: "type B struct{}\n"}},
	}
	assert.Equal(t, "package main\n\ntype A struct{}\n\ntype B struct{}\n", Assemble(r))
	assert.Equal(t, []string{"A", "B"}, r.Names())
	assert.Equal(t, "", Assemble(&Rendering{}))
}

func TestUnsupportedShapeErrorMessage(t *testing.T) {
	err := &UnsupportedShapeError{Target: "go", Path: "v", Construct: "Int|String", Fallback: "any"}
	assert.Equal(t, "go: Int|String at v rendered as any", err.Error())
	err.Path = ""
	assert.Contains(t, err.Error(), "<root>")
}

func TestAlignColumns(t *testing.T) {
	out := alignColumns([][]string{{"ID", "int64", "`json:\"id\"`", ""}, {"Nickname", "*string", "`x`"}}, "\t")
	assert.Equal(t, "\tID       int64   `json:\"id\"`\n\tNickname *string `x`\n", out)
}
