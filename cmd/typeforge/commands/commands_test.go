/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: End-to-end tests of the CLI commands run through the cobra tree with
captured streams, plus unit tests of the command helpers.
*/

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kleascm/typeforge/pkg/codegen"
	"github.com/kleascm/typeforge/pkg/inference"
	"github.com/kleascm/typeforge/pkg/pipeline"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersJSON = `{"id": 1, "name": "A"}
{"id": 2, "name": "B", "nickname": "Bee"}`

// execute runs the command tree with fresh configuration
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGenerateFromStdin(t *testing.T) {
	stdout, stderr, err := execute(t, usersJSON, "generate", "--root-name", "User")
	require.NoError(t, err)

	assert.Contains(t, stdout, "package main")
	assert.Contains(t, stdout, "type User struct {")
	assert.Contains(t, stdout, "Nickname *string")
	assert.NotContains(t, stdout, "==>")
	assert.Contains(t, stderr, "go: 1 declarations -> stdout")
}

func TestGenerateToDirectory(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "users.json", usersJSON)
	out := filepath.Join(dir, "out")

	stdout, _, err := execute(t, "", "generate", input, "-t", "go,ts", "-t", "py", "-o", out, "--package", "models")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	goSrc, err := os.ReadFile(filepath.Join(out, "users.go"))
	require.NoError(t, err)
	assert.Contains(t, string(goSrc), "package models")
	assert.Contains(t, string(goSrc), "type Users struct {")
	assert.FileExists(t, filepath.Join(out, "users.ts"))
	assert.FileExists(t, filepath.Join(out, "users.py"))
}

func TestGenerateBannersForSeveralTargets(t *testing.T) {
	stdout, _, err := execute(t, usersJSON, "generate", "-t", "rust", "-t", "schema", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, stdout, "==> rust <==")
	assert.Contains(t, stdout, "==> schema <==")
}

func TestGenerateOptions(t *testing.T) {
	stdout, _, err := execute(t, `{"created": "2024-01-01", "user_id": 3}`,
		"generate", "--override", "created=time.Time", "--no-comments", "--convention", "go=snake")
	require.NoError(t, err)
	assert.Contains(t, stdout, "time.Time")
	assert.Contains(t, stdout, "user_id")
	assert.NotContains(t, stdout, "DO NOT EDIT")
}

func TestGenerateErrors(t *testing.T) {
	_, _, err := execute(t, usersJSON, "generate", "--override", "created")
	assert.Error(t, err)

	_, _, err = execute(t, usersJSON, "generate", "-t", "cobol")
	assert.True(t, errors.Is(err, codegen.ErrUnsupportedTarget))

	_, _, err = execute(t, "", "generate")
	assert.True(t, errors.Is(err, inference.ErrEmptyInput))

	_, _, err = execute(t, usersJSON, "generate", "--convention", "go=kebab")
	assert.Error(t, err)

	_, _, err = execute(t, "", "generate", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestGenerateFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "typeforge.yaml", `
targets: [typescript]
root_name: Person
conventions:
  typescript: snake
`)
	stdout, _, err := execute(t, `{"user_id": 1}`, "generate", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, stdout, "export interface Person {")
	assert.Contains(t, stdout, "  user_id: number;")
}

func TestGenerateFromEnvironment(t *testing.T) {
	t.Setenv("TYPEFORGE_ROOT_NAME", "Envy")
	stdout, _, err := execute(t, `{"a": 1}`, "generate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "type Envy struct {")
}

func TestGenerateWritesReport(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, usersJSON, "generate", "-t", "go,ts", "--report-dir", dir, "-q")
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "*_generate_*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.NotEmpty(t, report["run_id"])
	assert.Len(t, report["targets"], 2)
	assert.EqualValues(t, len(usersJSON), report["input_bytes"])
	assert.Greater(t, report["output_bytes"], float64(0))
	structure, ok := report["structure"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, structure["objects"])
}

func TestInspectTree(t *testing.T) {
	stdout, _, err := execute(t, usersJSON, "inspect", "--root-name", "Users")
	require.NoError(t, err)
	assert.Contains(t, stdout, "root: Object(")
	assert.Contains(t, stdout, "Users (shape ")
	assert.Contains(t, stdout, "nickname?: String")
	assert.Contains(t, stdout, "id: Int")
}

func TestInspectJSON(t *testing.T) {
	stdout, _, err := execute(t, `{"home": {"zip": "1"}, "work": {"zip": "2"}}`, "inspect", "--json")
	require.NoError(t, err)

	var dump struct {
		Root    string            `json:"root"`
		Samples int               `json:"samples"`
		Names   map[string]string `json:"names"`
		Table   struct {
			Shapes []map[string]interface{} `json:"shapes"`
		} `json:"table"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &dump))
	assert.Equal(t, 1, dump.Samples)
	assert.Len(t, dump.Table.Shapes, 2)
	assert.ElementsMatch(t, []string{"Root", "RootHome"}, valuesOf(dump.Names))
}

func valuesOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func TestListTargets(t *testing.T) {
	stdout, _, err := execute(t, "", "targets")
	require.NoError(t, err)
	for _, want := range []string{"typescript", "ts", ".schema.json", "python", "py", "Rust structs"} {
		assert.Contains(t, stdout, want)
	}
}

func TestShowConfig(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "typeforge.yaml", "root_name: Person\n")
	logDir := filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(logDir, 0755))
	writeFile(t, logDir, "typeforge_2000-01-01_00-00-00_00000000.log", "old\n")

	stdout, stderr, err := execute(t, "", "config", "--config", config, "--log-dir", logDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "root_name: Person")
	assert.Contains(t, stderr, "1 log files")
}

func TestWatchRegeneratesOnChange(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	input := writeFile(t, dir, "users.json", `{"id": 1}`)
	out := filepath.Join(dir, "out")
	target := filepath.Join(out, "users.go")

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"watch", input, "-o", out, "--debounce", "10ms", "--no-color"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	contains := func(want string) func() bool {
		return func() bool {
			data, err := os.ReadFile(target)
			return err == nil && strings.Contains(string(data), want)
		}
	}
	require.Eventually(t, contains("type Users struct {"), 5*time.Second, 20*time.Millisecond)

	writeFile(t, dir, "users.json", `{"id": 1, "nickname": "Bee"}`)
	require.Eventually(t, contains("Nickname"), 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRejectsStdin(t *testing.T) {
	_, _, err := execute(t, "", "watch", "-")
	assert.Error(t, err)
}

func TestSampleCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.json", `{"a": 1}`)

	cache, err := newSampleCache(4, pipeline.Limits{}, nil)
	require.NoError(t, err)

	first, hit, err := cache.Load(path)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, first.Samples, 1)
	assert.Equal(t, int64(len(`{"a": 1}`)), first.Size)

	again, hit, err := cache.Load(path)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, first.Samples[0], again.Samples[0])

	writeFile(t, dir, "a.json", `{"a": 1, "b": 2}`)
	changed, hit, err := cache.Load(path)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, changed.Samples[0].Get("b"))

	_, _, err = cache.Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSampleCacheRejectsLargeFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.json", `{"name": "abcdefghijklmnop"}`)

	cache, err := newSampleCache(4, pipeline.Limits{MaxBytes: 10}, nil)
	require.NoError(t, err)
	_, _, err = cache.Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrInputTooLarge))
}

func TestGenerateRejectsLargeInput(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "typeforge.yaml", "input:\n  max_bytes: 10\n")
	_, _, err := execute(t, usersJSON, "generate", "--config", config)
	assert.True(t, errors.Is(err, pipeline.ErrInputTooLarge))
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"a.b=int64", " c = str "}, "override")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.b": "int64", "c": "str"}, got)

	for _, bad := range []string{"a", "=x", "a="} {
		_, err := parseAssignments([]string{bad}, "override")
		assert.Error(t, err, bad)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"go", "ts", "py"}, splitList([]string{"go, ts", "", "py"}))
	assert.Nil(t, splitList(nil))
}
