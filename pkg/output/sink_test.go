/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sink_test.go
Description: Tests for the directory and writer sinks.
*/

package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSinkCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	sink := NewDirSink(dir, "user")

	path, err := sink.Write(File{Target: "go", Extension: "go", Content: "package main\n"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "user.go"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))
}

func TestDirSinkDefaultBase(t *testing.T) {
	sink := NewDirSink(t.TempDir(), "")
	path, err := sink.Write(File{Target: "schema", Extension: "schema.json", Content: "{}\n"})
	require.NoError(t, err)
	assert.Equal(t, "types.schema.json", filepath.Base(path))
}

func TestWriterSinkPlain(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf, false)
	_, err := sink.Write(File{Target: "go", Extension: "go", Content: "package main\n"})
	require.NoError(t, err)
	assert.Equal(t, "package main\n", buf.String())
}

func TestWriterSinkBanners(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf, true)
	_, err := sink.Write(File{Target: "go", Extension: "go", Content: "package main\n"})
	require.NoError(t, err)
	_, err = sink.Write(File{Target: "typescript", Extension: "ts", Content: "export interface A {}\n"})
	require.NoError(t, err)
	assert.Equal(t, "==> go <==\npackage main\n\n==> typescript <==\nexport interface A {}\n", buf.String())
}
