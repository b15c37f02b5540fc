/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report_writer_test.go
Description: Tests for the report writer.
*/

package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := WriteReport(dir, "generate", "1b4e28ba-2fa1-11d2-883f-0016d3cca427", map[string]int{"targets": 2})
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_generate_1b4e28ba.json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]int
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 2, got["targets"])
}

func TestWriteReportErrors(t *testing.T) {
	_, err := WriteReport("", "generate", "x", nil)
	assert.Error(t, err)

	_, err = WriteReport(t.TempDir(), "generate", "x", make(chan int))
	assert.Error(t, err)
}
