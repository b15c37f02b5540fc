/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report_writer.go
Description: Utility for writing run reports to a report directory.
Files are named by timestamp, report kind and run id so repeated runs never overwrite
each other. The directory is created when missing.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// WriteReport writes v as indented JSON to dir and returns the file path.
// Name: 2026-06-11_01-30-00_generate_1b4e28ba.json
func WriteReport(dir, kind, runID string, v interface{}) (string, error) {
	if dir == "" {
		return "", errors.New("report directory is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create report directory")
	}

	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_%s.json", timestamp, kind, short)
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal report")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", errors.Wrap(err, "failed to write report file")
	}
	return path, nil
}
