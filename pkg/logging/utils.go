/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Log file housekeeping. Compresses log files left by earlier runs, prunes the
oldest ones beyond the retention limit and reports statistics about the log directory.
*/

package logging

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// LogManager manages the log files in one directory
type LogManager struct {
	logDir   string
	maxFiles int
	compress bool
}

// NewLogManager creates a new log manager
func NewLogManager(logDir string, maxFiles int, compress bool) *LogManager {
	return &LogManager{
		logDir:   logDir,
		maxFiles: maxFiles,
		compress: compress,
	}
}

// files returns the log files in the directory, oldest first. Names embed the start
// time, so lexical order is chronological.
func (lm *LogManager) files() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(lm.logDir, logFilePrefix+"*.log*"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to glob log files")
	}
	sort.Strings(files)
	return files, nil
}

// CleanupOldLogs compresses finished log files when enabled and removes the oldest
// files beyond maxFiles. The file named by current is left untouched.
func (lm *LogManager) CleanupOldLogs(current string) error {
	files, err := lm.files()
	if err != nil {
		return err
	}

	if lm.compress {
		for i, file := range files {
			if file == current || !strings.HasSuffix(file, ".log") {
				continue
			}
			if err := lm.compressFile(file); err != nil {
				return errors.Wrapf(err, "failed to compress %s", file)
			}
			files[i] = file + ".gz"
		}
	}

	if lm.maxFiles <= 0 || len(files) <= lm.maxFiles {
		return nil
	}
	for _, file := range files[:len(files)-lm.maxFiles] {
		if file == current {
			continue
		}
		if err := os.Remove(file); err != nil {
			return errors.Wrapf(err, "failed to remove file %s", file)
		}
	}
	return nil
}

// compressFile compresses a log file using gzip and removes the original
func (lm *LogManager) compressFile(path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	compressed, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer compressed.Close()

	gzipWriter := gzip.NewWriter(compressed)
	if _, err := io.Copy(gzipWriter, source); err != nil {
		return err
	}
	if err := gzipWriter.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// GetLogStats returns statistics about log files
func (lm *LogManager) GetLogStats() (*LogStats, error) {
	files, err := lm.files()
	if err != nil {
		return nil, err
	}

	stats := &LogStats{TotalFiles: len(files)}
	for _, file := range files {
		stat, err := os.Stat(file)
		if err != nil {
			continue
		}
		stats.TotalSize += stat.Size()
		if stats.OldestFile.IsZero() || stat.ModTime().Before(stats.OldestFile) {
			stats.OldestFile = stat.ModTime()
		}
		if stat.ModTime().After(stats.NewestFile) {
			stats.NewestFile = stat.ModTime()
		}
		if strings.HasSuffix(file, ".gz") {
			stats.CompressedFiles++
		} else {
			stats.UncompressedFiles++
		}
	}
	return stats, nil
}

// LogStats holds statistics about log files
type LogStats struct {
	TotalFiles        int       `json:"total_files"`
	TotalSize         int64     `json:"total_size"`
	CompressedFiles   int       `json:"compressed_files"`
	UncompressedFiles int       `json:"uncompressed_files"`
	OldestFile        time.Time `json:"oldest_file"`
	NewestFile        time.Time `json:"newest_file"`
}
