/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sink.go
Description: Output sinks for generated files. DirSink writes one file per target into a
directory, creating it when needed. WriterSink concatenates files onto a stream such as
stdout, separated by banners when more than one file is written.
*/

package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// File is one generated artifact
type File struct {
	Target    string // Canonical target name
	Extension string // Without the leading dot
	Content   string
}

// Name returns the file name for a base name, e.g. "user.go"
func (f File) Name(base string) string {
	return base + "." + f.Extension
}

// Sink receives finished files. It returns where the file went.
type Sink interface {
	Write(f File) (string, error)
}

// DirSink writes files into a directory
type DirSink struct {
	Dir  string
	Base string // File name without extension
}

// NewDirSink creates a sink for dir. Base defaults to "types".
func NewDirSink(dir, base string) *DirSink {
	if base == "" {
		base = "types"
	}
	return &DirSink{Dir: dir, Base: base}
}

// Write implements Sink
func (s *DirSink) Write(f File) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create output directory %s", s.Dir)
	}
	path := filepath.Join(s.Dir, f.Name(s.Base))
	if err := os.WriteFile(path, []byte(f.Content), 0644); err != nil {
		return "", errors.Wrapf(err, "write %s output", f.Target)
	}
	return path, nil
}

// WriterSink concatenates files onto a writer
type WriterSink struct {
	mu      sync.Mutex
	w       io.Writer
	banners bool
	written int
}

// NewWriterSink creates a sink for w. With banners set, every file is preceded by a
// "==> target <==" line.
func NewWriterSink(w io.Writer, banners bool) *WriterSink {
	return &WriterSink{w: w, banners: banners}
}

// Write implements Sink
func (s *WriterSink) Write(f File) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	if s.banners {
		if s.written > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "==> %s <==\n", f.Target)
	}
	b.WriteString(f.Content)
	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return "", errors.Wrapf(err, "write %s output", f.Target)
	}
	s.written++
	return "stdout", nil
}
