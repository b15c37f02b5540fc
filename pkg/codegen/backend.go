/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: backend.go
Description: Backend contract shared by every code generation target. A backend renders the
inferred root type and its shape table into an ordered list of declarations; renderings are
deterministic and total, and constructs a target cannot express exactly are approximated
and reported as warnings.
*/

package codegen

import (
	"fmt"
	"strings"

	"github.com/kleascm/typeforge/pkg/ir"
)

// Backend renders the IR for one target language
type Backend interface {
	// Language returns the canonical target identifier ("go", "rust", ...)
	Language() string

	// FileExtension returns the extension of generated files, without the dot
	FileExtension() string

	// Render produces the declarations for every shape reachable from root
	Render(root *ir.Type, table *ir.Table, rootName string) (*Rendering, error)
}

// Declaration is one named unit of generated source
type Declaration struct {
	Name   string
	Source string
}

// Rendering is the output of one backend run
type Rendering struct {
	Target       string
	Prelude      string // Header, package clause, imports
	Declarations []Declaration
	Warnings     []*UnsupportedShapeError
}

// Names returns the declaration names in output order
func (r *Rendering) Names() []string {
	names := make([]string, len(r.Declarations))
	for i, d := range r.Declarations {
		names[i] = d.Name
	}
	return names
}

// UnsupportedShapeError reports an IR construct the target approximated. It is attached to
// the rendering as a warning; rendering still succeeds.
type UnsupportedShapeError struct {
	Target    string     // Backend that approximated
	Path      string     // Dotted raw path of the position
	Shape     ir.ShapeID // Owning shape, empty at the root
	Construct string     // What could not be expressed, e.g. "Int|String"
	Fallback  string     // What was emitted instead
}

func (e *UnsupportedShapeError) Error() string {
	path := e.Path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("%s: %s at %s rendered as %s", e.Target, e.Construct, path, e.Fallback)
}

// Options control rendering. The zero value is not useful; start from DefaultOptions.
type Options struct {
	IncludeComments bool              // Header and per-type doc comments
	OptionalFields  bool              // Render optional fields with wrappers; false renders them as required
	Package         string            // Go package clause
	FieldConvention string            // Overrides the target's field casing (see naming.ParseConvention)
	TypeOverrides   map[string]string // Dotted raw field path -> literal target type
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		IncludeComments: true,
		OptionalFields:  true,
		Package:         "main",
	}
}

// Assemble joins prelude and declarations into the text of one file
func Assemble(r *Rendering) string {
	var parts []string
	if p := strings.TrimRight(r.Prelude, "\n"); p != "" {
		parts = append(parts, p)
	}
	for _, d := range r.Declarations {
		parts = append(parts, strings.TrimRight(d.Source, "\n"))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}
