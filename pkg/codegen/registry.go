/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: registry.go
Description: Target registry. Maps target identifiers and their aliases to backend
constructors.
*/

package codegen

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnsupportedTarget is returned for an unknown target identifier
var ErrUnsupportedTarget = errors.New("unsupported target")

type target struct {
	name        string
	aliases     []string
	description string
	build       func(Options) (Backend, error)
}

var targets = []target{
	{
		name:        "go",
		aliases:     []string{"golang"},
		description: "Go structs with encoding/json tags",
		build:       func(o Options) (Backend, error) { return NewGoBackend(o) },
	},
	{
		name:        "python",
		aliases:     []string{"py"},
		description: "Python dataclasses with typing annotations",
		build:       func(o Options) (Backend, error) { return NewPythonBackend(o) },
	},
	{
		name:        "rust",
		aliases:     []string{"rs"},
		description: "Rust structs and untagged enums with serde derives",
		build:       func(o Options) (Backend, error) { return NewRustBackend(o) },
	},
	{
		name:        "schema",
		aliases:     []string{"jsonschema", "json-schema"},
		description: "JSON Schema draft 2020-12 document",
		build:       func(o Options) (Backend, error) { return NewSchemaBackend(o) },
	},
	{
		name:        "typescript",
		aliases:     []string{"ts"},
		description: "TypeScript exported interfaces",
		build:       func(o Options) (Backend, error) { return NewTypeScriptBackend(o) },
	},
}

func lookup(id string) (target, bool) {
	key := strings.ToLower(strings.TrimSpace(id))
	for _, t := range targets {
		if t.name == key {
			return t, true
		}
		for _, a := range t.aliases {
			if a == key {
				return t, true
			}
		}
	}
	return target{}, false
}

// New creates the backend for a target identifier (case-insensitive, aliases accepted)
func New(id string, opts Options) (Backend, error) {
	t, ok := lookup(id)
	if !ok {
		return nil, errors.WithHintf(errors.Wrapf(ErrUnsupportedTarget, "%q", id),
			"supported targets: %s", strings.Join(Targets(), ", "))
	}
	b, err := t.build(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "configure %s backend", t.name)
	}
	return b, nil
}

// Canonical returns the canonical name of a target identifier
func Canonical(id string) (string, error) {
	t, ok := lookup(id)
	if !ok {
		return "", errors.WithHintf(errors.Wrapf(ErrUnsupportedTarget, "%q", id),
			"supported targets: %s", strings.Join(Targets(), ", "))
	}
	return t.name, nil
}

// Targets returns the canonical target names, sorted
func Targets() []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.name
	}
	sort.Strings(names)
	return names
}

// Aliases returns the alternative identifiers accepted for a target
func Aliases(id string) []string {
	t, ok := lookup(id)
	if !ok {
		return nil
	}
	return append([]string(nil), t.aliases...)
}

// Describe returns a one-line description of a target
func Describe(id string) string {
	t, ok := lookup(id)
	if !ok {
		return ""
	}
	return t.description
}
