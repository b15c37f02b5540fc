/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Main entry point of type inference. The Engine turns one or more parsed samples
into a root type plus the named-type table: every sample is classified on its own, the
results are folded left to right with unification, and the folded tree is interned
bottom-up so structurally identical objects share one table entry.
*/

package inference

import (
	"github.com/cockroachdb/errors"
	"github.com/kleascm/typeforge/pkg/ir"
	"github.com/kleascm/typeforge/pkg/value"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyInput is returned when Infer is called without samples
var ErrEmptyInput = errors.New("no samples supplied to inference")

// Result holds the finished IR. It is immutable once returned.
type Result struct {
	Root    *ir.Type  // Root type; objects are references into Table
	Table   *ir.Table // Named-type table
	Samples int       // Number of samples consumed
}

// Shapes returns the table entries reachable from the root
func (r *Result) Shapes() []ir.ShapeID {
	return r.Table.Reachable(r.Root)
}

// Engine infers types from samples. It holds no state between calls.
type Engine struct {
	Workers int // Parallel sample classification when greater than one
}

// NewEngine creates an engine that classifies samples on the calling goroutine
func NewEngine() *Engine {
	return &Engine{Workers: 1}
}

// Infer folds the samples into one root type and a table of shapes
func (e *Engine) Infer(samples []*value.Value) (*Result, error) {
	if len(samples) == 0 {
		return nil, errors.WithHint(ErrEmptyInput, "supply at least one JSON or YAML document")
	}
	for i, s := range samples {
		if s == nil {
			return nil, errors.Newf("sample %d is nil", i)
		}
	}

	types := e.classifyAll(samples)

	root := types[0]
	for _, t := range types[1:] {
		root = ir.Unify(root, t)
	}

	b := newBuilder()
	root = b.intern(root, nil)
	b.finish(root)

	return &Result{Root: root, Table: b.table, Samples: len(samples)}, nil
}

// classifyAll maps every sample to its own type. Order of the output matches the input
// regardless of worker count.
func (e *Engine) classifyAll(samples []*value.Value) []*ir.Type {
	types := make([]*ir.Type, len(samples))
	if e.Workers <= 1 || len(samples) == 1 {
		for i, s := range samples {
			types[i] = classify(s)
		}
		return types
	}

	var g errgroup.Group
	g.SetLimit(e.Workers)
	for i, s := range samples {
		g.Go(func() error {
			types[i] = classify(s)
			return nil
		})
	}
	_ = g.Wait()
	return types
}
