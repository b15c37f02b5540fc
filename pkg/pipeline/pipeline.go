/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pipeline.go
Description: The generation pipeline behind every CLI command. A run decodes the input
sources, infers one IR over all samples, renders every requested target concurrently
and hands the finished files to a sink in target order. A failing target is recorded
in its own result and never stops the others; decoding and inference failures abort.
*/

package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kleascm/typeforge/pkg/codegen"
	"github.com/kleascm/typeforge/pkg/inference"
	"github.com/kleascm/typeforge/pkg/logging"
	"github.com/kleascm/typeforge/pkg/naming"
	"github.com/kleascm/typeforge/pkg/output"
	"github.com/kleascm/typeforge/pkg/value"
	"golang.org/x/sync/errgroup"
)

// DefaultRootName is used when neither the request nor the first source names the root
const DefaultRootName = "Root"

// Default input size limits
const (
	DefaultMaxInputBytes  int64 = 100_000_000
	DefaultWarnInputBytes int64 = 10_000_000
)

// ErrInputTooLarge marks an input rejected by the size limit
var ErrInputTooLarge = errors.New("input too large")

// Limits bounds the size of each input. Zero fields take the defaults.
type Limits struct {
	MaxBytes  int64 // Inputs above this are rejected
	WarnBytes int64 // Inputs above this are decoded with a warning
}

func (l Limits) withDefaults() Limits {
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultMaxInputBytes
	}
	if l.WarnBytes <= 0 {
		l.WarnBytes = DefaultWarnInputBytes
	}
	return l
}

// Check applies the limits to an input of size bytes. Inputs over the warning threshold
// are logged when logger is set.
func (l Limits) Check(logger *logging.Logger, name string, size int64) error {
	l = l.withDefaults()
	if size > l.MaxBytes {
		err := errors.Newf("%s is larger than %.1f MB", displayName(name), float64(l.MaxBytes)/1e6)
		return errors.WithHint(errors.Mark(err, ErrInputTooLarge), "split the samples into smaller files or raise input.max_bytes")
	}
	if size > l.WarnBytes && logger != nil {
		logger.Warning("Large input, processing may take some time", map[string]interface{}{
			"source": displayName(name),
			"bytes":  size,
		})
	}
	return nil
}

// Source is one named input stream. Name selects the parser and may name the root type.
type Source struct {
	Name   string
	Reader io.Reader
}

// Request describes one generation run
type Request struct {
	Sources     []Source
	Samples     []*value.Value    // Already decoded samples, folded after Sources
	SourceNames []string          // Names of the inputs behind Samples, for root naming
	Targets     []string          // Target identifiers; aliases accepted
	RootName    string            // Empty derives it from the first source name
	Options     codegen.Options   // Shared backend options
	Conventions map[string]string // Canonical target -> field convention override
	Workers     int               // Parallel sample classification
	SampleBytes int64             // Size of the inputs behind Samples
	Limits      Limits            // Per-source size limits
}

// TargetResult is the outcome of one target
type TargetResult struct {
	Target       string             `json:"target"`
	File         string             `json:"file,omitempty"`
	Declarations []string           `json:"declarations,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
	Duration     time.Duration      `json:"duration_ns"`
	Error        string             `json:"error,omitempty"`
	Rendering    *codegen.Rendering `json:"-"`
	Extension    string             `json:"-"`
	Content      string             `json:"-"`
	Err          error              `json:"-"`
}

// Failed reports whether the target produced no output
func (r *TargetResult) Failed() bool {
	return r.Err != nil
}

// Report summarizes a run
type Report struct {
	RunID         string            `json:"run_id"`
	RootName      string            `json:"root_name"`
	Samples       int               `json:"samples"`
	Shapes        int               `json:"shapes"`
	Started       time.Time         `json:"started"`
	InferDuration time.Duration     `json:"infer_duration_ns"`
	InputBytes    int64             `json:"input_bytes"`
	OutputBytes   int64             `json:"output_bytes"` // Content of every successful target
	Structure     value.Analysis    `json:"structure"`
	Complex       bool              `json:"complex"`
	Targets       []*TargetResult   `json:"targets"`
	Result        *inference.Result `json:"-"`
}

// Failed returns the results of targets that failed
func (r *Report) Failed() []*TargetResult {
	var failed []*TargetResult
	for _, t := range r.Targets {
		if t.Failed() {
			failed = append(failed, t)
		}
	}
	return failed
}

// AllFailed reports whether no target succeeded
func (r *Report) AllFailed() bool {
	return len(r.Targets) > 0 && len(r.Failed()) == len(r.Targets)
}

// WarningCount returns the number of warnings across all targets
func (r *Report) WarningCount() int {
	n := 0
	for _, t := range r.Targets {
		n += len(t.Warnings)
	}
	return n
}

// Pipeline runs requests against one logger and sink
type Pipeline struct {
	logger *logging.Logger
	sink   output.Sink
}

// New creates a pipeline. A nil sink renders without writing.
func New(logger *logging.Logger, sink output.Sink) *Pipeline {
	return &Pipeline{logger: logger, sink: sink}
}

// countingReader counts the bytes read through it
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Decode parses every source into samples, in source order, and returns the number of
// bytes read. A source is read at most one byte past limits.MaxBytes, so streams of
// unknown size are rejected without being read in full.
func Decode(sources []Source, limits Limits, logger *logging.Logger) ([]*value.Value, int64, error) {
	limits = limits.withDefaults()
	var samples []*value.Value
	var total int64
	for _, src := range sources {
		counter := &countingReader{r: io.LimitReader(src.Reader, limits.MaxBytes+1)}
		vs, err := value.Decode(src.Name, counter)
		// Truncation makes the decoder fail, so the size check comes first
		if sizeErr := limits.Check(logger, src.Name, counter.n); sizeErr != nil {
			return nil, 0, sizeErr
		}
		if err != nil {
			return nil, 0, errors.Wrapf(err, "decode %s", displayName(src.Name))
		}
		total += counter.n
		samples = append(samples, vs...)
	}
	return samples, total, nil
}

// ResolveTargets canonicalizes target identifiers, dropping duplicates and keeping the
// first-seen order. An empty list selects every target.
func ResolveTargets(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return codegen.Targets(), nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		name, err := codegen.Canonical(id)
		if err != nil {
			return nil, err
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

// Run executes one request
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	report := &Report{RunID: p.logger.RunID(), Started: time.Now()}

	targets, err := ResolveTargets(req.Targets)
	if err != nil {
		return nil, err
	}

	samples, inputBytes, err := Decode(req.Sources, req.Limits, p.logger)
	if err != nil {
		return nil, err
	}
	samples = append(samples, req.Samples...)
	report.InputBytes = inputBytes + req.SampleBytes
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.RootName = ResolveRootName(req)

	start := time.Now()
	engine := inference.NewEngine()
	if req.Workers > 1 {
		engine.Workers = req.Workers
	}
	res, err := engine.Infer(samples)
	if err != nil {
		return nil, err
	}
	report.Result = res
	report.Samples = res.Samples
	report.Shapes = len(res.Shapes())
	report.InferDuration = time.Since(start)
	report.Structure = value.Analyze(samples)
	report.Complex = report.Structure.Complex()
	p.logger.LogInference(report.Samples, report.Shapes, report.InferDuration, map[string]interface{}{
		"root":        report.RootName,
		"input_bytes": report.InputBytes,
		"objects":     report.Structure.Objects,
		"max_depth":   report.Structure.MaxDepth,
	})
	if report.Complex {
		p.logger.Info("Complex input structure", map[string]interface{}{
			"values":        report.Structure.Total(),
			"large_objects": report.Structure.LargeObjects,
			"large_arrays":  report.Structure.LargeArrays,
		})
	}

	report.Targets = p.renderAll(ctx, targets, req, res, report.RootName)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	p.writeAll(report)
	for _, t := range report.Targets {
		if !t.Failed() {
			report.OutputBytes += int64(len(t.Content))
		}
	}
	return report, nil
}

// renderAll renders every target concurrently; results keep target order
func (p *Pipeline) renderAll(ctx context.Context, targets []string, req Request, res *inference.Result, root string) []*TargetResult {
	results := make([]*TargetResult, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			results[i] = p.render(ctx, target, req, res, root)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Pipeline) render(ctx context.Context, target string, req Request, res *inference.Result, root string) *TargetResult {
	result := &TargetResult{Target: target}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		result.fail(err)
		return result
	}

	opts := req.Options
	if c, ok := req.Conventions[target]; ok && c != "" {
		opts.FieldConvention = c
	}
	backend, err := codegen.New(target, opts)
	if err != nil {
		result.fail(err)
		return result
	}
	rendering, err := backend.Render(res.Root, res.Table, root)
	if err != nil {
		result.fail(errors.Wrapf(err, "render %s", target))
		return result
	}

	result.Rendering = rendering
	result.Extension = backend.FileExtension()
	result.Content = codegen.Assemble(rendering)
	result.Declarations = rendering.Names()
	for _, w := range rendering.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}
	return result
}

// writeAll logs every result and hands successful ones to the sink in target order
func (p *Pipeline) writeAll(report *Report) {
	for _, result := range report.Targets {
		if result.Failed() {
			p.logger.Error("Target failed", map[string]interface{}{
				"target": result.Target,
				"error":  result.Err,
			})
			continue
		}
		for _, w := range result.Rendering.Warnings {
			p.logger.LogWarning(w.Target, displayPath(w.Path), w.Construct, w.Fallback)
		}
		p.logger.LogRender(result.Target, len(result.Declarations), len(result.Warnings), result.Duration, nil)

		if p.sink == nil {
			continue
		}
		path, err := p.sink.Write(output.File{
			Target:    result.Target,
			Extension: result.Extension,
			Content:   result.Content,
		})
		if err != nil {
			result.fail(err)
			p.logger.Error("Write failed", map[string]interface{}{
				"target": result.Target,
				"error":  err,
			})
			continue
		}
		result.File = path
		p.logger.LogWrite(result.Target, path, len(result.Content))
	}
}

func (r *TargetResult) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// ResolveRootName picks the root type name for a request: the explicit name, else one
// derived from the first input name, else DefaultRootName
func ResolveRootName(req Request) string {
	if req.RootName != "" {
		return req.RootName
	}
	names := make([]string, 0, len(req.Sources)+len(req.SourceNames))
	for _, s := range req.Sources {
		names = append(names, s.Name)
	}
	names = append(names, req.SourceNames...)
	if len(names) == 0 {
		return DefaultRootName
	}
	return naming.RootName(names[0], DefaultRootName)
}

func displayName(name string) string {
	if name == "" || name == "-" {
		return "<stdin>"
	}
	return name
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
