// Package driver runs the whole pipeline: compile a source set once, then
// render and write every artifact against the resulting bundle.
//
// A Driver moves through Uncompiled, Compiled and Done. Any failure moves it
// to Failed, which is terminal: the stored error is returned from every later
// call and nothing further is rendered or written.
package driver

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/soyforge/pkg/bundle"
	"github.com/arthur-debert/soyforge/pkg/errors"
	"github.com/arthur-debert/soyforge/pkg/globals"
	"github.com/arthur-debert/soyforge/pkg/logging"
	"github.com/arthur-debert/soyforge/pkg/output"
	"github.com/arthur-debert/soyforge/pkg/render"
	"github.com/arthur-debert/soyforge/pkg/sources"
)

// State is the lifecycle position of a Driver
type State int

const (
	Uncompiled State = iota
	Compiled
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Uncompiled:
		return "uncompiled"
	case Compiled:
		return "compiled"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Artifact is one template rendered to one destination
type Artifact struct {
	Template string
	Path     string
	Encoding string
	// Indent re-indents markup artifacts when > 0
	Indent int
	Data   map[string]interface{}
}

// Option configures a Driver
type Option func(*Driver)

// WithWriter replaces the default output writer
func WithWriter(w *output.Writer) Option {
	return func(d *Driver) { d.writer = w }
}

// WithWorkers sets how many artifacts are processed at once
func WithWorkers(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithLogger replaces the driver's logger
func WithLogger(l zerolog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithMarkupChecks toggles well-formedness checks on markup artifacts
func WithMarkupChecks(on bool) Option {
	return func(d *Driver) { d.checkMarkup = on }
}

// Driver owns a compiled bundle and the artifacts rendered from it
type Driver struct {
	set       *sources.Set
	globals   *globals.Bindings
	artifacts []Artifact

	writer      *output.Writer
	workers     int
	checkMarkup bool
	logger      zerolog.Logger

	mu     sync.Mutex
	state  State
	bundle *bundle.Bundle
	err    error
}

// New creates a Driver in the Uncompiled state
func New(set *sources.Set, g *globals.Bindings, artifacts []Artifact, opts ...Option) *Driver {
	d := &Driver{
		set:         set,
		globals:     g,
		artifacts:   artifacts,
		writer:      &output.Writer{},
		workers:     1,
		checkMarkup: true,
		logger:      logging.GetLogger("driver"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current lifecycle state
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Bundle returns the compiled bundle, or nil before a successful Compile
func (d *Driver) Bundle() *bundle.Bundle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bundle
}

// Compile builds the bundle. It runs the compiler at most once.
func (d *Driver) Compile() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compileLocked()
}

func (d *Driver) compileLocked() error {
	switch d.state {
	case Failed:
		return d.err
	case Compiled, Done:
		return nil
	}

	b, err := bundle.Compile(d.set, d.globals)
	if err != nil {
		return d.failLocked(err)
	}
	d.bundle = b
	d.state = Compiled
	return nil
}

func (d *Driver) failLocked(err error) error {
	d.state = Failed
	d.err = err
	d.logger.Error().Err(err).Str("stage", errors.Stage(err)).Msg("Pipeline failed")
	return err
}

// Run compiles if needed, then renders and writes every artifact in order.
// The first failure stops the run and leaves the Driver Failed.
func (d *Driver) Run() (*Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case Failed:
		return nil, d.err
	case Done:
		return nil, errors.New(errors.ErrInternal, "driver has already run")
	}

	if err := checkDistinct(d.artifacts); err != nil {
		return nil, d.failLocked(err)
	}
	if err := d.compileLocked(); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]ArtifactReport, len(d.artifacts))
	var err error
	if d.workers > 1 && len(d.artifacts) > 1 {
		err = d.runParallel(results)
	} else {
		err = d.runSequential(results)
	}
	if err != nil {
		return nil, d.failLocked(err)
	}

	d.state = Done
	report := &Report{Artifacts: results, Duration: time.Since(start)}
	d.logger.Info().
		Int("artifacts", len(results)).
		Int("bytes", report.TotalBytes()).
		Dur("duration", report.Duration).
		Msg("Pipeline complete")
	return report, nil
}

func (d *Driver) runSequential(results []ArtifactReport) error {
	for i, a := range d.artifacts {
		r, err := d.process(a)
		if err != nil {
			return err
		}
		results[i] = r
	}
	return nil
}

func (d *Driver) runParallel(results []ArtifactReport) error {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(d.workers)

	for i, a := range d.artifacts {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			r, err := d.process(a)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	return g.Wait()
}

// process renders and writes a single artifact against the compiled bundle
func (d *Driver) process(a Artifact) (ArtifactReport, error) {
	start := time.Now()
	logger := d.logger.With().Str("template", a.Template).Str("path", a.Path).Logger()
	logger.Debug().Msg("Processing artifact")

	out, err := render.Render(d.bundle, a.Template, a.Data)
	if err != nil {
		return ArtifactReport{}, annotate(err, a)
	}

	if output.IsMarkup(a.Path) {
		if d.checkMarkup {
			if err := output.CheckMarkup(out.Bytes); err != nil {
				return ArtifactReport{}, annotate(err, a)
			}
		}
		if a.Indent > 0 {
			indented, err := output.IndentMarkup(out.Bytes, a.Indent)
			if err != nil {
				return ArtifactReport{}, annotate(err, a)
			}
			out.Bytes = indented
		}
	}

	res, err := d.writer.Write(out, output.Target{Path: a.Path, Encoding: a.Encoding})
	if err != nil {
		return ArtifactReport{}, annotate(err, a)
	}

	return ArtifactReport{
		Template: a.Template,
		Path:     res.Path,
		Encoding: res.Encoding,
		Bytes:    res.Bytes,
		DryRun:   res.DryRun,
		Duration: time.Since(start),
	}, nil
}

func annotate(err error, a Artifact) error {
	if fe, ok := err.(*errors.ForgeError); ok {
		fe.WithDetail(errors.DetailTemplate, a.Template)
		if _, set := fe.Details[errors.DetailPath]; !set {
			fe.WithDetail(errors.DetailPath, a.Path)
		}
		return fe
	}
	return err
}

func checkDistinct(artifacts []Artifact) error {
	seen := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		key := filepath.Clean(a.Path)
		if prev, dup := seen[key]; dup {
			return errors.Newf(errors.ErrConfiguration, "templates %s and %s both write %s", prev, a.Template, a.Path).
				WithDetail(errors.DetailPath, a.Path).
				WithDetail(errors.DetailStage, errors.StageConfig)
		}
		seen[key] = a.Template
	}
	return nil
}
