package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"gts-generator/internal/diagnostic"
	"gts-generator/internal/emit"
	"gts-generator/internal/extract"
	"gts-generator/internal/gtsid"
	"gts-generator/internal/schema"
)

// Options configures one generation run.
type Options struct {
	// SourceRoot is the directory scanned for annotated structs.
	SourceRoot string

	// OutputRoot, when non-empty, redirects every artifact under this
	// directory instead of resolving relative to each source file.
	OutputRoot string

	// Excludes are doublestar globs of files left out of the scan.
	Excludes []string

	// DryRun validates and composes but writes nothing.
	DryRun bool
}

// Result is the outcome for one declaration, in discovery order.
// Code carries the diagnostic code of the failure when the error itself
// does not already embed one.
type Result struct {
	Declaration string
	ID          gtsid.ID
	Path        string
	Err         error
	Code        string
}

// Emitted reports whether the declaration produced an artifact on disk.
func (r Result) Emitted() bool {
	return r.Err == nil
}

// Summary aggregates a whole run.
type Summary struct {
	Results []Result
	Stats   extract.Stats
	Skipped []extract.Skip
}

// FailedCount returns the number of declarations that did not emit.
func (s *Summary) FailedCount() int {
	n := 0

	for _, r := range s.Results {
		if r.Err != nil {
			n++
		}
	}

	return n
}

// EmittedCount returns the number of artifacts written.
func (s *Summary) EmittedCount() int {
	return len(s.Results) - s.FailedCount()
}

// OK reports whether every declaration emitted.
func (s *Summary) OK() bool {
	return s.FailedCount() == 0
}

// Driver runs the scan-validate-compose-emit pipeline.
type Driver struct {
	opts Options
	log  zerolog.Logger
}

// NewDriver builds a driver from options.
func NewDriver(opts Options, log zerolog.Logger) *Driver {
	return &Driver{opts: opts, log: log}
}

// Run executes the pipeline. The returned error is reserved for run-level
// failures (unreadable source tree, registry fatals); per-declaration
// failures land in the summary instead.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	scanner, err := extract.NewScanner(d.opts.SourceRoot, d.opts.Excludes, d.log)
	if err != nil {
		return nil, err
	}

	scanned, err := scanner.Scan()
	if err != nil {
		return nil, err
	}

	d.log.Info().
		Int("files", scanned.Stats.FilesScanned).
		Int("skipped", scanned.Stats.FilesSkipped).
		Int("declarations", len(scanned.Declarations)).
		Msg("scan complete")

	for _, sk := range scanned.Skipped {
		d.log.Debug().Str("file", sk.Path).Str("reason", sk.Reason).Msg("file skipped")
	}

	summary := &Summary{Stats: scanned.Stats, Skipped: scanned.Skipped}

	// Directive-level failures have no declaration to carry them through
	// the pipeline; they surface as failed results up front.
	for _, diag := range scanned.Diagnostics.Errors {
		summary.Results = append(summary.Results, Result{
			Declaration: diag.Declaration,
			Code:        diag.Code,
			Err:         errors.New(diag.Message),
		})
	}

	decls := make([]schema.Declaration, 0, len(scanned.Declarations))
	for _, decl := range scanned.Declarations {
		decls = append(decls, *decl)
	}

	reg, err := schema.BuildRegistry(decls)
	if err != nil {
		return nil, fmt.Errorf("building declaration registry: %w", err)
	}

	docs, results := d.composeAll(ctx, scanned.Declarations, reg)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := d.emitAll(scanned.Declarations, docs, results); err != nil {
		return nil, err
	}

	summary.Results = append(summary.Results, results...)

	return summary, nil
}

// composeAll validates and composes every declaration concurrently over the
// read-only registry. Slots in the returned slices line up with decls.
func (d *Driver) composeAll(ctx context.Context, decls []*schema.Declaration, reg *schema.Registry) ([]map[string]any, []Result) {
	docs := make([]map[string]any, len(decls))
	results := make([]Result, len(decls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, decl := range decls {
		results[i] = Result{Declaration: decl.Name, ID: decl.ID}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			if diags := schema.Validate(decl, reg); diags.HasErrors() {
				results[i].Err = diags.Error()
				return nil
			}

			art, err := schema.ComposeOne(decl, reg)
			if err != nil {
				results[i].Err = err

				var unsupported *schema.UnsupportedTypeError
				if errors.As(err, &unsupported) {
					results[i].Code = diagnostic.CodeUnsupportedType
				}

				return nil
			}

			docs[i] = schema.RenderWithRefs(art)

			return nil
		})
	}

	// Goroutines never return errors; failures stay per-declaration.
	_ = g.Wait()

	return docs, results
}

// emitAll writes composed documents sequentially in discovery order so the
// emitter's conflict tracking stays deterministic.
func (d *Driver) emitAll(decls []*schema.Declaration, docs []map[string]any, results []Result) error {
	if d.opts.DryRun {
		return nil
	}

	em, err := emit.NewEmitter(d.opts.SourceRoot, d.opts.OutputRoot)
	if err != nil {
		return err
	}

	for i, decl := range decls {
		if results[i].Err != nil || docs[i] == nil {
			continue
		}

		path, err := em.Emit(decl, docs[i])
		if err != nil {
			results[i].Err = err
			results[i].Code = emitErrorCode(err)

			d.log.Error().Err(err).Str("declaration", decl.Name).Msg("emit failed")

			continue
		}

		results[i].Path = path

		d.log.Info().
			Str("declaration", decl.Name).
			Str("path", path).
			Msg("artifact written")
	}

	return nil
}

// emitErrorCode classifies an emit failure into its diagnostic code.
func emitErrorCode(err error) string {
	var sec *emit.SecurityError
	if errors.As(err, &sec) {
		return sec.Code
	}

	var conflict *emit.ConflictError
	if errors.As(err, &conflict) {
		return diagnostic.CodeOutputConflict
	}

	return diagnostic.CodeWriteFailed
}
