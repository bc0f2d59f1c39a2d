/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pipeline.go
Description: One-shot batch pipeline: fetch records from every source, infer the schema,
coerce a copy of the records, render the ontology document and persist it together with the
optional profile report and run metrics. Sources are fetched concurrently but their records
are concatenated in configured order, so output is deterministic.
*/

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/ontoforge/pkg/coercion"
	"github.com/kleascm/ontoforge/pkg/inference"
	"github.com/kleascm/ontoforge/pkg/logging"
	"github.com/kleascm/ontoforge/pkg/ontology"
	"github.com/kleascm/ontoforge/pkg/records"
	"github.com/kleascm/ontoforge/pkg/reporting"
	"github.com/kleascm/ontoforge/pkg/sources"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// StdoutPath selects standard output as the document destination
const StdoutPath = "-"

// Options controls where a run's artifacts go
type Options struct {
	Output     string // document path; StdoutPath for stdout, empty to skip writing
	ReportPath string // profile report (.yaml/.json); empty to skip
	MetricsDir string // run metrics directory; empty to skip
	Version    string
	Stdout     io.Writer
}

// Pipeline wires sources, inference, coercion and rendering together
type Pipeline struct {
	sources  []sources.Source
	engine   *inference.Engine
	renderer ontology.Options
	logger   *logging.Logger
	opts     Options
}

// New creates a pipeline. The renderer options are validated up front.
func New(srcs []sources.Source, candidates inference.Candidates, renderOpts ontology.Options, logger *logging.Logger, opts Options) (*Pipeline, error) {
	if len(srcs) == 0 {
		return nil, fmt.Errorf("pipeline needs at least one source")
	}
	if _, err := ontology.NewRenderer(renderOpts); err != nil {
		return nil, err
	}
	if logger == nil {
		var err error
		if logger, err = logging.NewLogger(nil); err != nil {
			return nil, err
		}
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Pipeline{
		sources:  srcs,
		engine:   inference.NewEngine(candidates),
		renderer: renderOpts,
		logger:   logger,
		opts:     opts,
	}, nil
}

// Result is everything one run produced
type Result struct {
	RunID    string
	Raw      records.Dataset // as fetched
	Coerced  records.Dataset
	Schema   *inference.Schema
	Coercion *coercion.Report
	Document *ontology.Document
	Metrics  *reporting.RunMetrics
}

// Recoveries returns the recovery count of every field that had at least one
func (r *Result) Recoveries() map[string]int {
	out := make(map[string]int)
	if r.Coercion == nil {
		return out
	}
	for _, f := range r.Coercion.FieldsWithRecoveries() {
		out[f] = r.Coercion.Recoveries(f)
	}
	return out
}

// Skipped returns the records left out of the document
func (r *Result) Skipped() []ontology.SkippedRecord {
	if r.Document == nil {
		return nil
	}
	return r.Document.Skipped
}

// Run executes fetch, process and persist
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	started := time.Now()
	log := p.logger.GetLogger().WithField("run_id", runID)
	log.WithField("sources", len(p.sources)).Info("Run started")

	ds, err := p.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	fetchTime := time.Since(started)

	result, err := p.Process(runID, ds)
	if err != nil {
		return nil, err
	}
	result.Metrics.StartedAt = started
	result.Metrics.Sources = len(p.sources)
	result.Metrics.FetchTime = fetchTime

	if err := p.Persist(result); err != nil {
		return nil, err
	}

	result.Metrics.TotalTime = time.Since(started)
	p.logger.LogRunSummary(runID, len(ds), result.Document.Individuals, len(result.Document.Skipped),
		result.Coercion.Total(), result.Metrics.TotalTime)

	if p.opts.MetricsDir != "" {
		if _, err := reporting.WriteMetricsResult(p.opts.MetricsDir, "render", p.opts.Version, result.Metrics); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Fetch collects records from every source concurrently, keeping source order
func (p *Pipeline) Fetch(ctx context.Context) (records.Dataset, error) {
	parts := make([]records.Dataset, len(p.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range p.sources {
		i, src := i, src
		g.Go(func() error {
			start := time.Now()
			ds, err := src.FetchRecords(gctx)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name(), err)
			}
			parts[i] = ds
			p.logger.LogSourceFetched(src.Name(), len(ds), time.Since(start), nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all records.Dataset
	for _, part := range parts {
		all = append(all, part...)
	}
	return all, nil
}

// Process infers, coerces a copy and renders. The input dataset is not modified.
func (p *Pipeline) Process(runID string, ds records.Dataset) (*Result, error) {
	log := p.logger.GetLogger().WithField("run_id", runID)
	metrics := &reporting.RunMetrics{RunID: runID, Records: len(ds)}

	start := time.Now()
	engine := inference.NewEngine(p.engine.Candidates(), inference.WithLogger(log))
	schema, err := engine.Infer(ds)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	metrics.InferTime = time.Since(start)
	metrics.Fields = schema.Len()
	log.WithField("fields", schema.Len()).Info("Schema inferred")

	start = time.Now()
	coerced := ds.Clone()
	report, err := coercion.Apply(coerced, schema)
	if err != nil {
		return nil, fmt.Errorf("coercion failed: %w", err)
	}
	metrics.CoerceTime = time.Since(start)
	metrics.Recovered = report.Total()
	for _, field := range report.FieldsWithRecoveries() {
		p.logger.LogRecoveries(field, report.Recoveries(field), map[string]interface{}{"run_id": runID})
	}

	start = time.Now()
	renderer, err := ontology.NewRenderer(p.renderer, ontology.WithLogger(log))
	if err != nil {
		return nil, err
	}
	doc, err := renderer.Render(coerced, schema)
	if err != nil {
		return nil, fmt.Errorf("rendering failed: %w", err)
	}
	metrics.RenderTime = time.Since(start)
	metrics.Individuals = doc.Individuals
	metrics.Skipped = len(doc.Skipped)
	metrics.Bytes = len(doc.Text)
	log.WithFields(logrus.Fields{
		"individuals": doc.Individuals,
		"skipped":     len(doc.Skipped),
	}).Info("Document rendered")

	return &Result{
		RunID:    runID,
		Raw:      ds,
		Coerced:  coerced,
		Schema:   schema,
		Coercion: report,
		Document: doc,
		Metrics:  metrics,
	}, nil
}

// Persist writes the document and the profile report as configured
func (p *Pipeline) Persist(result *Result) error {
	fields := map[string]interface{}{"run_id": result.RunID}

	switch p.opts.Output {
	case "":
	case StdoutPath:
		if _, err := result.Document.WriteTo(p.opts.Stdout); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
	default:
		if err := ontology.WriteFile(p.opts.Output, result.Document); err != nil {
			return err
		}
		p.logger.LogDocumentWritten(p.opts.Output, result.Document.Individuals, len(result.Document.Text), fields)
	}

	if p.opts.ReportPath != "" {
		report := reporting.BuildProfile(result.RunID, result.Raw, result.Schema, result.Coercion, result.Document)
		if err := reporting.WriteReport(p.opts.ReportPath, report); err != nil {
			return err
		}
		p.logger.Info("Report written", map[string]interface{}{"run_id": result.RunID, "path": p.opts.ReportPath})
	}
	return nil
}
