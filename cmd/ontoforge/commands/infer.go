/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: infer.go
Description: Schema inference command implementation. Fetches the configured sources and
prints the inferred datatype, ontology range and confidence of every field without
rendering a document.
*/

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/kleascm/ontoforge/pkg/coercion"
	"github.com/kleascm/ontoforge/pkg/inference"
	"github.com/kleascm/ontoforge/pkg/reporting"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// PerformInference prints the schema inferred from the configured sources
func PerformInference(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	logger, err := SetupLogging(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	p, err := buildPipeline(cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	ds, err := p.Fetch(ctx)
	if err != nil {
		return err
	}

	candidates, err := cfg.Candidates()
	if err != nil {
		return err
	}
	runID := uuid.New().String()
	engine := inference.NewEngine(candidates, inference.WithLogger(logger.GetLogger().WithField("run_id", runID)))
	schema, err := engine.Infer(ds)
	if err != nil {
		return fmt.Errorf("inference failed: %w", err)
	}

	if err := printSchema(cmd.OutOrStdout(), schema, candidates); err != nil {
		return err
	}

	if cfg.Report != "" {
		cr, err := coercion.Apply(ds.Clone(), schema)
		if err != nil {
			return fmt.Errorf("coercion failed: %w", err)
		}
		if err := reporting.WriteReport(cfg.Report, reporting.BuildProfile(runID, ds, schema, cr, nil)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📊 Report: %s\n", cfg.Report)
	}
	return nil
}

// printSchema renders the schema as a table, one row per field in first-seen order
func printSchema(w io.Writer, schema *inference.Schema, candidates inference.Candidates) error {
	data := pterm.TableData{{"Field", "Datatype", "Range", "Confidence", "Votes", "Counts"}}
	for _, p := range schema.Profiles() {
		counts := make([]string, 0, len(p.Counts))
		for _, d := range candidates.Order() {
			if n := p.Count(d); n > 0 {
				counts = append(counts, fmt.Sprintf("%s=%d", d, n))
			}
		}
		data = append(data, []string{
			p.Name,
			p.Datatype.String(),
			p.Datatype.Range(),
			fmt.Sprintf("%.2f", p.Confidence),
			p.ConfidenceRatio(),
			strings.Join(counts, " "),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}
