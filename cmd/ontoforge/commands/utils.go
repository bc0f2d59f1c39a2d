/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the ontoforge commands. Provides configuration loading,
logging setup and pipeline construction used across all command implementations.
*/

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/kleascm/ontoforge/pkg/config"
	"github.com/kleascm/ontoforge/pkg/logging"
	"github.com/kleascm/ontoforge/pkg/pipeline"
	"github.com/kleascm/ontoforge/pkg/sources"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is reported in run metrics file names
var Version = "dev"

// maxSkippedShown limits the skipped records printed after a run
const maxSkippedShown = 10

// LoadConfig loads and validates configuration from files, .env and environment
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SetupLogging creates the logger described by the configuration
func SetupLogging(cfg *config.Config) (*logging.Logger, error) {
	logCfg := cfg.Log
	logger, err := logging.NewLogger(&logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// buildPipeline wires configured sources, candidates and renderer options
func buildPipeline(cfg *config.Config, logger *logging.Logger, stdout io.Writer) (*pipeline.Pipeline, error) {
	srcs, err := sources.BuildSources(cfg.Sources, logger.GetLogger())
	if err != nil {
		return nil, err
	}
	candidates, err := cfg.Candidates()
	if err != nil {
		return nil, err
	}
	return pipeline.New(srcs, candidates, cfg.Ontology, logger, pipeline.Options{
		Output:     cfg.Output,
		ReportPath: cfg.Report,
		MetricsDir: cfg.MetricsDir,
		Version:    Version,
		Stdout:     stdout,
	})
}

// signalContext is cancelled on interrupt or termination
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// summaryWriter keeps stdout free when the document itself goes there
func summaryWriter(cmd *cobra.Command, cfg *config.Config) io.Writer {
	if cfg.Output == pipeline.StdoutPath {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

// printRunSummary prints counts, recoveries and skipped records of a run
func printRunSummary(w io.Writer, cfg *config.Config, result *pipeline.Result) {
	doc := result.Document
	fmt.Fprintf(w, "✅ Rendered %d individuals from %d records (run %s)\n", doc.Individuals, len(result.Raw), result.RunID)
	switch cfg.Output {
	case "":
	case pipeline.StdoutPath:
		fmt.Fprintln(w, "📄 Document: stdout")
	default:
		fmt.Fprintf(w, "📄 Document: %s\n", cfg.Output)
	}
	if cfg.Report != "" {
		fmt.Fprintf(w, "📊 Report: %s\n", cfg.Report)
	}

	recoveries := result.Recoveries()
	if len(recoveries) > 0 {
		fields := make([]string, 0, len(recoveries))
		for f := range recoveries {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		fmt.Fprintln(w, "⚠️  Values replaced by the empty string:")
		for _, f := range fields {
			fmt.Fprintf(w, "   %s: %d\n", f, recoveries[f])
		}
	}

	skipped := result.Skipped()
	if len(skipped) > 0 {
		fmt.Fprintf(w, "⏭️  Skipped %d records:\n", len(skipped))
		for i, s := range skipped {
			if i == maxSkippedShown {
				fmt.Fprintf(w, "   ... and %d more\n", len(skipped)-maxSkippedShown)
				break
			}
			fmt.Fprintf(w, "   record %d: %v\n", s.Index, s.Err)
		}
	}
}
