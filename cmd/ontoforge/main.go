/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Entry point for ontoforge. Infers a typed schema from heterogeneous records and
renders them as a Turtle/OWL ontology. Provides render, infer, check and watch commands.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/ontoforge/cmd/ontoforge/commands"
	"github.com/kleascm/ontoforge/pkg/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "1.0.0"

func main() {
	commands.Version = version

	rootCmd := &cobra.Command{
		Use:   "ontoforge",
		Short: "Schema inference and ontology rendering for heterogeneous records",
		Long: `ontoforge collects records from files, REST APIs, HTML tables and SQL databases,
infers a datatype for every field by majority vote, coerces the values and renders
the result as a Turtle/OWL ontology. The defaults reproduce the mindat.org mineral
ontology.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file (YAML, TOML or JSON)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file with API keys")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "pipeline", "Log format (json, text, custom, pipeline)")
	rootCmd.PersistentFlags().String("log-dir", "", "Directory for log files (empty disables)")
	rootCmd.PersistentFlags().StringP("output", "o", "mineral_rdf.ttl", "Output document path ('-' for stdout)")
	rootCmd.PersistentFlags().String("report", "", "Write a field profile report (.yaml or .json)")
	rootCmd.PersistentFlags().String("metrics-dir", "", "Directory for run metrics")
	rootCmd.PersistentFlags().Bool("strict", false, "Abort on the first malformed record instead of skipping it")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("env_file", rootCmd.PersistentFlags().Lookup("env-file"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log.output_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("report", rootCmd.PersistentFlags().Lookup("report"))
	viper.BindPFlag("metrics_dir", rootCmd.PersistentFlags().Lookup("metrics-dir"))
	viper.BindPFlag("ontology.strict", rootCmd.PersistentFlags().Lookup("strict"))

	rootCmd.AddCommand(&cobra.Command{
		Use:   "render",
		Short: "Fetch, infer, coerce and render the ontology document",
		Long: `Run the whole pipeline once. Records from every configured source are
concatenated in order, their schema is inferred, values are coerced and the ontology
is written atomically to the output path.`,
		RunE: commands.PerformRender,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "infer",
		Short: "Print the inferred schema without rendering",
		Long: `Fetch the configured sources and print every field with its inferred datatype,
ontology range, confidence and per-type vote counts.`,
		RunE: commands.PerformInference,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate configuration and source reachability",
		Long: `Validate the configuration, the output location and every source without
writing a document. Very useful for CI/CD integration.`,
		RunE: commands.PerformSelfCheck,
	})

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render whenever a file source changes",
		Long: `Render once and then watch every file source. Each change re-runs the pipeline
after a short quiet period.`,
		RunE: commands.PerformWatch,
	}
	watchCmd.Flags().Duration("debounce", pipeline.DefaultDebounce, "Quiet period before a change triggers a render")
	viper.BindPFlag("debounce", watchCmd.Flags().Lookup("debounce"))
	rootCmd.AddCommand(watchCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
