/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Self-check command implementation. Validates configuration, the output location
and every configured source without writing a document. Useful in CI before a render.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kleascm/ontoforge/pkg/pipeline"
	"github.com/kleascm/ontoforge/pkg/sources"
	"github.com/spf13/cobra"
)

// PerformSelfCheck validates configuration and source reachability
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔍 ontoforge self-check")
	fmt.Fprintln(out, "======================")

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(out, "❌ Configuration: %v\n", err)
		return err
	}
	fmt.Fprintln(out, "✅ Configuration is valid")

	logger, err := SetupLogging(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	if cfg.Output != "" && cfg.Output != pipeline.StdoutPath {
		dir := filepath.Dir(cfg.Output)
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(out, "❌ Output directory %s: %v\n", dir, err)
			return err
		}
		fmt.Fprintf(out, "✅ Output directory %s is writable\n", dir)
	}

	srcs, err := sources.BuildSources(cfg.Sources, logger.GetLogger())
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	failed := 0
	for _, src := range srcs {
		if err := sources.Check(ctx, src); err != nil {
			fmt.Fprintf(out, "❌ Source %s: %v\n", src.Name(), err)
			failed++
			continue
		}
		fmt.Fprintf(out, "✅ Source %s (%s)\n", src.Name(), src.Description())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed the check", failed, len(srcs))
	}
	fmt.Fprintln(out, "🎉 All checks passed")
	return nil
}
