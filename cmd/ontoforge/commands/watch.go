/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: watch.go
Description: Watch command implementation. Renders once, then re-renders whenever a file
source changes on disk, until interrupted.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/ontoforge/pkg/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// PerformWatch re-runs the pipeline on every change to a file source
func PerformWatch(cmd *cobra.Command, args []string) error {
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

	paths := p.WatchPaths()
	if len(paths) == 0 {
		return fmt.Errorf("watch needs at least one file source")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	w := summaryWriter(cmd, cfg)
	fmt.Fprintf(w, "👀 Watching %d file(s), press Ctrl+C to stop\n", len(paths))

	return p.Watch(ctx, paths, viper.GetDuration("debounce"), func(result *pipeline.Result, err error) {
		if err != nil {
			fmt.Fprintf(w, "❌ Render failed: %v\n", err)
			return
		}
		printRunSummary(w, cfg, result)
	})
}
