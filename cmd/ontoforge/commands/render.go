/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: render.go
Description: Render command implementation. Runs the full pipeline once and writes the
ontology document, the optional profile report and run metrics.
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// PerformRender runs fetch, inference, coercion and rendering once
func PerformRender(cmd *cobra.Command, args []string) error {
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

	result, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	printRunSummary(summaryWriter(cmd, cfg), cfg, result)
	return nil
}
