package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gts-generator/internal/batch"
	"gts-generator/internal/config"
)

func generateCmd() *cobra.Command {
	var (
		configPath string
		sourceRoot string
		outputRoot string
		excludes   []string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Scan Go sources and emit JSON Schema artifacts",
		Long: `generate walks the source root, extracts every struct annotated with a
gts:schema directive, validates the declarations, and writes one JSON
Schema artifact per declaration.

Failing declarations are reported and skipped; the run exits non-zero
if any declaration failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			if sourceRoot != "" {
				cfg.SourceRoot = sourceRoot
			}

			if outputRoot != "" {
				cfg.OutputRoot = outputRoot
			}

			cfg.Excludes = append(cfg.Excludes, excludes...)

			opts := batch.Options{
				SourceRoot: cfg.SourceRoot,
				OutputRoot: cfg.OutputRoot,
				Excludes:   cfg.Excludes,
				DryRun:     dryRun,
			}

			log := newLogger()

			summary, err := batch.NewDriver(opts, log).Run(cmd.Context())
			if err != nil {
				return err
			}

			printSummary(cmd, summary)

			if !summary.OK() {
				return fmt.Errorf("%d of %d declarations failed",
					summary.FailedCount(), len(summary.Results))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"config file path (default: gts.yaml if present)")
	cmd.Flags().StringVarP(&sourceRoot, "source", "s", "",
		"source root to scan (overrides config)")
	cmd.Flags().StringVarP(&outputRoot, "output", "o", "",
		"output root for all artifacts (overrides per-file resolution)")
	cmd.Flags().StringArrayVarP(&excludes, "exclude", "e", nil,
		"doublestar glob of files to skip (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"validate and compose without writing artifacts")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}

	return config.LoadDefault()
}

func printSummary(cmd *cobra.Command, summary *batch.Summary) {
	for _, r := range summary.Results {
		if r.Err == nil {
			continue
		}

		if r.Code != "" {
			cmd.Printf("FAIL  %s: [%s] %v\n", r.Declaration, r.Code, r.Err)
		} else {
			cmd.Printf("FAIL  %s: %v\n", r.Declaration, r.Err)
		}
	}

	cmd.Printf("scanned %d files (%d skipped), emitted %d schemas, %d failed\n",
		summary.Stats.FilesScanned,
		summary.Stats.FilesSkipped,
		summary.EmittedCount(),
		summary.FailedCount())
}
