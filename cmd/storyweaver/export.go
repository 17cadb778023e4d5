package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/export"
)

func exportCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <story-id>",
		Short: "Write the choreography and manifests of a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], outDir)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (defaults to <export.output_dir>/<story-id>)")
	return cmd
}

func runExport(id, outDir string) error {
	ctx := context.Background()

	cfg, logger, err := loadProject()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	doc, err := loadStory(ctx, db, id)
	if err != nil {
		return err
	}
	opts, err := exportOptions(cfg, logger)
	if err != nil {
		return err
	}
	bundle, err := export.Build(ctx, doc, opts)
	if err != nil {
		return err
	}

	if outDir == "" {
		outDir = filepath.Join(cfg.Export.OutputDir, id)
	}
	if err := bundle.WriteDir(outDir); err != nil {
		return err
	}

	// Keep the source hash so an unchanged file is still skipped on import.
	hash, err := db.GetStoryHash(ctx, id)
	if err != nil {
		return err
	}
	if err := db.SaveStory(ctx, bundle.Document, hash); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Exported %s to %s\n", id, outDir)
	fmt.Fprintf(os.Stdout, "  steps: %d\n", len(bundle.Choreography.Story))
	fmt.Fprintf(os.Stdout, "  endings: %s\n", strings.Join(bundle.Document.StoryEndings, ", "))
	if len(bundle.Skipped) > 0 {
		fmt.Fprintf(os.Stdout, "  skipped nodes: %s\n", strings.Join(bundle.Skipped, ", "))
	}
	return nil
}
