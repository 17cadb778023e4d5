package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/document"
)

func importCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "import [paths...]",
		Short: "Import story files into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args, full)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Re-import files whose contents did not change")
	return cmd
}

func runImport(paths []string, full bool) error {
	ctx := context.Background()

	cfg, logger, err := loadProject()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(paths) == 0 {
		paths = cfg.Stories
	}
	if len(paths) == 0 {
		return fmt.Errorf("no story paths given and none configured")
	}

	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	result, err := document.Import(ctx, db, paths, document.Options{
		Full:    full,
		Exclude: cfg.Exclude,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	for _, id := range result.Imported {
		fmt.Fprintf(os.Stdout, "imported %s\n", id)
	}
	fmt.Fprintf(os.Stdout, "Imported: %d, unchanged: %d, errors: %d\n", len(result.Imported), result.Skipped, len(result.Errors))
	for _, importErr := range result.Errors {
		fmt.Fprintf(os.Stdout, "  - %v\n", importErr)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("import completed with errors")
	}
	return nil
}
