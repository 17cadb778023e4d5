package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/export"
)

func compileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <story-id>",
		Short: "Print the compiled choreography of a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(args[0])
		},
	}
	return cmd
}

func runCompile(id string) error {
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

	payload, err := json.MarshalIndent(bundle.Choreography, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding choreography: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
