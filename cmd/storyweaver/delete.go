package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <story-id>",
		Short: "Delete a story and its graph mirror",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(args[0])
		},
	}
	return cmd
}

func runDelete(id string) error {
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

	deleted, err := db.DeleteStory(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("story %s not found", id)
	}
	fmt.Fprintf(os.Stdout, "deleted %s\n", id)

	client, err := openGraph(ctx, cfg, logger)
	if errors.Is(err, errNoGraph) {
		return nil
	}
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	removed, err := client.DeleteStory(ctx, id)
	if err != nil {
		return err
	}
	logger.Info("graph mirror removed", zap.String("story", id), zap.Int64("steps", removed))
	return nil
}
