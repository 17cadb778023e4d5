package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored stories, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(tag)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Only list stories with this tag")
	return cmd
}

func runList(tag string) error {
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

	stories, err := db.ListStories(ctx, tag)
	if err != nil {
		return err
	}
	if len(stories) == 0 {
		fmt.Fprintln(os.Stdout, "No stories found.")
		return nil
	}

	for _, s := range stories {
		status := "draft"
		if s.Exported {
			status = "exported"
		}
		fmt.Fprintf(os.Stdout, "%s %q [%s] %s %s\n", s.ID, s.Title, strings.Join(s.Tags, ","), status, s.LastModified.Format(time.RFC3339))
	}
	return nil
}
