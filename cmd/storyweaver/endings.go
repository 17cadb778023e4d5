package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/endings"
)

func endingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endings",
		Short: "Inspect and record the endings users have reached",
	}
	cmd.AddCommand(endingsListCmd())
	cmd.AddCommand(endingsRecordCmd())
	return cmd
}

func endingsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <user>",
		Short: "List a user's ending records, most recently played first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEndingsList(args[0])
		},
	}
	return cmd
}

func runEndingsList(user string) error {
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

	records, err := db.ListEndingRecords(ctx, user)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "No endings recorded.")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(os.Stdout, "%s %q %d/%d [%s] last played %s\n",
			rec.StoryID, rec.ExperienceName, len(rec.EndingsSeen), len(rec.AllEndings),
			strings.Join(rec.EndingsSeen, ", "), rec.LastPlayed.Format(time.RFC3339))
	}
	return nil
}

func endingsRecordCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "record <story-id> <ending>",
		Short: "Record that a user reached an ending",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(user) == "" {
				return fmt.Errorf("--user is required")
			}
			return runEndingsRecord(user, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User email")
	return cmd
}

func runEndingsRecord(user, storyID, ending string) error {
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

	doc, err := loadStory(ctx, db, storyID)
	if err != nil {
		return err
	}
	experience := doc.ExperienceName
	if experience == "" {
		experience = doc.Title
	}

	tracker := endings.NewTracker(db, endings.WithLogger(logger))
	rec, err := tracker.Apply(ctx, endings.Update{
		StoryID:        storyID,
		UserEmail:      user,
		Ending:         ending,
		ExperienceName: experience,
		AllEndings:     doc.StoryEndings,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s has seen %d of %d endings of %s\n", user, len(rec.EndingsSeen), len(rec.AllEndings), storyID)
	return nil
}
