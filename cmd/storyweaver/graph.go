package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Mirror stories into neo4j and query them",
	}
	cmd.AddCommand(graphPushCmd())
	cmd.AddCommand(graphNextCmd())
	cmd.AddCommand(graphCypherCmd())
	return cmd
}

func graphPushCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "push [story-id...]",
		Short: "Push stories to the graph mirror (all stories when no id is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphPush(args, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Push even when the mirror already has the stored hash")
	return cmd
}

func runGraphPush(ids []string, force bool) error {
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

	client, err := openGraph(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	if err := client.EnsureIndexes(ctx); err != nil {
		return err
	}

	if len(ids) == 0 {
		stories, err := db.ListStories(ctx, "")
		if err != nil {
			return err
		}
		for _, s := range stories {
			ids = append(ids, s.ID)
		}
	}

	pushed, unchanged := 0, 0
	for _, id := range ids {
		doc, err := loadStory(ctx, db, id)
		if err != nil {
			return err
		}
		hash, err := db.GetStoryHash(ctx, id)
		if err != nil {
			return err
		}
		if !force && hash != "" {
			mirrored, err := client.StoryHash(ctx, id)
			if err != nil {
				return err
			}
			if mirrored == hash {
				unchanged++
				continue
			}
		}
		result, err := client.PushStory(ctx, doc, hash)
		if err != nil {
			return err
		}
		pushed++
		fmt.Fprintf(os.Stdout, "pushed %s: %d steps, %d links, %d stale steps removed\n", id, result.Steps, result.Links, result.Removed)
	}
	fmt.Fprintf(os.Stdout, "Pushed: %d, unchanged: %d\n", pushed, unchanged)
	return nil
}

func graphNextCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "next <story-id> <step-id>",
		Short: "List the steps reachable from a step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphNext(args[0], args[1], depth)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 1, "Maximum number of hops")
	return cmd
}

func runGraphNext(storyID, stepID string, depth int) error {
	ctx := context.Background()

	cfg, logger, err := loadProject()
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := openGraph(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	hops, err := client.Successors(ctx, storyID, stepID, depth)
	if err != nil {
		return err
	}
	if len(hops) == 0 {
		fmt.Fprintln(os.Stdout, "No successors found.")
		return nil
	}
	for _, hop := range hops {
		handle := ""
		if hop.Handle != "" {
			handle = fmt.Sprintf(" [%s]", hop.Handle)
		}
		fmt.Fprintf(os.Stdout, "%s -> %s%s (depth %d)\n", hop.From.ID, hop.To.ID, handle, hop.Depth)
	}
	return nil
}

func graphCypherCmd() *cobra.Command {
	var paramPairs []string
	cmd := &cobra.Command{
		Use:   "cypher <query>",
		Short: "Execute a read-only Cypher query against the mirror",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			params, err := parseParamPairs(paramPairs)
			if err != nil {
				return err
			}
			return runCypher(query, params)
		},
	}
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "Query parameter as key=value (repeatable)")
	return cmd
}

func runCypher(query string, params map[string]any) error {
	ctx := context.Background()

	cfg, logger, err := loadProject()
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := openGraph(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	rows, err := client.RunCypher(ctx, query, params)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
