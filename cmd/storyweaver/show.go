package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

func showCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <story-id>",
		Short: "Show a stored story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full story document as JSON")
	return cmd
}

func runShow(id string, asJSON bool) error {
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

	if asJSON {
		payload, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding story: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(payload))
		return nil
	}
	printStory(doc)
	return nil
}

func printStory(doc *story.Document) {
	fmt.Fprintf(os.Stdout, "%s: %s\n", doc.ID, doc.Title)
	if doc.ExperienceName != "" {
		fmt.Fprintf(os.Stdout, "Experience: %s\n", doc.ExperienceName)
	}
	if doc.Description != "" {
		fmt.Fprintf(os.Stdout, "Description: %s\n", doc.Description)
	}
	if len(doc.Tags) > 0 {
		fmt.Fprintf(os.Stdout, "Tags: %s\n", strings.Join(doc.Tags, ", "))
	}
	if len(doc.StoryEndings) > 0 {
		fmt.Fprintf(os.Stdout, "Endings: %s\n", strings.Join(doc.StoryEndings, ", "))
	}

	fmt.Fprintf(os.Stdout, "\nNodes (%d):\n", len(doc.Nodes))
	for _, node := range doc.Nodes {
		label := node.Data.Name
		if label == "" {
			label = node.Data.Question
		}
		if node.Type == story.NodeEnd && node.Data.EndingID != "" {
			label = node.Data.EndingID
		}
		fmt.Fprintf(os.Stdout, "  - %s (%s) %s\n", node.ID, node.Type, label)
	}

	fmt.Fprintf(os.Stdout, "\nEdges (%d):\n", len(doc.Edges))
	for _, edge := range doc.Edges {
		if edge.SourceHandle != "" {
			fmt.Fprintf(os.Stdout, "  - %s -[%s]-> %s\n", edge.Source, edge.SourceHandle, edge.Target)
			continue
		}
		fmt.Fprintf(os.Stdout, "  - %s -> %s\n", edge.Source, edge.Target)
	}

	if len(doc.Characters) > 0 {
		fmt.Fprintf(os.Stdout, "\nCharacters (%d):\n", len(doc.Characters))
		for _, c := range doc.Characters {
			fmt.Fprintf(os.Stdout, "  - %s (%s)\n", c.Name, c.ID)
		}
	}
	if len(doc.Locations) > 0 {
		fmt.Fprintf(os.Stdout, "\nLocations (%d):\n", len(doc.Locations))
		for _, l := range doc.Locations {
			fmt.Fprintf(os.Stdout, "  - %s (%s)\n", l.Name, l.ID)
		}
	}
}
