package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/graph"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

func nodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Edit the nodes of a stored story",
	}
	cmd.AddCommand(nodeAddCmd())
	cmd.AddCommand(nodeSetCmd())
	cmd.AddCommand(nodeRemoveCmd())
	return cmd
}

func edgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Edit the edges of a stored story",
	}
	cmd.AddCommand(edgeAddCmd())
	cmd.AddCommand(edgeRemoveCmd())
	return cmd
}

func nodeAddCmd() *cobra.Command {
	var pairs []string
	cmd := &cobra.Command{
		Use:   "add <story-id> <type>",
		Short: "Add a node with its type defaults",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseDataPairs(pairs)
			if err != nil {
				return err
			}
			nodeType, err := story.ParseNodeType(args[1])
			if err != nil {
				return err
			}
			return editStory(args[0], func(s *graph.Store) (string, error) {
				node, err := s.AddNode(nodeType, fields)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("added node %s (%s)", node.ID, node.Type), nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&pairs, "set", nil, "Initial field as key=value (repeatable)")
	return cmd
}

func nodeSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <story-id> <node-id> key=value...",
		Short: "Patch node fields; an empty value clears the field",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseDataPairs(args[2:])
			if err != nil {
				return err
			}
			return editStory(args[0], func(s *graph.Store) (string, error) {
				node, err := s.UpdateNodeData(args[1], patch)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("updated node %s", node.ID), nil
			})
		},
	}
	return cmd
}

func nodeRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <story-id> <node-id>",
		Short: "Remove a node and the edges touching it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editStory(args[0], func(s *graph.Store) (string, error) {
				if err := s.RemoveNode(args[1]); err != nil {
					return "", err
				}
				return fmt.Sprintf("removed node %s", args[1]), nil
			})
		},
	}
	return cmd
}

func edgeAddCmd() *cobra.Command {
	var handle string
	cmd := &cobra.Command{
		Use:   "add <story-id> <source> <target>",
		Short: "Connect two nodes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editStory(args[0], func(s *graph.Store) (string, error) {
				edge, err := s.AddEdge(args[1], args[2], handle)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("edge %s: %s -> %s", edge.ID, edge.Source, edge.Target), nil
			})
		},
	}
	cmd.Flags().StringVar(&handle, "handle", "", "Source handle (answer index for quiz nodes)")
	return cmd
}

func edgeRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <story-id> <edge-id>",
		Short: "Remove an edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editStory(args[0], func(s *graph.Store) (string, error) {
				if err := s.RemoveEdge(args[1]); err != nil {
					return "", err
				}
				return fmt.Sprintf("removed edge %s", args[1]), nil
			})
		},
	}
	return cmd
}

// editStory loads a story into an editing session, applies edit and saves
// the result. Edited stories are stored without a source hash so the next
// import of their file is not skipped.
func editStory(id string, edit func(*graph.Store) (string, error)) error {
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

	session := graph.FromDocument(doc, graph.WithLogger(logger))
	message, err := edit(session)
	if err != nil {
		return err
	}

	edited := session.Document()
	edited.LastModified = time.Now().UTC()
	if err := db.SaveStory(ctx, edited, ""); err != nil {
		return err
	}
	logger.Debug("story edited", zap.String("story", id))
	fmt.Fprintln(os.Stdout, message)
	return nil
}

// parseDataPairs reads key=value node fields. Values that look like JSON
// arrays or objects are decoded, an empty value becomes nil and anything
// else stays a string.
func parseDataPairs(pairs []string) (map[string]any, error) {
	params, err := parseParamPairs(pairs)
	if err != nil {
		return nil, err
	}
	for key, value := range params {
		raw := value.(string)
		switch {
		case raw == "":
			params[key] = nil
		case strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{"):
			var decoded any
			if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
				return nil, fmt.Errorf("invalid value for %s: %w", key, err)
			}
			params[key] = decoded
		}
	}
	return params, nil
}
