package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/config"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/graph"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

func initCmd() *cobra.Command {
	var projectName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new storyweaver project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(".", projectName)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	return cmd
}

func runInit(dir, projectName string) error {
	configFile := filepath.Join(dir, config.DefaultPath)
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("%s already exists", configFile)
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\nstories:\n  - ./stories/\n\ndatabase:\n  dsn: sqlite://storyweaver.db\n\nexport:\n  author: \"\"\n  output_dir: ./export\n\nplayer:\n  geofence_radius_m: 10\n  poll_interval: 3s\n\nlogging:\n  level: info\n  format: console\n", projectName)
	if err := os.WriteFile(configFile, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configFile, err)
	}

	storiesDir := filepath.Join(dir, "stories")
	if err := os.MkdirAll(storiesDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", storiesDir, err)
	}
	doc, err := starterStory(projectName)
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding starter story: %w", err)
	}
	storyFile := filepath.Join(storiesDir, "welcome.json")
	if err := os.WriteFile(storyFile, payload, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", storyFile, err)
	}
	return nil
}

// starterStory builds a begin -> text -> end story through the editing
// store, so the scaffold carries the same defaults a new editor graph does.
func starterStory(projectName string) (*story.Document, error) {
	s := graph.New()
	begin, err := s.AddNode(story.NodeBegin, nil)
	if err != nil {
		return nil, err
	}
	text, err := s.AddNode(story.NodeText, map[string]any{"name": "Welcome to " + projectName + "."})
	if err != nil {
		return nil, err
	}
	end, err := s.AddNode(story.NodeEnd, map[string]any{"id": "Welcome"})
	if err != nil {
		return nil, err
	}
	if _, err := s.AddEdge(begin.ID, text.ID, ""); err != nil {
		return nil, err
	}
	if _, err := s.AddEdge(text.ID, end.ID, ""); err != nil {
		return nil, err
	}

	doc := s.Document()
	doc.ID = "welcome"
	doc.Title = "Welcome"
	doc.ExperienceName = projectName
	doc.LastModified = time.Now().UTC()
	return doc, nil
}
