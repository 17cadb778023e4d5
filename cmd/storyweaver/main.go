package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "storyweaver",
		Short:        "Author, export and play location-based stories",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the project config")
	root.AddCommand(initCmd())
	root.AddCommand(importCmd())
	root.AddCommand(listCmd())
	root.AddCommand(showCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(deleteCmd())
	root.AddCommand(nodeCmd())
	root.AddCommand(edgeCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(compileCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(playCmd())
	root.AddCommand(endingsCmd())
	root.AddCommand(graphCmd())
	root.AddCommand(sqlCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
