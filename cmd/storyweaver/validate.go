package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/document"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/validate"
)

func validateCmd() *cobra.Command {
	var files []string
	var withGraph bool
	cmd := &cobra.Command{
		Use:   "validate [story-id...]",
		Short: "Run consistency checks against stories",
		Long:  "Run consistency checks against stored stories (all of them when no id is given) or against story files passed with --file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args, files, withGraph)
		},
	}
	cmd.Flags().StringArrayVar(&files, "file", nil, "Validate a story file instead of the database (repeatable)")
	cmd.Flags().BoolVar(&withGraph, "graph", false, "Also run reachability checks against the neo4j mirror")
	return cmd
}

func runValidate(ids, files []string, withGraph bool) error {
	ctx := context.Background()
	report := &validate.Report{}

	if len(files) > 0 {
		for _, path := range files {
			doc, err := document.ParseFile(path)
			if err != nil {
				return err
			}
			report.Issues = append(report.Issues, validate.Run(doc).Issues...)
		}
		return printReport(os.Stdout, report)
	}

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

	if len(ids) == 0 {
		stories, err := db.ListStories(ctx, "")
		if err != nil {
			return err
		}
		for _, s := range stories {
			ids = append(ids, s.ID)
		}
	}

	for _, id := range ids {
		doc, err := loadStory(ctx, db, id)
		if err != nil {
			return err
		}
		report.Issues = append(report.Issues, validate.Run(doc).Issues...)
	}

	if withGraph {
		client, err := openGraph(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer client.Close(ctx)
		for _, id := range ids {
			graphReport, err := validate.RunGraph(ctx, id, client)
			if err != nil {
				return err
			}
			report.Issues = append(report.Issues, graphReport.Issues...)
		}
	}

	return printReport(os.Stdout, report)
}

func printReport(out io.Writer, report *validate.Report) error {
	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(out, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(out, "Errors (%d):\n", len(errorIssues))
		printIssues(out, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(out, "")
		}
		fmt.Fprintf(out, "Warnings (%d):\n", len(warnIssues))
		printIssues(out, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := issue.Story
		if issue.Node != "" {
			location = fmt.Sprintf("%s/%s", issue.Story, issue.Node)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
