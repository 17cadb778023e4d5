package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/choreography"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/endings"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/export"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/player"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/validate"
)

type ListStoriesInput struct {
	Tag string `json:"tag,omitempty" jsonschema:"only stories carrying this tag"`
}

type StoryIDInput struct {
	ID string `json:"id" jsonschema:"story id"`
}

type SearchStoriesInput struct {
	Query string `json:"query" jsonschema:"search terms"`
}

type NextStepsInput struct {
	ID   string `json:"id" jsonschema:"story id"`
	Step string `json:"step,omitempty" jsonschema:"step id; the begin step when empty"`
}

type ListEndingsInput struct {
	UserEmail string `json:"userEmail" jsonschema:"player email"`
}

type StorySummaryOutput struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	ExperienceName string   `json:"experience_name"`
	Tags           []string `json:"tags"`
	Exported       bool     `json:"exported"`
	LastModified   string   `json:"last_modified"`
}

type ListStoriesOutput struct {
	Stories []StorySummaryOutput `json:"stories"`
}

type NodeOutput struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type EdgeOutput struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Handle string `json:"handle,omitempty"`
}

type StoryOutput struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	ExperienceName string       `json:"experience_name"`
	Description    string       `json:"description"`
	Tags           []string     `json:"tags"`
	Nodes          []NodeOutput `json:"nodes"`
	Edges          []EdgeOutput `json:"edges"`
	Characters     []string     `json:"characters"`
	Locations      []string     `json:"locations"`
	Endings        []string     `json:"endings"`
}

type SearchResultOutput struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet"`
}

type SearchStoriesOutput struct {
	Results []SearchResultOutput `json:"results"`
}

type IssueOutput struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Node     string `json:"node,omitempty"`
}

type ValidateOutput struct {
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
	Issues   []IssueOutput `json:"issues"`
}

type CompileOutput struct {
	ExperienceName string   `json:"experience_name"`
	Steps          int      `json:"steps"`
	Skipped        []string `json:"skipped"`
	Endings        []string `json:"endings"`
	Choreography   string   `json:"choreography"`
}

type StepOutput struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Text   string `json:"text,omitempty"`
}

type NextStepsOutput struct {
	Step StepOutput   `json:"step"`
	Next []StepOutput `json:"next"`
}

type EndingRecordOutput struct {
	StoryID        string   `json:"storyId"`
	EndingsSeen    []string `json:"endingsSeen"`
	AllEndings     []string `json:"allEndings"`
	ExperienceName string   `json:"experienceName"`
	LastPlayed     string   `json:"lastPlayed"`
}

type ListEndingsOutput struct {
	Records []EndingRecordOutput `json:"records"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_stories",
		Description: "List stored stories, newest first",
	}, s.handleListStories)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_story",
		Description: "Show the nodes, edges and catalogs of a story",
	}, s.handleGetStory)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_stories",
		Description: "Full-text search over story titles, tags and descriptions",
	}, s.handleSearchStories)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "validate_story",
		Description: "Lint a story for structural problems",
	}, s.handleValidateStory)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "compile_story",
		Description: "Compile a story into its choreography JSON",
	}, s.handleCompileStory)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "next_steps",
		Description: "Show a step of a story and the steps reachable from it",
	}, s.handleNextSteps)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "record_ending",
		Description: "Record that a player reached an ending",
	}, s.handleRecordEnding)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_endings",
		Description: "List the endings a player has reached per story",
	}, s.handleListEndings)
}

func (s *Server) loadStory(ctx context.Context, id string) (*story.Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("id is required")
	}
	doc, err := s.db.GetStory(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("story not found: %s", id)
	}
	return doc, nil
}

func (s *Server) handleListStories(ctx context.Context, req *sdk.CallToolRequest, input ListStoriesInput) (*sdk.CallToolResult, ListStoriesOutput, error) {
	items, err := s.db.ListStories(ctx, input.Tag)
	if err != nil {
		return nil, ListStoriesOutput{}, err
	}
	output := make([]StorySummaryOutput, 0, len(items))
	for _, item := range items {
		output = append(output, storySummaryOutput(item))
	}
	return nil, ListStoriesOutput{Stories: output}, nil
}

func (s *Server) handleGetStory(ctx context.Context, req *sdk.CallToolRequest, input StoryIDInput) (*sdk.CallToolResult, StoryOutput, error) {
	doc, err := s.loadStory(ctx, input.ID)
	if err != nil {
		return nil, StoryOutput{}, err
	}
	return nil, storyOutput(doc), nil
}

func (s *Server) handleSearchStories(ctx context.Context, req *sdk.CallToolRequest, input SearchStoriesInput) (*sdk.CallToolResult, SearchStoriesOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchStoriesOutput{}, fmt.Errorf("query is required")
	}
	results, err := s.db.SearchStories(ctx, input.Query)
	if err != nil {
		return nil, SearchStoriesOutput{}, err
	}
	output := make([]SearchResultOutput, 0, len(results))
	for _, r := range results {
		output = append(output, SearchResultOutput{
			ID:      r.ID,
			Title:   r.Title,
			Tags:    append([]string{}, r.Tags...),
			Score:   r.Score,
			Snippet: r.Snippet,
		})
	}
	return nil, SearchStoriesOutput{Results: output}, nil
}

func (s *Server) handleValidateStory(ctx context.Context, req *sdk.CallToolRequest, input StoryIDInput) (*sdk.CallToolResult, ValidateOutput, error) {
	doc, err := s.loadStory(ctx, input.ID)
	if err != nil {
		return nil, ValidateOutput{}, err
	}
	report := validate.Run(doc)
	output := ValidateOutput{
		Errors:   report.Count(validate.SeverityError),
		Warnings: report.Count(validate.SeverityWarn),
		Issues:   make([]IssueOutput, 0, len(report.Issues)),
	}
	for _, issue := range report.Issues {
		output.Issues = append(output.Issues, IssueOutput{
			Severity: string(issue.Severity),
			Code:     issue.Code,
			Message:  issue.Message,
			Node:     issue.Node,
		})
	}
	return nil, output, nil
}

func (s *Server) handleCompileStory(ctx context.Context, req *sdk.CallToolRequest, input StoryIDInput) (*sdk.CallToolResult, CompileOutput, error) {
	doc, err := s.loadStory(ctx, input.ID)
	if err != nil {
		return nil, CompileOutput{}, err
	}
	bundle, err := export.Build(ctx, doc, s.exportOpts)
	if err != nil {
		return nil, CompileOutput{}, err
	}
	data, err := json.Marshal(bundle.Choreography)
	if err != nil {
		return nil, CompileOutput{}, fmt.Errorf("encoding choreography: %w", err)
	}
	return nil, CompileOutput{
		ExperienceName: bundle.Choreography.ExperienceName,
		Steps:          len(bundle.Choreography.Story),
		Skipped:        append([]string{}, bundle.Skipped...),
		Endings:        bundle.Document.StoryEndings,
		Choreography:   string(data),
	}, nil
}

func (s *Server) handleNextSteps(ctx context.Context, req *sdk.CallToolRequest, input NextStepsInput) (*sdk.CallToolResult, NextStepsOutput, error) {
	doc, err := s.loadStory(ctx, input.ID)
	if err != nil {
		return nil, NextStepsOutput{}, err
	}
	session, err := player.NewGraphSession(doc.Nodes, doc.Edges, player.WithLogger(s.logger))
	if err != nil {
		return nil, NextStepsOutput{}, err
	}
	defer session.Close()

	if input.Step != "" {
		if err := session.JumpTo(input.Step); err != nil {
			return nil, NextStepsOutput{}, err
		}
	}

	output := NextStepsOutput{Step: stepOutput(session.Current()), Next: []StepOutput{}}
	for _, next := range session.NextSteps() {
		output.Next = append(output.Next, stepOutput(next))
	}
	return nil, output, nil
}

func (s *Server) handleRecordEnding(ctx context.Context, req *sdk.CallToolRequest, input endings.Update) (*sdk.CallToolResult, EndingRecordOutput, error) {
	rec, err := s.tracker.Apply(ctx, input)
	if err != nil {
		return nil, EndingRecordOutput{}, err
	}
	return nil, endingRecordOutput(*rec), nil
}

func (s *Server) handleListEndings(ctx context.Context, req *sdk.CallToolRequest, input ListEndingsInput) (*sdk.CallToolResult, ListEndingsOutput, error) {
	if strings.TrimSpace(input.UserEmail) == "" {
		return nil, ListEndingsOutput{}, fmt.Errorf("userEmail is required")
	}
	records, err := s.db.ListEndingRecords(ctx, input.UserEmail)
	if err != nil {
		return nil, ListEndingsOutput{}, err
	}
	output := make([]EndingRecordOutput, 0, len(records))
	for _, rec := range records {
		output = append(output, endingRecordOutput(rec))
	}
	return nil, ListEndingsOutput{Records: output}, nil
}

func storySummaryOutput(s store.StorySummary) StorySummaryOutput {
	return StorySummaryOutput{
		ID:             s.ID,
		Title:          s.Title,
		ExperienceName: s.ExperienceName,
		Tags:           append([]string{}, s.Tags...),
		Exported:       s.Exported,
		LastModified:   s.LastModified.UTC().Format(time.RFC3339),
	}
}

func storyOutput(doc *story.Document) StoryOutput {
	out := StoryOutput{
		ID:             doc.ID,
		Title:          doc.Title,
		ExperienceName: doc.ExperienceName,
		Description:    doc.Description,
		Tags:           append([]string{}, doc.Tags...),
		Nodes:          make([]NodeOutput, 0, len(doc.Nodes)),
		Edges:          make([]EdgeOutput, 0, len(doc.Edges)),
		Characters:     make([]string, 0, len(doc.Characters)),
		Locations:      make([]string, 0, len(doc.Locations)),
		Endings:        append([]string{}, doc.StoryEndings...),
	}
	for _, n := range doc.Nodes {
		out.Nodes = append(out.Nodes, NodeOutput{ID: n.ID, Type: string(n.Type), Name: n.Data.Name})
	}
	for _, e := range doc.Edges {
		out.Edges = append(out.Edges, EdgeOutput{Source: e.Source, Target: e.Target, Handle: e.SourceHandle})
	}
	for _, c := range doc.Characters {
		out.Characters = append(out.Characters, c.Name)
	}
	for _, l := range doc.Locations {
		out.Locations = append(out.Locations, l.Name)
	}
	return out
}

func endingRecordOutput(rec store.EndingRecord) EndingRecordOutput {
	return EndingRecordOutput{
		StoryID:        rec.StoryID,
		EndingsSeen:    append([]string{}, rec.EndingsSeen...),
		AllEndings:     append([]string{}, rec.AllEndings...),
		ExperienceName: rec.ExperienceName,
		LastPlayed:     rec.LastPlayed.UTC().Format(time.RFC3339),
	}
}

func stepOutput(step choreography.Step) StepOutput {
	return StepOutput{ID: step.ID, Action: string(step.Action), Text: step.Data.Text}
}
