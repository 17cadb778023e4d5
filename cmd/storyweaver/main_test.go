package main

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/choreography"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/config"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/document"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/player"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/validate"
)

func ptr(s string) *string { return &s }

func TestParseParamPairs(t *testing.T) {
	params, err := parseParamPairs([]string{"id = s1", "", "title=a=b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"id": "s1", "title": "a=b"}
	if !reflect.DeepEqual(params, want) {
		t.Fatalf("unexpected params: %v", params)
	}

	if _, err := parseParamPairs([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
	if _, err := parseParamPairs([]string{" =x"}); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestParseDataPairs(t *testing.T) {
	fields, err := parseDataPairs([]string{`answers=["Yes","No"]`, "question=Climb?", "character="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(fields["answers"], []any{"Yes", "No"}) {
		t.Fatalf("unexpected answers: %#v", fields["answers"])
	}
	if fields["question"] != "Climb?" {
		t.Fatalf("unexpected question: %#v", fields["question"])
	}
	if value, ok := fields["character"]; !ok || value != nil {
		t.Fatalf("expected character to clear, got %#v", value)
	}

	if _, err := parseDataPairs([]string{"answers=[oops"}); err == nil {
		t.Fatalf("expected error for malformed JSON value")
	}
}

func TestParseLatLng(t *testing.T) {
	p, err := parseLatLng("41.1406, -8.6132")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != (story.LatLng{Lat: 41.1406, Lng: -8.6132}) {
		t.Fatalf("unexpected position: %+v", p)
	}

	for _, value := range []string{"", "41.1", "north,-8", "41,west", "91,0", "0,181"} {
		if _, err := parseLatLng(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func towerChoreography() *choreography.Choreography {
	return &choreography.Choreography{
		ExperienceName: "Tower climb",
		Story: []choreography.Step{
			{ID: "b", Action: choreography.ActionBegin, GoToStep: ptr("t")},
			{
				ID:       "t",
				Action:   choreography.ActionText,
				Actor:    &choreography.Actor{ID: "c1", Name: "Guide"},
				Trigger:  &choreography.Trigger{Interaction: "talk_to", Target: "Guide"},
				Data:     choreography.Data{Text: "Ready to climb?"},
				GoToStep: ptr("q"),
			},
			{ID: "q", Action: choreography.ActionChoice, Data: choreography.Data{
				Text: "Which way?",
				Options: []choreography.Option{
					{Label: "Stairs", GoToStep: ptr("top")},
					{Label: "Cafe", GoToStep: ptr("cafe")},
				},
			}},
			{ID: "top", Action: choreography.ActionEnd, Data: choreography.Data{Ending: "Summit"}},
			{ID: "cafe", Action: choreography.ActionEnd, Data: choreography.Data{Ending: "Cafe"}},
		},
	}
}

func TestPlayLoop(t *testing.T) {
	session, err := player.NewSession(towerChoreography())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer session.Close()

	in := strings.NewReader("\n\ninteract Guide\nnext\n7\n2\n")
	var out bytes.Buffer
	ending, err := playLoop(session, in, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ending != "Cafe" {
		t.Fatalf("unexpected ending %q\n%s", ending, out.String())
	}

	text := out.String()
	for _, want := range []string{
		"[t] Guide: Ready to climb?",
		"waiting: talk_to Guide",
		"! step is waiting on its trigger",
		"2) Cafe",
		"no option 6",
		"[cafe] The end: Cafe",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected output to contain %q\n%s", want, text)
		}
	}
}

func TestPlayLoop_InputEnds(t *testing.T) {
	session, err := player.NewSession(towerChoreography())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer session.Close()

	var out bytes.Buffer
	ending, err := playLoop(session, strings.NewReader("bogus\nquit\n"), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ending != "" {
		t.Fatalf("expected no ending, got %q", ending)
	}
	if !strings.Contains(out.String(), `unknown command "bogus"`) {
		t.Fatalf("expected unknown command message\n%s", out.String())
	}
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	if err := runInit(dir, "porto-tours"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := config.LoadProjectConfig(filepath.Join(dir, config.DefaultPath))
	if err != nil {
		t.Fatalf("scaffolded config does not load: %v", err)
	}
	if cfg.Project != "porto-tours" || cfg.Database.DSN != "sqlite://storyweaver.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	doc, err := document.ParseFile(filepath.Join(dir, "stories", "welcome.json"))
	if err != nil {
		t.Fatalf("starter story does not parse: %v", err)
	}
	if doc.ID != "welcome" || len(doc.Nodes) != 3 || len(doc.Edges) != 2 {
		t.Fatalf("unexpected starter story: %+v", doc)
	}
	if report := validate.Run(doc); report.HasErrors() {
		t.Fatalf("starter story has errors: %+v", report.Issues)
	}

	if err := runInit(dir, "porto-tours"); err == nil {
		t.Fatalf("expected error when config already exists")
	}
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	if err := printReport(&out, &validate.Report{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "No issues found." {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	report := &validate.Report{Issues: []validate.Issue{
		{Severity: validate.SeverityWarn, Code: "dead_end", Message: "step has no outgoing link", Story: "s1", Node: "t"},
		{Severity: validate.SeverityError, Code: "missing_begin", Message: "story has no begin node", Story: "s1"},
	}}
	if err := printReport(&out, report); err == nil {
		t.Fatalf("expected error when report has errors")
	}
	want := "Errors (1):\n  - s1: story has no begin node (missing_begin)\n\nWarnings (1):\n  - s1/t: step has no outgoing link (dead_end)\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}
