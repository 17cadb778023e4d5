package choreography

import (
	"encoding/json"
	"fmt"
)

type Action string

const (
	ActionBegin  Action = "begin"
	ActionText   Action = "text"
	ActionChoice Action = "choice"
	ActionEnd    Action = "end"
)

// DefaultEnding names end steps whose node carries no ending id.
const DefaultEnding = "The End"

type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Trigger gates a step on a player interaction with a target, addressed by
// name. TargetID carries the catalog id of the target when compiled from a
// story graph; it is not part of the exported document.
type Trigger struct {
	Interaction string `json:"interaction"`
	Target      string `json:"target"`
	TargetID    string `json:"-"`
}

type Option struct {
	Label    string  `json:"label"`
	GoToStep *string `json:"goToStep"`
}

// Data is the union of every action's payload. Which fields are encoded
// depends on the step action.
type Data struct {
	Text    string
	Options []Option
	Ending  string
}

// Step is one compiled unit of a choreography. Choice steps branch only
// through Data.Options and never carry GoToStep.
type Step struct {
	ID       string
	Action   Action
	Location *string
	Actor    *Actor
	Trigger  *Trigger
	Data     Data
	GoToStep *string
}

type textData struct {
	Text string `json:"text"`
}

type choiceData struct {
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

type endData struct {
	Ending string `json:"ending"`
}

type beginJSON struct {
	ID       string  `json:"id"`
	Action   Action  `json:"action"`
	Location *string `json:"location"`
	GoToStep *string `json:"goToStep"`
}

type textJSON struct {
	ID       string   `json:"id"`
	Action   Action   `json:"action"`
	Actor    *Actor   `json:"actor"`
	Trigger  *Trigger `json:"trigger"`
	Data     textData `json:"data"`
	GoToStep *string  `json:"goToStep"`
}

type choiceJSON struct {
	ID      string     `json:"id"`
	Action  Action     `json:"action"`
	Actor   *Actor     `json:"actor"`
	Trigger *Trigger   `json:"trigger"`
	Data    choiceData `json:"data"`
}

type endJSON struct {
	ID     string  `json:"id"`
	Action Action  `json:"action"`
	Data   endData `json:"data"`
}

func (s Step) MarshalJSON() ([]byte, error) {
	switch s.Action {
	case ActionBegin:
		return json.Marshal(beginJSON{ID: s.ID, Action: s.Action, Location: s.Location, GoToStep: s.GoToStep})
	case ActionText:
		return json.Marshal(textJSON{
			ID:       s.ID,
			Action:   s.Action,
			Actor:    s.Actor,
			Trigger:  s.Trigger,
			Data:     textData{Text: s.Data.Text},
			GoToStep: s.GoToStep,
		})
	case ActionChoice:
		options := s.Data.Options
		if options == nil {
			options = []Option{}
		}
		return json.Marshal(choiceJSON{
			ID:      s.ID,
			Action:  s.Action,
			Actor:   s.Actor,
			Trigger: s.Trigger,
			Data:    choiceData{Text: s.Data.Text, Options: options},
		})
	case ActionEnd:
		return json.Marshal(endJSON{ID: s.ID, Action: s.Action, Data: endData{Ending: s.Data.Ending}})
	}
	return nil, fmt.Errorf("step %s: unknown action %q", s.ID, s.Action)
}

type stepJSON struct {
	ID       string   `json:"id"`
	Action   Action   `json:"action"`
	Location *string  `json:"location"`
	Actor    *Actor   `json:"actor"`
	Trigger  *Trigger `json:"trigger"`
	Data     struct {
		Text    string   `json:"text"`
		Options []Option `json:"options"`
		Ending  string   `json:"ending"`
	} `json:"data"`
	GoToStep *string `json:"goToStep"`
}

func (s *Step) UnmarshalJSON(b []byte) error {
	var raw stepJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.Action {
	case ActionBegin, ActionText, ActionChoice, ActionEnd:
	default:
		return fmt.Errorf("step %s: unknown action %q", raw.ID, raw.Action)
	}
	*s = Step{
		ID:       raw.ID,
		Action:   raw.Action,
		Location: raw.Location,
		Actor:    raw.Actor,
		Trigger:  raw.Trigger,
		Data: Data{
			Text:    raw.Data.Text,
			Options: raw.Data.Options,
			Ending:  raw.Data.Ending,
		},
		GoToStep: raw.GoToStep,
	}
	if s.Action == ActionChoice {
		s.GoToStep = nil
	}
	return nil
}

type Metadata struct {
	Author              string `json:"author"`
	Description         string `json:"description"`
	BaseManifestURL     string `json:"base_manifest_url"`
	PlatformManifestURL string `json:"platform_manifest_url"`
}

// Choreography is the exported, player-facing form of a story.
type Choreography struct {
	ExperienceName string   `json:"experienceName"`
	Metadata       Metadata `json:"metadata"`
	Story          []Step   `json:"story"`
}

// Parse decodes an exported choreography document.
func Parse(data []byte) (*Choreography, error) {
	var ch Choreography
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, fmt.Errorf("parsing choreography: %w", err)
	}
	return &ch, nil
}

// Step returns the step with the given id.
func (c *Choreography) Step(id string) (Step, bool) {
	for _, step := range c.Story {
		if step.ID == id {
			return step, true
		}
	}
	return Step{}, false
}

// Endings lists the distinct ending names of the choreography's end steps in
// story order.
func (c *Choreography) Endings() []string {
	var out []string
	seen := map[string]struct{}{}
	for _, step := range c.Story {
		if step.Action != ActionEnd {
			continue
		}
		if _, ok := seen[step.Data.Ending]; ok {
			continue
		}
		seen[step.Data.Ending] = struct{}{}
		out = append(out, step.Data.Ending)
	}
	return out
}
