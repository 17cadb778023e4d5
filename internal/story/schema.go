package story

import (
	"encoding/json"
	"fmt"
	"strings"
)

type NodeType string

const (
	NodeBegin       NodeType = "begin"
	NodeEnd         NodeType = "end"
	NodeText        NodeType = "text"
	NodeImage       NodeType = "image"
	NodeVideo       NodeType = "video"
	NodeAudio       NodeType = "audio"
	NodeThreeDModel NodeType = "threeDModel"
	NodeQuiz        NodeType = "quiz"
	NodeChoice      NodeType = "choice"
	NodeCharacter   NodeType = "character"
	NodePath        NodeType = "path"
)

// Dialog sub-graph node types.
const (
	DialogBegin  NodeType = "beginDialogNode"
	DialogLine   NodeType = "dialogNode"
	DialogChoice NodeType = "choiceNode"
	DialogEnd    NodeType = "endDialogNode"
)

// NodeTypes lists the top-level node types in editor palette order.
var NodeTypes = []NodeType{
	NodeBegin, NodeEnd, NodeText, NodeImage, NodeVideo, NodeAudio,
	NodeThreeDModel, NodeQuiz, NodeChoice, NodeCharacter, NodePath,
}

func ParseNodeType(value string) (NodeType, error) {
	for _, t := range NodeTypes {
		if string(t) == value {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidNodeType, value)
}

func (t NodeType) Valid() bool {
	_, err := ParseNodeType(string(t))
	return err == nil
}

type FieldKind string

const (
	KindText      FieldKind = "text"
	KindTextArea  FieldKind = "textarea"
	KindNumber    FieldKind = "number"
	KindAnswers   FieldKind = "answers"
	KindCharacter FieldKind = "character"
	KindLocation  FieldKind = "location"
	KindTrigger   FieldKind = "trigger"
	KindFile      FieldKind = "file"
	KindDialog    FieldKind = "dialog"
	KindCheckbox  FieldKind = "checkbox"
)

// FieldSpec describes one inspector field of a node type. Name is the JSON
// key inside NodeData.
type FieldSpec struct {
	Name        string
	Label       string
	Kind        FieldKind
	Default     any
	VisibleWhen func(NodeData) bool
}

func (f FieldSpec) Visible(data NodeData) bool {
	return f.VisibleWhen == nil || f.VisibleWhen(data)
}

func hasCharacter(data NodeData) bool { return data.Character != nil }

var (
	fieldName     = FieldSpec{Name: "name", Label: "Text", Kind: KindTextArea, Default: ""}
	fieldTitle    = FieldSpec{Name: "name", Label: "Name", Kind: KindText, Default: ""}
	fieldChar     = FieldSpec{Name: "character", Label: "Character", Kind: KindCharacter, Default: nil}
	fieldTrigger  = FieldSpec{Name: "entry_trigger", Label: "Entry trigger", Kind: KindTrigger, Default: nil}
	fieldFile     = FieldSpec{Name: "file", Label: "File", Kind: KindFile, Default: ""}
	fieldLocation = FieldSpec{Name: "location", Label: "Location", Kind: KindLocation, Default: nil}
)

var schemas = map[NodeType][]FieldSpec{
	NodeBegin: {fieldLocation},
	NodeEnd: {
		fieldTitle,
		{Name: "id", Label: "Ending", Kind: KindText, Default: ""},
	},
	NodeText:        {fieldName, fieldChar, fieldTrigger},
	NodeImage:       {fieldName, fieldFile, fieldChar, fieldTrigger},
	NodeVideo:       {fieldName, fieldFile, fieldChar, fieldTrigger},
	NodeAudio:       {fieldName, fieldFile, fieldChar, fieldTrigger},
	NodeThreeDModel: {fieldTitle, fieldFile, fieldTrigger},
	NodeQuiz: {
		fieldTitle,
		{Name: "question", Label: "Question", Kind: KindTextArea, Default: ""},
		{Name: "answers", Label: "Answers", Kind: KindAnswers, Default: []string{}},
		fieldChar,
		fieldTrigger,
	},
	NodeCharacter: {
		fieldTitle,
		fieldChar,
		{Name: "dialog", Label: "Dialog", Kind: KindDialog, Default: nil, VisibleWhen: hasCharacter},
		{Name: "entry_trigger", Label: "Entry trigger", Kind: KindTrigger, Default: nil, VisibleWhen: hasCharacter},
	},
	NodePath: {
		fieldTitle,
		{Name: "path", Label: "Path", Kind: KindText, Default: ""},
		fieldLocation,
		fieldTrigger,
	},
}

func init() {
	schemas[NodeChoice] = schemas[NodeQuiz]
}

// Schema returns the ordered field descriptors for a node type.
func Schema(t NodeType) []FieldSpec {
	return schemas[t]
}

// DefaultData builds the data of a freshly created node of type t.
func DefaultData(t NodeType) (NodeData, error) {
	fields, ok := schemas[t]
	if !ok {
		return NodeData{}, fmt.Errorf("%w: %q", ErrInvalidNodeType, t)
	}
	defaults := make(map[string]any, len(fields))
	for _, field := range fields {
		defaults[field.Name] = field.Default
	}
	data, err := ApplyPatch(NodeData{}, t, defaults)
	if err != nil {
		return NodeData{}, err
	}
	if t == NodeCharacter {
		data.Dialog = NewDialog()
	}
	return data, nil
}

// NewDialog returns a dialog sub-graph holding only its begin node.
func NewDialog() *Dialog {
	return &Dialog{
		Nodes: []Node{{ID: "dialog-begin", Type: DialogBegin}},
		Edges: []Edge{},
	}
}

// ApplyPatch merges patch into data. Keys must be declared by the schema of
// t; a nil value clears the field.
func ApplyPatch(data NodeData, t NodeType, patch map[string]any) (NodeData, error) {
	fields, ok := schemas[t]
	if !ok {
		return NodeData{}, fmt.Errorf("%w: %q", ErrInvalidNodeType, t)
	}
	declared := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		declared[field.Name] = struct{}{}
	}

	var unknown []string
	for key := range patch {
		if _, ok := declared[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return NodeData{}, fmt.Errorf("%w for %s: %s", ErrUnknownField, t, strings.Join(unknown, ", "))
	}

	current, err := json.Marshal(data)
	if err != nil {
		return NodeData{}, fmt.Errorf("encoding node data: %w", err)
	}
	merged := make(map[string]any)
	if err := json.Unmarshal(current, &merged); err != nil {
		return NodeData{}, fmt.Errorf("decoding node data: %w", err)
	}
	for key, value := range patch {
		if value == nil {
			delete(merged, key)
			continue
		}
		merged[key] = value
	}

	payload, err := json.Marshal(merged)
	if err != nil {
		return NodeData{}, fmt.Errorf("encoding patch: %w", err)
	}
	var out NodeData
	if err := json.Unmarshal(payload, &out); err != nil {
		return NodeData{}, fmt.Errorf("%w: %v", ErrInvalidFieldValue, err)
	}
	return out, nil
}
