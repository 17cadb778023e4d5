// Package document reads story documents from JSON or YAML files.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported story file format")
	ErrInvalidDocument   = errors.New("invalid story document")
)

// FormatOf picks the decoder from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// ParseFile reads and decodes a story file. A document without an id takes
// the file's base name.
func ParseFile(path string) (*story.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseFileData(path, data)
}

func parseFileData(path string, data []byte) (*story.Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.ID == "" {
		doc.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

func Parse(data []byte, format Format) (*story.Document, error) {
	var doc story.Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	for _, n := range doc.Nodes {
		if !n.Type.Valid() {
			return nil, fmt.Errorf("%w: node %s: %w", ErrInvalidDocument, n.ID, story.ErrInvalidNodeType)
		}
	}
	if doc.Nodes == nil {
		doc.Nodes = []story.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []story.Edge{}
	}
	return &doc, nil
}

// Hash is the sha256 of a file's raw bytes, hex encoded.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
