// Package export turns a story document into the files shipped to players:
// the choreography plus the base, VR and AR manifests.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/choreography"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/manifest"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// Output file names inside an export directory.
const (
	ChoreographyFile = "choreography.json"
	BaseManifestFile = "base_manifest.json"
	VRManifestFile   = "vr_manifest.json"
	ARManifestFile   = "ar_manifest.json"
)

type Options struct {
	Author              string
	BaseManifestURL     string
	PlatformManifestURL string
	VRMapping           manifest.Mapping
	Logger              *zap.Logger
}

type Bundle struct {
	// Document is the exported story with storyEndings filled in.
	Document     *story.Document
	Choreography *choreography.Choreography
	// Skipped holds ids of nodes the compiler has no step for.
	Skipped []string
	Base    *manifest.BaseManifest
	VR      *manifest.VRManifest
	AR      *manifest.ARManifest
}

// Build compiles the choreography and the three manifests concurrently from
// one snapshot of doc. doc itself is not modified.
func Build(ctx context.Context, doc *story.Document, opts Options) (*Bundle, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	snapshot := doc.Clone()
	cat := manifest.CatalogFromDocument(snapshot)
	bundle := &Bundle{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		in := choreography.InputFromDocument(snapshot)
		in.Metadata = choreography.Metadata{
			Author:              opts.Author,
			BaseManifestURL:     opts.BaseManifestURL,
			PlatformManifestURL: opts.PlatformManifestURL,
		}
		bundle.Choreography, bundle.Skipped = choreography.Compile(in)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		bundle.Base = manifest.BuildBase(cat)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		bundle.VR = manifest.BuildVR(cat, opts.VRMapping)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		bundle.AR = manifest.BuildAR(cat, snapshot.Maps)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building export for %s: %w", doc.ID, err)
	}

	out := doc.Clone()
	out.StoryEndings = bundle.Choreography.Endings()
	out.Exported = true
	bundle.Document = out

	if len(bundle.Skipped) > 0 {
		logger.Warn("nodes without a choreography step were skipped",
			zap.String("story", doc.ID), zap.Strings("nodes", bundle.Skipped))
	}
	logger.Info("story exported",
		zap.String("story", doc.ID),
		zap.Int("steps", len(bundle.Choreography.Story)),
		zap.Strings("endings", out.StoryEndings))
	return bundle, nil
}

// WriteDir writes the choreography and manifests as indented JSON files.
func (b *Bundle) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	files := []struct {
		name  string
		value any
	}{
		{ChoreographyFile, b.Choreography},
		{BaseManifestFile, b.Base},
		{VRManifestFile, b.VR},
		{ARManifestFile, b.AR},
	}
	for _, f := range files {
		data, err := json.MarshalIndent(f.value, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}
	return nil
}
