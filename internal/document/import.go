package document

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// Store is the part of store.Store an import needs.
type Store interface {
	SaveStory(ctx context.Context, doc *story.Document, sourceHash string) error
	GetStoryHash(ctx context.Context, id string) (string, error)
}

type Options struct {
	// Full re-saves every story even when its file hash is unchanged.
	Full    bool
	Exclude []string
	Now     func() time.Time
	Logger  *zap.Logger
}

type Result struct {
	Imported []string
	Skipped  int
	Errors   []error
}

// Import saves every story file found under roots. Roots may be files or
// directories.
func Import(ctx context.Context, db Store, roots []string, opts Options) (*Result, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := walkStoryFiles(roots, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking story files: %w", err)
	}

	result := &Result{Imported: []string{}}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		hash := Hash(data)

		doc, err := parseFileData(path, data)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("parsing: %w", err))
			continue
		}

		if !opts.Full {
			existing, err := db.GetStoryHash(ctx, doc.ID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("getting hash for %s: %w", doc.ID, err))
				continue
			}
			if existing == hash {
				result.Skipped++
				logger.Debug("story unchanged", zap.String("id", doc.ID), zap.String("path", path))
				continue
			}
		}

		if doc.LastModified.IsZero() {
			doc.LastModified = opts.Now().UTC()
		}
		if err := db.SaveStory(ctx, doc, hash); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("saving %s: %w", path, err))
			continue
		}
		result.Imported = append(result.Imported, doc.ID)
		logger.Info("story imported", zap.String("id", doc.ID), zap.String("path", path))
	}

	return result, nil
}

func walkStoryFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if isExcluded(path, excluded) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if _, err := FormatOf(d.Name()); err != nil {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
