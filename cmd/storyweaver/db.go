package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/config"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/export"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/graphdb"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/logging"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/manifest"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store/postgres"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store/sqlite"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

var errNoGraph = errors.New("neo4j is not configured (set neo4j.uri)")

// loadProject reads the project config and builds the logger it asks for.
func loadProject() (*config.ProjectConfig, *zap.Logger, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openStore picks the backend from the DSN scheme and ensures its schema.
func openStore(ctx context.Context, cfg *config.ProjectConfig, logger *zap.Logger) (store.Store, error) {
	var db store.Store
	dsn := cfg.Database.DSN
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		client, err := sqlite.New(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		db = client
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		client, err := postgres.New(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		db = client
	default:
		return nil, fmt.Errorf("unsupported database dsn %q", dsn)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close(ctx)
		return nil, err
	}
	return db, nil
}

func openGraph(ctx context.Context, cfg *config.ProjectConfig, logger *zap.Logger) (*graphdb.Client, error) {
	if cfg.Neo4j.URI == "" {
		return nil, errNoGraph
	}
	return graphdb.NewClient(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database, logger)
}

func exportOptions(cfg *config.ProjectConfig, logger *zap.Logger) (export.Options, error) {
	mapping, err := manifest.LoadMapping(cfg.Export.VRActorMapping, cfg.Export.VRLocationMapping)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{
		Author:              cfg.Export.Author,
		BaseManifestURL:     cfg.Export.BaseManifestURL,
		PlatformManifestURL: cfg.Export.PlatformManifestURL,
		VRMapping:           mapping,
		Logger:              logger,
	}, nil
}

func loadStory(ctx context.Context, db store.Store, id string) (*story.Document, error) {
	doc, err := db.GetStory(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("story %s not found", id)
	}
	return doc, nil
}
