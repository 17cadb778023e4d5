// Package mcp exposes story operations as MCP tools over stdio.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/endings"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/export"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// Store is the part of store.Store the tools read and write.
type Store interface {
	GetStory(ctx context.Context, id string) (*story.Document, error)
	ListStories(ctx context.Context, tag string) ([]store.StorySummary, error)
	SearchStories(ctx context.Context, query string) ([]store.SearchResult, error)
	GetEndingRecord(ctx context.Context, userID, storyID string) (*store.EndingRecord, error)
	SaveEndingRecord(ctx context.Context, rec *store.EndingRecord) error
	ListEndingRecords(ctx context.Context, userID string) ([]store.EndingRecord, error)
}

type Server struct {
	db         Store
	tracker    *endings.Tracker
	exportOpts export.Options
	logger     *zap.Logger
	mcp        *sdk.Server
}

func NewServer(db Store, version string, exportOpts export.Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	exportOpts.Logger = logger
	s := &Server{
		db:         db,
		tracker:    endings.NewTracker(db, endings.WithLogger(logger)),
		exportOpts: exportOpts,
		logger:     logger,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "storyweaver",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	s.logger.Info("mcp server starting")
	return s.mcp.Run(ctx, transport)
}
