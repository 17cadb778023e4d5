// Package graphdb mirrors story graphs into Neo4j so authors can explore
// them with ad-hoc Cypher.
package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

type Client struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

func NewClient(ctx context.Context, uri, username, password, database string, logger *zap.Logger) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verifying neo4j connectivity: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{driver: driver, database: database, logger: logger}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	return c.driver.Close(ctx)
}

func (c *Client) session(ctx context.Context) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
}

func (c *Client) EnsureIndexes(ctx context.Context) error {
	session := c.session(ctx)
	defer session.Close(ctx)

	statements := []string{
		`CREATE CONSTRAINT story_unique_id IF NOT EXISTS
FOR (s:Story) REQUIRE s.id IS UNIQUE`,
		`CREATE CONSTRAINT step_unique_story_id IF NOT EXISTS
FOR (s:Step) REQUIRE (s.story_id, s.id) IS UNIQUE`,
		`CREATE INDEX step_type IF NOT EXISTS FOR (s:Step) ON (s.type)`,
	}

	for _, stmt := range statements {
		if _, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, stmt, nil)
			return nil, err
		}); err != nil {
			return fmt.Errorf("ensuring indexes: %w", err)
		}
	}

	return nil
}
