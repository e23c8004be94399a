// Package storage implements the scene persistence port on SQL databases
// (sqlite, postgres, mysql) and MongoDB.
package storage

import (
	"context"
	"fmt"

	"poster/internal/domain"
)

// Store is a SceneStore that also keeps revisions.
type Store interface {
	domain.SceneStore
	ListRevisions(ctx context.Context, sceneID string) ([]Revision, error)
	LoadRevision(ctx context.Context, sceneID, revisionID string) (*domain.SceneRecord, error)
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*MongoStore)(nil)
)

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	dsn, err := cfg.DataSource()
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case DriverMongo:
		return OpenMongo(ctx, dsn, cfg.Database, cfg.RevisionLimit)
	case DriverSQLite, DriverPostgres, DriverMySQL:
		db, err := OpenDB(ctx, cfg.Driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s (%s): %w", cfg.Driver, cfg.redact(dsn), err)
		}
		return NewSQLStore(db, cfg.RevisionLimit), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}
