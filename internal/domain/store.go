package domain

import (
	"context"
	"time"
)

// SceneMeta describes a saved scene without its blocks.
type SceneMeta struct {
	ID        string            `json:"id" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// SceneRecord is a scene as handed to the persistence service: a
// self-contained array of blocks plus metadata.
type SceneRecord struct {
	SceneMeta `bson:",inline"`
	Blocks    []Block `json:"blocks" bson:"blocks"`
}

// SceneStore is the persistence port. The editing core never calls it;
// hosts do, on explicit save/load commands.
type SceneStore interface {
	// SaveScene stores rec and returns its identifier. An empty rec.ID
	// creates a new scene.
	SaveScene(ctx context.Context, rec *SceneRecord) (string, error)
	LoadScene(ctx context.Context, id string) (*SceneRecord, error)
	ListScenes(ctx context.Context) ([]SceneMeta, error)
	DeleteScene(ctx context.Context, id string) error
	Close() error
}
