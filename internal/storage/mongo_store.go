package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"poster/internal/domain"
)

const (
	scenesCollection    = "scenes"
	revisionsCollection = "scene_revisions"
)

// MongoStore keeps one document per scene, blocks embedded, plus a
// revisions collection pruned like the SQL store.
type MongoStore struct {
	client    *mongo.Client
	scenes    *mongo.Collection
	revisions *mongo.Collection
	limit     int
	now       func() time.Time
}

type mongoRevision struct {
	Revision `bson:",inline"`
	Blocks   []domain.Block `bson:"blocks"`
}

// OpenMongo connects to uri and uses database dbName ("poster" if empty).
func OpenMongo(ctx context.Context, uri, dbName string, revisionLimit int) (*MongoStore, error) {
	if dbName == "" {
		dbName = "poster"
	}
	if revisionLimit <= 0 {
		revisionLimit = DefaultRevisionLimit
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(dbName)
	return &MongoStore{
		client:    client,
		scenes:    db.Collection(scenesCollection),
		revisions: db.Collection(revisionsCollection),
		limit:     revisionLimit,
		now:       time.Now,
	}, nil
}

func (s *MongoStore) SaveScene(ctx context.Context, rec *domain.SceneRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := s.now().UTC()

	var existing domain.SceneMeta
	err := s.scenes.FindOne(ctx, bson.M{"_id": rec.ID}, options.FindOne().SetProjection(bson.M{"createdAt": 1})).Decode(&existing)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		rec.CreatedAt = now
	case err != nil:
		return "", fmt.Errorf("lookup scene: %w", err)
	default:
		rec.CreatedAt = existing.CreatedAt
	}
	rec.UpdatedAt = now
	if rec.Blocks == nil {
		rec.Blocks = []domain.Block{}
	}

	if _, err := s.scenes.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true)); err != nil {
		return "", fmt.Errorf("replace scene: %w", err)
	}
	if err := s.pushRevision(ctx, rec, now); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *MongoStore) pushRevision(ctx context.Context, rec *domain.SceneRecord, now time.Time) error {
	var last Revision
	err := s.revisions.FindOne(ctx, bson.M{"sceneId": rec.ID},
		options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}}),
	).Decode(&last)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("next revision seq: %w", err)
	}
	rev := mongoRevision{
		Revision: Revision{
			ID:         uuid.NewString(),
			SceneID:    rec.ID,
			Seq:        last.Seq + 1,
			Label:      rec.Name,
			BlockCount: len(rec.Blocks),
			CreatedAt:  now,
		},
		Blocks: rec.Blocks,
	}
	if _, err := s.revisions.InsertOne(ctx, rev); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	if cutoff := rev.Seq - int64(s.limit); cutoff > 0 {
		if _, err := s.revisions.DeleteMany(ctx, bson.M{"sceneId": rec.ID, "seq": bson.M{"$lte": cutoff}}); err != nil {
			return fmt.Errorf("prune revisions: %w", err)
		}
	}
	return nil
}

func (s *MongoStore) LoadScene(ctx context.Context, id string) (*domain.SceneRecord, error) {
	var rec domain.SceneRecord
	err := s.scenes.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("load scene %s: %w", id, ErrSceneNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", id, err)
	}
	return &rec, nil
}

func (s *MongoStore) ListScenes(ctx context.Context) ([]domain.SceneMeta, error) {
	opts := options.Find().
		SetProjection(bson.M{"blocks": 0}).
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.scenes.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	var out []domain.SceneMeta
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode scenes: %w", err)
	}
	return out, nil
}

func (s *MongoStore) DeleteScene(ctx context.Context, id string) error {
	res, err := s.scenes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete scene %s: %w", id, ErrSceneNotFound)
	}
	if _, err := s.revisions.DeleteMany(ctx, bson.M{"sceneId": id}); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	return nil
}

func (s *MongoStore) ListRevisions(ctx context.Context, sceneID string) ([]Revision, error) {
	opts := options.Find().
		SetProjection(bson.M{"blocks": 0}).
		SetSort(bson.D{{Key: "seq", Value: -1}})
	cur, err := s.revisions.Find(ctx, bson.M{"sceneId": sceneID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	var out []Revision
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode revisions: %w", err)
	}
	return out, nil
}

func (s *MongoStore) LoadRevision(ctx context.Context, sceneID, revisionID string) (*domain.SceneRecord, error) {
	var rev mongoRevision
	err := s.revisions.FindOne(ctx, bson.M{"_id": revisionID, "sceneId": sceneID}).Decode(&rev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("load revision %s: %w", revisionID, ErrSceneNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load revision %s: %w", revisionID, err)
	}
	rec, err := s.LoadScene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	rec.Blocks = rev.Blocks
	return rec, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
