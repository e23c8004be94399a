package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"poster/internal/domain"
)

const DefaultRevisionLimit = 40

// Revision is one saved snapshot of a scene.
type Revision struct {
	ID         string    `json:"id" bson:"_id"`
	SceneID    string    `json:"sceneId" bson:"sceneId"`
	Seq        int64     `json:"seq" bson:"seq"`
	Label      string    `json:"label" bson:"label"`
	BlockCount int       `json:"blockCount" bson:"blockCount"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// RevisionStore keeps the last limit saves of every scene as JSON
// snapshots.
type RevisionStore struct {
	db    *DB
	limit int
}

func NewRevisionStore(db *DB, limit int) *RevisionStore {
	if limit <= 0 {
		limit = DefaultRevisionLimit
	}
	return &RevisionStore{db: db, limit: limit}
}

// push inserts a revision inside tx and prunes the oldest ones.
func (s *RevisionStore) push(ctx context.Context, tx *sql.Tx, sceneID, label string, blocks []domain.Block, now time.Time) error {
	snapshot, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	var seq int64
	if err := tx.QueryRowContext(ctx,
		s.db.q(`SELECT COALESCE(MAX(seq), 0) FROM scene_revisions WHERE scene_id = ?`), sceneID,
	).Scan(&seq); err != nil {
		return fmt.Errorf("next revision seq: %w", err)
	}
	seq++
	_, err = tx.ExecContext(ctx,
		s.db.q(`INSERT INTO scene_revisions (id, scene_id, seq, label, snapshot_json, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		uuid.NewString(), sceneID, seq, label, string(snapshot), now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	if cutoff := seq - int64(s.limit); cutoff > 0 {
		if _, err := tx.ExecContext(ctx,
			s.db.q(`DELETE FROM scene_revisions WHERE scene_id = ? AND seq <= ?`), sceneID, cutoff,
		); err != nil {
			return fmt.Errorf("prune revisions: %w", err)
		}
	}
	return nil
}

// List returns the revisions of a scene, newest first.
func (s *RevisionStore) List(ctx context.Context, sceneID string) ([]Revision, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		s.db.q(`SELECT id, scene_id, seq, label, snapshot_json, created_at
		 FROM scene_revisions WHERE scene_id = ? ORDER BY seq DESC`), sceneID,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var r Revision
		var snapshot string
		var created int64
		if err := rows.Scan(&r.ID, &r.SceneID, &r.Seq, &r.Label, &snapshot, &created); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		var blocks []domain.Block
		if err := json.Unmarshal([]byte(snapshot), &blocks); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		r.BlockCount = len(blocks)
		r.CreatedAt = time.Unix(0, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Load returns the blocks of one revision.
func (s *RevisionStore) Load(ctx context.Context, sceneID, revisionID string) ([]domain.Block, error) {
	var snapshot string
	err := s.db.Conn().QueryRowContext(ctx,
		s.db.q(`SELECT snapshot_json FROM scene_revisions WHERE scene_id = ? AND id = ?`), sceneID, revisionID,
	).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load revision %s: %w", revisionID, ErrSceneNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load revision %s: %w", revisionID, err)
	}
	var blocks []domain.Block
	if err := json.Unmarshal([]byte(snapshot), &blocks); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return blocks, nil
}
