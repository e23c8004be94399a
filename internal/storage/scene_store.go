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

// ErrSceneNotFound is returned when a scene or revision id is unknown.
var ErrSceneNotFound = errors.New("scene not found")

// SQLStore persists scenes in scenes/scene_blocks and keeps a bounded
// revision trail per scene.
type SQLStore struct {
	db        *DB
	revisions *RevisionStore
	now       func() time.Time
}

func NewSQLStore(db *DB, revisionLimit int) *SQLStore {
	return &SQLStore{db: db, revisions: NewRevisionStore(db, revisionLimit), now: time.Now}
}

// SaveScene upserts the scene row, replaces its blocks and records a
// revision, all in one transaction.
func (s *SQLStore) SaveScene(ctx context.Context, rec *domain.SceneRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	now := s.now()

	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var created int64
	err = tx.QueryRowContext(ctx, s.db.q(`SELECT created_at FROM scenes WHERE id = ?`), rec.ID).Scan(&created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = now.UnixNano()
		_, err = tx.ExecContext(ctx,
			s.db.q(`INSERT INTO scenes (id, name, metadata_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
			rec.ID, rec.Name, string(meta), created, now.UnixNano(),
		)
		if err != nil {
			return "", fmt.Errorf("insert scene: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("lookup scene: %w", err)
	default:
		_, err = tx.ExecContext(ctx,
			s.db.q(`UPDATE scenes SET name = ?, metadata_json = ?, updated_at = ? WHERE id = ?`),
			rec.Name, string(meta), now.UnixNano(), rec.ID,
		)
		if err != nil {
			return "", fmt.Errorf("update scene: %w", err)
		}
	}

	if err := replaceBlocks(ctx, tx, s.db, rec.ID, rec.Blocks); err != nil {
		return "", err
	}
	if err := s.revisions.push(ctx, tx, rec.ID, rec.Name, rec.Blocks, now); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	rec.CreatedAt = time.Unix(0, created)
	rec.UpdatedAt = now
	return rec.ID, nil
}

// replaceBlocks deletes every block of the scene and re-inserts blocks in
// order.
func replaceBlocks(ctx context.Context, tx *sql.Tx, db *DB, sceneID string, blocks []domain.Block) error {
	if _, err := tx.ExecContext(ctx, db.q(`DELETE FROM scene_blocks WHERE scene_id = ?`), sceneID); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	insert := db.q(`INSERT INTO scene_blocks
		(scene_id, id, seq, type, x, y, width, height, z_index, parent_id, content, locked, visible)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, b := range blocks {
		_, err := tx.ExecContext(ctx, insert,
			sceneID, b.ID, i, string(b.Type),
			b.Position.X, b.Position.Y, b.Size.Width, b.Size.Height,
			b.ZIndex, b.ParentID, b.Content, b.Locked, b.Visible,
		)
		if err != nil {
			return fmt.Errorf("insert block %s: %w", b.ID, err)
		}
	}
	return nil
}

func (s *SQLStore) LoadScene(ctx context.Context, id string) (*domain.SceneRecord, error) {
	rec := &domain.SceneRecord{}
	var meta string
	var created, updated int64
	err := s.db.Conn().QueryRowContext(ctx,
		s.db.q(`SELECT id, name, metadata_json, created_at, updated_at FROM scenes WHERE id = ?`), id,
	).Scan(&rec.ID, &rec.Name, &meta, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load scene %s: %w", id, ErrSceneNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(meta), &rec.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	rec.CreatedAt = time.Unix(0, created)
	rec.UpdatedAt = time.Unix(0, updated)

	rows, err := s.db.Conn().QueryContext(ctx,
		s.db.q(`SELECT id, type, x, y, width, height, z_index, parent_id, content, locked, visible
		 FROM scene_blocks WHERE scene_id = ? ORDER BY seq ASC`), id,
	)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	defer rows.Close()

	rec.Blocks = []domain.Block{}
	for rows.Next() {
		var b domain.Block
		var typ string
		if err := rows.Scan(&b.ID, &typ, &b.Position.X, &b.Position.Y, &b.Size.Width, &b.Size.Height,
			&b.ZIndex, &b.ParentID, &b.Content, &b.Locked, &b.Visible); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		b.Type = domain.BlockType(typ)
		rec.Blocks = append(rec.Blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListScenes returns scene metadata, most recently updated first.
func (s *SQLStore) ListScenes(ctx context.Context) ([]domain.SceneMeta, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, name, metadata_json, created_at, updated_at FROM scenes ORDER BY updated_at DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var out []domain.SceneMeta
	for rows.Next() {
		var m domain.SceneMeta
		var meta string
		var created, updated int64
		if err := rows.Scan(&m.ID, &m.Name, &meta, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		m.CreatedAt = time.Unix(0, created)
		m.UpdatedAt = time.Unix(0, updated)
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteScene removes a scene, its blocks and its revisions.
func (s *SQLStore) DeleteScene(ctx context.Context, id string) error {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.db.q(`DELETE FROM scenes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete scene %s: %w", id, ErrSceneNotFound)
	}
	if _, err := tx.ExecContext(ctx, s.db.q(`DELETE FROM scene_blocks WHERE scene_id = ?`), id); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.db.q(`DELETE FROM scene_revisions WHERE scene_id = ?`), id); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	return tx.Commit()
}

func (s *SQLStore) ListRevisions(ctx context.Context, sceneID string) ([]Revision, error) {
	return s.revisions.List(ctx, sceneID)
}

func (s *SQLStore) LoadRevision(ctx context.Context, sceneID, revisionID string) (*domain.SceneRecord, error) {
	blocks, err := s.revisions.Load(ctx, sceneID, revisionID)
	if err != nil {
		return nil, err
	}
	rec, err := s.LoadScene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	rec.Blocks = blocks
	return rec, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
