package storage_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poster/internal/domain"
	"poster/internal/storage"
)

func openSQLite(t *testing.T, revisions int) storage.Store {
	t.Helper()
	cfg := storage.Config{
		Driver:        storage.DriverSQLite,
		DSN:           filepath.Join(t.TempDir(), "nested", "poster.db"),
		RevisionLimit: revisions,
	}
	st, err := storage.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleBlocks() []domain.Block {
	return []domain.Block{
		{ID: "box", Type: domain.BlockTypeContainer, Position: domain.Point{X: 0, Y: 0}, Size: domain.Size{Width: 600, Height: 400}, ZIndex: 1, Visible: true},
		{ID: "price", Type: domain.BlockTypePrice, Position: domain.Point{X: 20.5, Y: 40}, Size: domain.Size{Width: 120, Height: 60}, ZIndex: 3, ParentID: "box", Content: `{"amount":"9.99"}`, Visible: true},
		{ID: "ghost", Type: "sticker", Position: domain.Point{X: -10, Y: 700}, Size: domain.Size{Width: 50, Height: 30}, ZIndex: 2, Locked: true},
	}
}

func TestSQLStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openSQLite(t, 0)

	rec := &domain.SceneRecord{
		SceneMeta: domain.SceneMeta{Name: "Summer sale", Metadata: map[string]string{"format": "A2"}},
		Blocks:    sampleBlocks(),
	}
	id, err := st.SaveScene(ctx, rec)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := st.LoadScene(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Summer sale", got.Name)
	assert.Equal(t, map[string]string{"format": "A2"}, got.Metadata)
	assert.Equal(t, sampleBlocks(), got.Blocks, "every field and the order survive")
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLStore_ResaveReplacesBlocks(t *testing.T) {
	ctx := context.Background()
	st := openSQLite(t, 0)

	rec := &domain.SceneRecord{SceneMeta: domain.SceneMeta{Name: "v1"}, Blocks: sampleBlocks()}
	id, err := st.SaveScene(ctx, rec)
	require.NoError(t, err)
	created := rec.CreatedAt

	rec.Name = "v2"
	rec.Blocks = rec.Blocks[:1]
	_, err = st.SaveScene(ctx, rec)
	require.NoError(t, err)

	got, err := st.LoadScene(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Name)
	assert.Len(t, got.Blocks, 1)
	assert.True(t, got.CreatedAt.Equal(created), "created_at kept on update")

	list, err := st.ListScenes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}

func TestSQLStore_EmptyScene(t *testing.T) {
	ctx := context.Background()
	st := openSQLite(t, 0)

	id, err := st.SaveScene(ctx, &domain.SceneRecord{SceneMeta: domain.SceneMeta{ID: "blank", Name: "blank"}})
	require.NoError(t, err)
	assert.Equal(t, "blank", id)

	got, err := st.LoadScene(ctx, "blank")
	require.NoError(t, err)
	assert.Empty(t, got.Blocks)
	assert.Nil(t, got.Metadata)
}

func TestSQLStore_NotFound(t *testing.T) {
	ctx := context.Background()
	st := openSQLite(t, 0)

	_, err := st.LoadScene(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrSceneNotFound)
	assert.ErrorIs(t, st.DeleteScene(ctx, "missing"), storage.ErrSceneNotFound)
	_, err = st.LoadRevision(ctx, "missing", "nope")
	assert.ErrorIs(t, err, storage.ErrSceneNotFound)
}

func TestSQLStore_Delete(t *testing.T) {
	ctx := context.Background()
	st := openSQLite(t, 0)

	id, err := st.SaveScene(ctx, &domain.SceneRecord{SceneMeta: domain.SceneMeta{Name: "tmp"}, Blocks: sampleBlocks()})
	require.NoError(t, err)
	require.NoError(t, st.DeleteScene(ctx, id))

	_, err = st.LoadScene(ctx, id)
	assert.ErrorIs(t, err, storage.ErrSceneNotFound)
	revs, err := st.ListRevisions(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, revs)
}

func TestSQLStore_RevisionsArePruned(t *testing.T) {
	ctx := context.Background()
	st := openSQLite(t, 3)

	rec := &domain.SceneRecord{SceneMeta: domain.SceneMeta{ID: "poster"}}
	for i := 1; i <= 5; i++ {
		rec.Name = fmt.Sprintf("save %d", i)
		rec.Blocks = sampleBlocks()[:i%3+1]
		_, err := st.SaveScene(ctx, rec)
		require.NoError(t, err)
	}

	revs, err := st.ListRevisions(ctx, "poster")
	require.NoError(t, err)
	require.Len(t, revs, 3)
	assert.Equal(t, "save 5", revs[0].Label, "newest first")
	assert.Equal(t, "save 3", revs[2].Label)
	assert.Equal(t, int64(5), revs[0].Seq)

	old, err := st.LoadRevision(ctx, "poster", revs[2].ID)
	require.NoError(t, err)
	assert.Equal(t, sampleBlocks()[:1], old.Blocks, "save 3 held one block")
	assert.Equal(t, revs[2].BlockCount, len(old.Blocks))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Config{Driver: "oracle"})
	assert.Error(t, err)
}
