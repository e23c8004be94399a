package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"poster/internal/canvas"
	"poster/internal/domain"
	"poster/internal/editor"
	"poster/internal/scenefile"
	"poster/internal/shortcut"
	"poster/internal/storage"
)

var (
	ErrNoStore = errors.New("no scene store configured")
	ErrNoFile  = errors.New("no scene file configured")
	ErrBusy    = errors.New("a gesture is in progress")
)

// ─────────────────────────────────────────────────────────────
// Workspace: one editing session plus its persistence targets
// ─────────────────────────────────────────────────────────────

// WorkspaceConfig wires a Workspace. Store and FilePath are both
// optional; Save writes to whichever are set.
type WorkspaceConfig struct {
	Options  editor.Options
	Catalog  editor.TypeCatalog
	Emitter  EventEmitter
	Store    storage.Store
	FilePath string
	Name     string
	Logger   *log.Logger
}

// Workspace serializes access to an editor.Session. MCP tools, the
// autosaver and the file watcher all run on their own goroutines, so
// every one of them goes through Do.
type Workspace struct {
	mu       sync.Mutex
	session  *editor.Session
	keys     *shortcut.Dispatcher
	store    storage.Store
	filePath string
	logger   *log.Logger

	sceneID      string
	name         string
	metadata     map[string]string
	savedVersion uint64
	// written holds the bytes last written to filePath, so the watcher
	// can tell our own saves from external edits.
	written []byte
}

func NewWorkspace(cfg WorkspaceConfig, initial ...domain.Block) *Workspace {
	var emitter editor.Emitter
	if cfg.Emitter != nil {
		emitter = cfg.Emitter
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	name := cfg.Name
	if name == "" {
		name = "Untitled poster"
	}
	s := editor.New(cfg.Options, cfg.Catalog, emitter, initial...)
	w := &Workspace{
		session:      s,
		store:        cfg.Store,
		filePath:     cfg.FilePath,
		logger:       logger.WithPrefix("workspace"),
		name:         name,
		savedVersion: s.Version(),
	}
	opts := s.Options()
	w.keys = shortcut.New(s, shortcut.Hooks{
		Save: func(ctx context.Context) error {
			_, err := w.saveLocked(ctx)
			return err
		},
		Preview: w.previewLocked,
		Export:  w.exportLocked,
	}, shortcut.WithNudge(opts.NudgeStep, opts.FineNudgeStep))
	return w
}

// Do runs fn with exclusive access to the session.
func (w *Workspace) Do(fn func(s *editor.Session) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.session)
}

// Press dispatches a keyboard chord such as "Ctrl+Z" or "Shift+ArrowLeft".
func (w *Workspace) Press(ctx context.Context, key string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.keys.Press(ctx, key)
}

func (w *Workspace) Bindings() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.keys.Bindings()
}

// Dirty reports whether the scene changed since it was last saved or loaded.
func (w *Workspace) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirtyLocked()
}

func (w *Workspace) dirtyLocked() bool {
	return w.session.Version() != w.savedVersion
}

// Meta returns the current scene identity. ID is empty until the scene
// has been saved to or loaded from a store.
func (w *Workspace) Meta() domain.SceneMeta {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.SceneMeta{ID: w.sceneID, Name: w.name, Metadata: maps.Clone(w.metadata)}
}

func (w *Workspace) Rename(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.name = name
}

func (w *Workspace) FilePath() string { return w.filePath }

// Document snapshots the scene in its file form.
func (w *Workspace) Document() *scenefile.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.documentLocked()
}

func (w *Workspace) documentLocked() *scenefile.Document {
	return &scenefile.Document{
		ID:       w.sceneID,
		Name:     w.name,
		Metadata: maps.Clone(w.metadata),
		Blocks:   w.session.Blocks(),
	}
}

// ── Saving ─────────────────────────────────────────────────

// SaveResult says where a save went.
type SaveResult struct {
	SceneID string `json:"sceneId,omitempty"`
	File    string `json:"file,omitempty"`
	Blocks  int    `json:"blocks"`
}

// Save writes the scene to the store and the scene file, whichever are
// configured.
func (w *Workspace) Save(ctx context.Context) (SaveResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saveLocked(ctx)
}

func (w *Workspace) saveLocked(ctx context.Context) (SaveResult, error) {
	if w.store == nil && w.filePath == "" {
		return SaveResult{}, ErrNoStore
	}
	version := w.session.Version()
	res := SaveResult{Blocks: len(w.session.Blocks())}
	if w.store != nil {
		rec := &domain.SceneRecord{
			SceneMeta: domain.SceneMeta{ID: w.sceneID, Name: w.name, Metadata: maps.Clone(w.metadata)},
			Blocks:    w.session.Blocks(),
		}
		id, err := w.store.SaveScene(ctx, rec)
		if err != nil {
			return res, fmt.Errorf("save scene: %w", err)
		}
		w.sceneID = id
		res.SceneID = id
	}
	if w.filePath != "" {
		if err := w.writeFileLocked(); err != nil {
			return res, err
		}
		res.File = w.filePath
	}
	w.savedVersion = version
	w.logger.Info("saved", "scene", res.SceneID, "file", res.File, "blocks", res.Blocks)
	return res, nil
}

func (w *Workspace) exportLocked(context.Context) error {
	if w.filePath == "" {
		return ErrNoFile
	}
	if err := w.writeFileLocked(); err != nil {
		return err
	}
	w.logger.Info("exported", "file", w.filePath)
	return nil
}

func (w *Workspace) writeFileLocked() error {
	data, err := scenefile.Marshal(w.filePath, w.documentLocked())
	if err != nil {
		return err
	}
	if err := scenefile.WriteData(w.filePath, data); err != nil {
		return err
	}
	w.written = data
	return nil
}

// ownWriteLocked reports whether the scene file still holds exactly what
// the workspace last wrote.
func (w *Workspace) ownWriteLocked() bool {
	if w.written == nil {
		return false
	}
	data, err := os.ReadFile(w.filePath)
	return err == nil && bytes.Equal(data, w.written)
}

func (w *Workspace) previewLocked(context.Context) error {
	overlaps := canvas.Overlaps(w.session.Scene())
	w.logger.Info("preview", "blocks", len(w.session.Blocks()), "overlaps", len(overlaps), "dirty", w.dirtyLocked())
	return nil
}

// ── Loading ────────────────────────────────────────────────

// Load replaces the scene with the stored scene id, as one history entry.
func (w *Workspace) Load(ctx context.Context, id string) error {
	if w.store == nil {
		return ErrNoStore
	}
	rec, err := w.store.LoadScene(ctx, id)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.applyLocked(rec, "load")
}

// LoadRevision restores an older saved revision of the current scene.
// The scene counts as unsaved afterwards.
func (w *Workspace) LoadRevision(ctx context.Context, revisionID string) error {
	if w.store == nil {
		return ErrNoStore
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sceneID == "" {
		return storage.ErrSceneNotFound
	}
	rec, err := w.store.LoadRevision(ctx, w.sceneID, revisionID)
	if err != nil {
		return err
	}
	if err := domain.ValidateBlocks(rec.Blocks, w.session.Options().Constraints); err != nil {
		return fmt.Errorf("invalid revision %s: %w", revisionID, err)
	}
	if !w.session.Load(rec.Blocks, "restore revision") {
		return ErrBusy
	}
	return nil
}

func (w *Workspace) applyLocked(rec *domain.SceneRecord, description string) error {
	if err := domain.ValidateBlocks(rec.Blocks, w.session.Options().Constraints); err != nil {
		return fmt.Errorf("invalid scene %s: %w", rec.ID, err)
	}
	if !w.session.Load(rec.Blocks, description) {
		return ErrBusy
	}
	w.sceneID = rec.ID
	w.name = rec.Name
	w.metadata = maps.Clone(rec.Metadata)
	w.savedVersion = w.session.Version()
	return nil
}

// Reload replaces the scene with doc, typically read back from the scene
// file after an external edit. An unchanged document records nothing.
func (w *Workspace) Reload(doc *scenefile.Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloadLocked(doc)
}

func (w *Workspace) reloadLocked(doc *scenefile.Document) error {
	if err := domain.ValidateBlocks(doc.Blocks, w.session.Options().Constraints); err != nil {
		return fmt.Errorf("invalid scene file: %w", err)
	}
	before := w.session.Version()
	if !w.session.Load(doc.Blocks, "reload") {
		return ErrBusy
	}
	if doc.Name != "" {
		w.name = doc.Name
	}
	if doc.Metadata != nil {
		w.metadata = maps.Clone(doc.Metadata)
	}
	// The file now matches the session; only a store still lags behind.
	if w.store == nil && w.savedVersion == before {
		w.savedVersion = w.session.Version()
	}
	return nil
}

// WatchFile reloads the scene whenever the scene file changes on disk.
func (w *Workspace) WatchFile() (*scenefile.Watcher, error) {
	if w.filePath == "" {
		return nil, ErrNoFile
	}
	logger := w.logger.WithPrefix("scenefile")
	return scenefile.Watch(w.filePath, scenefile.DefaultDebounce, func(doc *scenefile.Document, err error) {
		if err != nil {
			logger.Warn("reload failed", "file", w.filePath, "err", err)
			return
		}
		reloaded, err := w.reloadExternal(doc)
		if err != nil {
			logger.Warn("reload rejected", "file", w.filePath, "err", err)
			return
		}
		if !reloaded {
			logger.Debug("skipped own write", "file", w.filePath)
			return
		}
		logger.Debug("reloaded", "file", w.filePath, "blocks", len(doc.Blocks))
	})
}

// reloadExternal applies doc unless the file on disk is the workspace's
// own last write.
func (w *Workspace) reloadExternal(doc *scenefile.Document) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ownWriteLocked() {
		return false, nil
	}
	return true, w.reloadLocked(doc)
}

func (w *Workspace) ListScenes(ctx context.Context) ([]domain.SceneMeta, error) {
	if w.store == nil {
		return nil, ErrNoStore
	}
	return w.store.ListScenes(ctx)
}

// ListRevisions lists revisions of the current scene, newest first.
func (w *Workspace) ListRevisions(ctx context.Context) ([]storage.Revision, error) {
	if w.store == nil {
		return nil, ErrNoStore
	}
	id := w.Meta().ID
	if id == "" {
		return nil, nil
	}
	return w.store.ListRevisions(ctx, id)
}
