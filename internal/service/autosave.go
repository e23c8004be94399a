package service

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

const autosaveJob = "autosave"

// ─────────────────────────────────────────────────────────────
// Autosaver: periodic saves of a dirty workspace
// ─────────────────────────────────────────────────────────────

// Autosaver saves a Workspace on a cron schedule. Runs are skipped when
// nothing changed since the last save, and a run never overlaps the
// previous one.
type Autosaver struct {
	ws       *Workspace
	schedule string
	logger   *log.Logger
	cron     *cron.Cron
	guard    *saveGuard
}

// NewAutosaver validates schedule ("@every 30s", "*/5 * * * *", ...).
// An empty schedule yields an autosaver whose Start does nothing.
func NewAutosaver(ws *Workspace, schedule string, logger *log.Logger) (*Autosaver, error) {
	if logger == nil {
		logger = log.Default()
	}
	a := &Autosaver{ws: ws, schedule: schedule, logger: logger.WithPrefix(autosaveJob), guard: newSaveGuard()}
	if schedule == "" {
		return a, nil
	}
	a.cron = cron.New()
	if _, err := a.cron.AddFunc(schedule, func() { a.run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("autosave: invalid schedule %q: %w", schedule, err)
	}
	return a, nil
}

func (a *Autosaver) Enabled() bool { return a.cron != nil }

// RunOnce saves the workspace if it is dirty. It reports whether a save
// happened; a run that finds another still in progress does nothing.
func (a *Autosaver) RunOnce(ctx context.Context) (bool, error) {
	if !a.guard.TryStart() {
		a.logger.Debug("previous run still in progress")
		return false, nil
	}
	defer a.guard.Done()

	if !a.ws.Dirty() {
		return false, nil
	}
	if _, err := a.ws.Save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Autosaver) run(ctx context.Context) {
	if _, err := a.RunOnce(ctx); err != nil {
		a.logger.Error("save failed", "err", err)
	}
}

func (a *Autosaver) Start() {
	if a.cron == nil {
		return
	}
	a.cron.Start()
	a.logger.Info("scheduled", "spec", a.schedule)
}

// Stop halts the schedule and waits for a running save, or for ctx.
func (a *Autosaver) Stop(ctx context.Context) {
	if a.cron != nil {
		stopped := a.cron.Stop()
		select {
		case <-stopped.Done():
		case <-ctx.Done():
		}
	}
	a.guard.Wait(ctx)
}
