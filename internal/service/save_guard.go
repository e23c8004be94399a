package service

import "context"

// ExportedSaveGuard lets _test packages build a guard.
func ExportedSaveGuard() *saveGuard { return newSaveGuard() }

// saveGuard admits one autosave at a time. The slot is a one-element
// semaphore: holding the token means a save is running.
type saveGuard struct {
	slot chan struct{}
}

func newSaveGuard() *saveGuard {
	return &saveGuard{slot: make(chan struct{}, 1)}
}

// TryStart claims the slot without blocking.
func (g *saveGuard) TryStart() bool {
	select {
	case g.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// Done releases the slot claimed by a successful TryStart.
func (g *saveGuard) Done() { <-g.slot }

// Wait blocks until no save is running or ctx is done. It reports
// whether the slot was seen free.
func (g *saveGuard) Wait(ctx context.Context) bool {
	select {
	case g.slot <- struct{}{}:
		<-g.slot
		return true
	case <-ctx.Done():
		return false
	}
}
