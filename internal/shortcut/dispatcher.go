// Package shortcut routes keyboard chords to editing commands. It holds
// no state of its own beyond the binding table and performs no I/O; save,
// preview and export are delegated to host hooks.
package shortcut

import (
	"context"
	"sort"
	"strconv"

	"poster/internal/domain"
)

// Editor is the part of editor.Session the dispatcher drives.
type Editor interface {
	Selected() (string, bool)
	ClearSelection()
	Delete(id string) bool
	Duplicate(id string) (domain.Block, bool)
	Nudge(id string, dx, dy float64) bool
	ApplyPreset(id, name string) bool
	Undo() bool
	Redo() bool
}

// Hooks are host callbacks for commands outside the canvas. Nil hooks
// are ignored.
type Hooks struct {
	Save    func(ctx context.Context) error
	Preview func(ctx context.Context) error
	Export  func(ctx context.Context) error
}

// Action runs one command. It reports whether anything happened.
type Action func(ctx context.Context) (bool, error)

type Dispatcher struct {
	editor   Editor
	hooks    Hooks
	step     float64
	fine     float64
	bindings map[Key]Action
}

type Option func(*Dispatcher)

// WithNudge sets the arrow step and the Shift (fine) step.
func WithNudge(step, fine float64) Option {
	return func(d *Dispatcher) {
		if step > 0 {
			d.step = step
		}
		if fine > 0 {
			d.fine = fine
		}
	}
}

// New returns a dispatcher with the default bindings installed.
func New(ed Editor, hooks Hooks, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		editor:   ed,
		hooks:    hooks,
		step:     10,
		fine:     1,
		bindings: make(map[Key]Action),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.installDefaults()
	return d
}

func (d *Dispatcher) installDefaults() {
	del := d.onSelected(func(id string) bool { return d.editor.Delete(id) })
	d.Bind(MustParseKey("Delete"), del)
	d.Bind(MustParseKey("Backspace"), del)
	d.Bind(MustParseKey("Ctrl+D"), d.onSelected(func(id string) bool {
		_, ok := d.editor.Duplicate(id)
		return ok
	}))

	arrows := []struct {
		code   string
		dx, dy float64
	}{
		{"ArrowLeft", -1, 0},
		{"ArrowRight", 1, 0},
		{"ArrowUp", 0, -1},
		{"ArrowDown", 0, 1},
	}
	for _, a := range arrows {
		d.Bind(Key{Code: a.code}, d.nudge(a.dx*d.step, a.dy*d.step))
		d.Bind(Key{Code: a.code, Shift: true}, d.nudge(a.dx*d.fine, a.dy*d.fine))
	}

	for n := 1; n <= 9; n++ {
		name := strconv.Itoa(n)
		d.Bind(Key{Code: name}, d.onSelected(func(id string) bool { return d.editor.ApplyPreset(id, name) }))
	}

	undo := func(context.Context) (bool, error) { return d.editor.Undo(), nil }
	redo := func(context.Context) (bool, error) { return d.editor.Redo(), nil }
	d.Bind(MustParseKey("Ctrl+Z"), undo)
	d.Bind(MustParseKey("Ctrl+Shift+Z"), redo)
	d.Bind(MustParseKey("Ctrl+Y"), redo)
	d.Bind(MustParseKey("Escape"), func(context.Context) (bool, error) {
		_, had := d.editor.Selected()
		d.editor.ClearSelection()
		return had, nil
	})

	d.Bind(MustParseKey("Ctrl+S"), hook(func() func(context.Context) error { return d.hooks.Save }))
	d.Bind(MustParseKey("Ctrl+P"), hook(func() func(context.Context) error { return d.hooks.Preview }))
	d.Bind(MustParseKey("Ctrl+E"), hook(func() func(context.Context) error { return d.hooks.Export }))
}

// Bind installs or replaces the action for k. A nil action removes it.
func (d *Dispatcher) Bind(k Key, a Action) {
	if a == nil {
		delete(d.bindings, k)
		return
	}
	d.bindings[k] = a
}

// SetHooks replaces the host callbacks.
func (d *Dispatcher) SetHooks(h Hooks) { d.hooks = h }

// Dispatch runs the action bound to k. Unbound chords report false.
func (d *Dispatcher) Dispatch(ctx context.Context, k Key) (bool, error) {
	a, ok := d.bindings[k]
	if !ok {
		return false, nil
	}
	return a(ctx)
}

// Press parses s and dispatches it.
func (d *Dispatcher) Press(ctx context.Context, s string) (bool, error) {
	k, err := ParseKey(s)
	if err != nil {
		return false, err
	}
	return d.Dispatch(ctx, k)
}

// Bindings lists bound chords in canonical form, sorted.
func (d *Dispatcher) Bindings() []string {
	out := make([]string, 0, len(d.bindings))
	for k := range d.bindings {
		out = append(out, k.String())
	}
	sort.Strings(out)
	return out
}

func (d *Dispatcher) onSelected(fn func(id string) bool) Action {
	return func(context.Context) (bool, error) {
		id, ok := d.editor.Selected()
		if !ok {
			return false, nil
		}
		return fn(id), nil
	}
}

func (d *Dispatcher) nudge(dx, dy float64) Action {
	return d.onSelected(func(id string) bool { return d.editor.Nudge(id, dx, dy) })
}

// hook resolves the callback at dispatch time so SetHooks takes effect
// for the default bindings.
func hook(get func() func(context.Context) error) Action {
	return func(ctx context.Context) (bool, error) {
		fn := get()
		if fn == nil {
			return false, nil
		}
		if err := fn(ctx); err != nil {
			return true, err
		}
		return true, nil
	}
}
