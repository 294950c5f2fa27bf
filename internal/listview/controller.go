// Package listview provides a list view controller with a single extra
// action button whose visibility is resolved against the backend before the
// first render.
package listview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/xe-erp/peppol-web/internal/odoo"
)

var (
	// ErrNotReady is returned when Click is called outside the Ready state.
	ErrNotReady = errors.New("listview: controller not ready")
	// ErrUnavailable is returned when the button is hidden or disabled.
	ErrUnavailable = errors.New("listview: action unavailable")
	// ErrBusy is returned while a previous click is still in flight.
	ErrBusy = errors.New("listview: action in flight")
	// ErrAlreadyStarted is returned when Start or Resolve runs twice.
	ErrAlreadyStarted = errors.New("listview: already started")
)

// State is the lifecycle position of a controller instance.
type State int32

const (
	// StateLoading is the initial state until Start settles.
	StateLoading State = iota
	// StateReady means button flags are resolved and the view can render.
	StateReady
	// StateReloading is terminal: the action succeeded and the view is being replaced.
	StateReloading
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateReloading:
		return "reloading"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Invoker issues a remote call and returns its raw result.
type Invoker interface {
	Invoke(ctx context.Context, call odoo.Call) (json.RawMessage, error)
}

// Predicate answers a yes/no lookup against the backend.
type Predicate func(ctx context.Context) (bool, error)

// RowLoader fetches the records rendered by the list.
type RowLoader[R any] func(ctx context.Context) ([]R, error)

// Reloader replaces the current view after a successful action.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloaderFunc adapts a function to the Reloader interface.
type ReloaderFunc func(ctx context.Context) error

// Reload implements Reloader.
func (f ReloaderFunc) Reload(ctx context.Context) error {
	return f(ctx)
}

// Button describes the extra action rendered next to the list.
// A nil predicate leaves its flag off, like a failed lookup.
type Button struct {
	Key         string
	Label       string
	Call        odoo.Call
	VisibleWhen Predicate
	EnabledWhen Predicate
}

// Visibility is the resolved button state.
type Visibility struct {
	Visible bool
	Enabled bool
}

// Clickable reports whether the button may trigger its call.
func (v Visibility) Clickable() bool {
	return v.Visible && v.Enabled
}

// Config groups the dependencies of a Controller.
type Config[R any] struct {
	Name    string
	Title   string
	Rows    RowLoader[R]
	Button  Button
	Invoker Invoker
	Logger  *slog.Logger
}

// Controller drives one view instance: Loading -> Ready -> Reloading.
type Controller[R any] struct {
	cfg Config[R]

	mu         sync.Mutex
	state      State
	started    bool
	busy       bool
	visibility Visibility
	rows       []R
}

// New constructs a controller in the Loading state.
func New[R any](cfg Config[R]) *Controller[R] {
	return &Controller[R]{cfg: cfg, state: StateLoading}
}

// Name returns the registry key of the view.
func (c *Controller[R]) Name() string { return c.cfg.Name }

// Title returns the view title.
func (c *Controller[R]) Title() string { return c.cfg.Title }

// Button returns the button description.
func (c *Controller[R]) Button() Button { return c.cfg.Button }

// Start loads the rows and resolves both button flags concurrently. All
// lookups settle before the controller becomes Ready.
func (c *Controller[R]) Start(ctx context.Context) error {
	return c.start(ctx, true)
}

// Resolve settles the button flags without loading rows. It is used when
// the view instance only exists to serve a click.
func (c *Controller[R]) Resolve(ctx context.Context) error {
	return c.start(ctx, false)
}

func (c *Controller[R]) start(ctx context.Context, withRows bool) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	var (
		rows    []R
		visible bool
		enabled bool
	)
	g, gctx := errgroup.WithContext(ctx)
	if withRows && c.cfg.Rows != nil {
		g.Go(func() error {
			loaded, err := c.cfg.Rows(gctx)
			if err != nil {
				return fmt.Errorf("listview: %s: load rows: %w", c.cfg.Name, err)
			}
			rows = loaded
			return nil
		})
	}
	g.Go(func() error {
		visible = c.lookup(gctx, "visible", c.cfg.Button.VisibleWhen)
		return nil
	})
	g.Go(func() error {
		enabled = c.lookup(gctx, "enabled", c.cfg.Button.EnabledWhen)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = rows
	c.visibility = Visibility{Visible: visible, Enabled: enabled}
	c.state = StateReady
	return nil
}

// lookup never fails the view: an unanswered predicate leaves its flag off.
func (c *Controller[R]) lookup(ctx context.Context, flag string, p Predicate) bool {
	if p == nil {
		return false
	}
	ok, err := p(ctx)
	if err != nil {
		if c.cfg.Logger != nil {
			c.cfg.Logger.Warn("listview flag lookup failed",
				slog.String("view", c.cfg.Name),
				slog.String("flag", flag),
				slog.Any("error", err))
		}
		return false
	}
	return ok
}

// Click triggers the button call once. The reloader runs exactly once after
// a successful call and never after a failed one. Failures are not retried.
func (c *Controller[R]) Click(ctx context.Context, reloader Reloader) error {
	c.mu.Lock()
	switch {
	case c.state != StateReady:
		c.mu.Unlock()
		return ErrNotReady
	case c.busy:
		c.mu.Unlock()
		return ErrBusy
	case !c.visibility.Clickable():
		c.mu.Unlock()
		return ErrUnavailable
	}
	c.busy = true
	c.mu.Unlock()

	if c.cfg.Invoker == nil {
		c.release()
		return odoo.ErrNotConfigured
	}
	if _, err := c.cfg.Invoker.Invoke(ctx, c.cfg.Button.Call); err != nil {
		c.release()
		return fmt.Errorf("listview: %s: %s: %w", c.cfg.Name, c.cfg.Button.Call, err)
	}

	c.mu.Lock()
	c.busy = false
	c.state = StateReloading
	c.mu.Unlock()

	if reloader == nil {
		return nil
	}
	return reloader.Reload(ctx)
}

func (c *Controller[R]) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// State returns the current lifecycle state.
func (c *Controller[R]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Visibility returns the resolved button flags. Before Ready both are false.
func (c *Controller[R]) Visibility() Visibility {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibility
}

// Rows returns the loaded records.
func (c *Controller[R]) Rows() []R {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]R, len(c.rows))
	copy(out, c.rows)
	return out
}
