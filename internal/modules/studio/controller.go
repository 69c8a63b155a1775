package studio

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type View string

const (
	ViewDashboard View = "dashboard"
	ViewStudio    View = "studio-active"
)

// Ticker is the subset of *time.Ticker the engagement timer needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

func NewSystemTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

// CredentialAwarder persists the credit for a finished course. It is called
// from the controller loop, once per completing Advance.
type CredentialAwarder interface {
	AwardCredit(ctx context.Context, s Session) error
}

type AwarderFunc func(ctx context.Context, s Session) error

func (f AwarderFunc) AwardCredit(ctx context.Context, s Session) error { return f(ctx, s) }

// Transform is an act-scoped edit such as UpdateDesign or SubmitQuiz.
type Transform func(Session) (Session, error)

type Snapshot struct {
	View    View     `json:"view"`
	Session *Session `json:"session,omitempty"`
	Version uint64   `json:"version"`
}

// Outcome reports a navigation request. Accepted=false is a silent no-op.
type Outcome struct {
	Snapshot  Snapshot
	Accepted  bool
	Completed bool
}

type Option func(*Controller)

func WithTicker(f TickerFactory) Option { return func(c *Controller) { c.newTicker = f } }

func WithInterval(d time.Duration) Option { return func(c *Controller) { c.interval = d } }

func WithAwarder(a CredentialAwarder) Option { return func(c *Controller) { c.awarder = a } }

func WithObserver(fn func(Snapshot)) Option { return func(c *Controller) { c.observe = fn } }

func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// Controller owns one learner's view and session. All reads and writes,
// including engagement ticks, are applied by a single goroutine in arrival
// order, so no update is lost and the timer can never run twice.
type Controller struct {
	cmds chan func()
	quit chan struct{}
	done chan struct{}
	once sync.Once

	newTicker TickerFactory
	interval  time.Duration
	awarder   CredentialAwarder
	observe   func(Snapshot)
	now       func() time.Time

	// owned by run
	view    View
	session *Session
	ticker  Ticker
	version uint64
}

func NewController(opts ...Option) *Controller {
	c := &Controller{
		cmds:      make(chan func()),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		newTicker: NewSystemTicker,
		interval:  time.Second,
		now:       time.Now,
		view:      ViewDashboard,
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.run()
	return c
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		var tick <-chan time.Time
		if c.ticker != nil {
			tick = c.ticker.C()
		}
		select {
		case <-c.quit:
			c.stopTimer()
			return
		case fn := <-c.cmds:
			fn()
		case <-tick:
			if c.view == ViewStudio && c.session != nil {
				next := Tick(*c.session)
				c.session = &next
				c.publish()
			}
		}
	}
}

// Close stops the loop and its timer. Calls after Close return ErrClosed.
func (c *Controller) Close() {
	c.once.Do(func() { close(c.quit) })
	<-c.done
}

func (c *Controller) exec(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	select {
	case c.cmds <- func() { errc <- fn() }:
	case <-c.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start discards any previous session and enters the studio at act 1.
func (c *Controller) Start(ctx context.Context, id Identity) (Snapshot, error) {
	var snap Snapshot
	err := c.exec(ctx, func() error {
		s := NewSession(id, c.now())
		c.session = &s
		c.view = ViewStudio
		c.startTimer()
		c.publish()
		snap = c.snapshot()
		return nil
	})
	return snap, err
}

// Exit returns to the dashboard. The session is kept for Resume.
func (c *Controller) Exit(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := c.exec(ctx, func() error {
		c.view = ViewDashboard
		c.stopTimer()
		c.publish()
		snap = c.snapshot()
		return nil
	})
	return snap, err
}

func (c *Controller) Resume(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := c.exec(ctx, func() error {
		if c.session == nil {
			return ErrNoSession
		}
		if c.view != ViewStudio {
			c.view = ViewStudio
			c.startTimer()
			c.publish()
		}
		snap = c.snapshot()
		return nil
	})
	return snap, err
}

// Clear drops the session and returns to the dashboard.
func (c *Controller) Clear(ctx context.Context) error {
	return c.exec(ctx, func() error {
		c.clearSession()
		c.publish()
		return nil
	})
}

func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := c.exec(ctx, func() error {
		snap = c.snapshot()
		return nil
	})
	return snap, err
}

// Advance applies the continue button. When it completes the course the
// awarder runs first; on award failure the session is left as it was.
func (c *Controller) Advance(ctx context.Context) (Outcome, error) {
	var out Outcome
	err := c.exec(ctx, func() error {
		if err := c.requireActive(); err != nil {
			return err
		}
		res := Advance(*c.session)
		if !res.Accepted {
			out.Snapshot = c.snapshot()
			return nil
		}
		if res.Completed {
			if c.awarder != nil {
				if err := c.awarder.AwardCredit(ctx, res.Session); err != nil {
					return fmt.Errorf("award credit: %w", err)
				}
			}
			c.clearSession()
		} else {
			c.session = &res.Session
		}
		c.publish()
		out = Outcome{Snapshot: c.snapshot(), Accepted: true, Completed: res.Completed}
		return nil
	})
	return out, err
}

func (c *Controller) Retreat(ctx context.Context) (Snapshot, error) {
	return c.Apply(ctx, func(s Session) (Session, error) { return Retreat(s), nil })
}

func (c *Controller) JumpTo(ctx context.Context, act int) (Outcome, error) {
	var out Outcome
	err := c.exec(ctx, func() error {
		if err := c.requireActive(); err != nil {
			return err
		}
		next, ok := JumpTo(*c.session, act)
		if ok {
			c.session = &next
			c.publish()
		}
		out = Outcome{Snapshot: c.snapshot(), Accepted: ok}
		return nil
	})
	return out, err
}

// Apply runs t against the live session. A rejected transform leaves the
// session untouched and returns t's error.
func (c *Controller) Apply(ctx context.Context, t Transform) (Snapshot, error) {
	var snap Snapshot
	err := c.exec(ctx, func() error {
		if err := c.requireActive(); err != nil {
			return err
		}
		next, err := t(*c.session)
		if err != nil {
			return err
		}
		c.session = &next
		c.publish()
		snap = c.snapshot()
		return nil
	})
	return snap, err
}

func (c *Controller) requireActive() error {
	if c.view != ViewStudio || c.session == nil {
		return ErrNoSession
	}
	return nil
}

func (c *Controller) startTimer() {
	c.stopTimer()
	c.ticker = c.newTicker(c.interval)
}

func (c *Controller) stopTimer() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *Controller) clearSession() {
	c.stopTimer()
	c.session = nil
	c.view = ViewDashboard
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{View: c.view, Version: c.version}
	if c.session != nil {
		s := c.session.Clone()
		snap.Session = &s
	}
	return snap
}

func (c *Controller) publish() {
	c.version++
	if c.observe != nil {
		c.observe(c.snapshot())
	}
}
