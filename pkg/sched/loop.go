package sched

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// DefaultFrameBudget is the idle time a frame grants when no budget is
// configured.
const DefaultFrameBudget = 8 * time.Millisecond

// maxDrainFrames bounds Drain so a task that keeps re-submitting itself
// cannot spin forever.
const maxDrainFrames = 10000

// Deadline is handed to idle callbacks.
type Deadline struct {
	end time.Time
	now func() time.Time
}

// TimeRemaining returns how much of the frame budget is left.
func (d Deadline) TimeRemaining() time.Duration {
	r := d.end.Sub(d.now())
	if r < 0 {
		return 0
	}
	return r
}

// TaskObserver receives scheduler activity. pkg/metrics implements it.
type TaskObserver interface {
	TaskSubmitted(name string)
	TaskCancelled(name string)
	TaskRun(name string, d time.Duration)
}

type idleRequest struct {
	fn        func(Deadline)
	cancelled bool
}

// Loop is a cooperative single-threaded event loop.
type Loop struct {
	inboxMu sync.Mutex
	inbox   []func()
	wake    chan struct{}

	microtasks []func()
	idle       []*idleRequest

	budget   time.Duration
	now      func() time.Time
	logger   *slog.Logger
	observer TaskObserver

	frames uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithFrameBudget sets the idle budget per frame.
func WithFrameBudget(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.budget = d
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// WithLogger sets the logger used for recovered panics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithObserver reports task activity of every scheduler on the loop.
func WithObserver(o TaskObserver) Option {
	return func(l *Loop) {
		l.observer = o
	}
}

// NewLoop creates a Loop.
func NewLoop(opts ...Option) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		budget: DefaultFrameBudget,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Budget returns the per-frame idle budget.
func (l *Loop) Budget() time.Duration {
	return l.budget
}

// Frames returns how many frames have run.
func (l *Loop) Frames() uint64 {
	return l.frames
}

// Post queues fn to run on the loop goroutine. It is safe to call from any
// goroutine.
func (l *Loop) Post(fn func()) {
	l.inboxMu.Lock()
	l.inbox = append(l.inbox, fn)
	l.inboxMu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Microtask queues fn to run after the current unit of work.
func (l *Loop) Microtask(fn func()) {
	l.microtasks = append(l.microtasks, fn)
}

// RequestIdle queues fn for the next frame's idle period.
func (l *Loop) RequestIdle(fn func(Deadline)) (cancel func()) {
	req := &idleRequest{fn: fn}
	l.idle = append(l.idle, req)
	return func() { req.cancelled = true }
}

// Pending reports whether any posted work, microtask or idle callback is
// waiting.
func (l *Loop) Pending() bool {
	l.inboxMu.Lock()
	posted := len(l.inbox) > 0
	l.inboxMu.Unlock()
	if posted || len(l.microtasks) > 0 {
		return true
	}
	for _, r := range l.idle {
		if !r.cancelled {
			return true
		}
	}
	return false
}

// RunMicrotasks runs posted work and microtasks until both queues are empty.
func (l *Loop) RunMicrotasks() {
	for {
		l.inboxMu.Lock()
		posted := l.inbox
		l.inbox = nil
		l.inboxMu.Unlock()

		for _, fn := range posted {
			l.safely(fn)
		}

		if len(l.microtasks) == 0 {
			l.inboxMu.Lock()
			empty := len(l.inbox) == 0
			l.inboxMu.Unlock()
			if empty {
				return
			}
			continue
		}

		fn := l.microtasks[0]
		l.microtasks = l.microtasks[1:]
		l.safely(fn)
	}
}

// Frame runs one frame: microtasks, then the idle callbacks that were queued
// before the frame started, while budget remains. The first idle callback
// always runs so every frame makes progress. Frame reports whether work is
// left for a later frame.
func (l *Loop) Frame() bool {
	l.frames++
	l.RunMicrotasks()

	deadline := Deadline{end: l.now().Add(l.budget), now: l.now}
	batch := l.idle
	l.idle = nil

	for i, req := range batch {
		if i > 0 && deadline.TimeRemaining() <= 0 {
			l.idle = append(batch[i:], l.idle...)
			break
		}
		if req.cancelled {
			continue
		}
		l.safely(func() { req.fn(deadline) })
		l.RunMicrotasks()
	}

	return l.Pending()
}

// Drain runs frames until no work is left and returns the number of frames.
func (l *Loop) Drain() int {
	n := 0
	for l.Pending() && n < maxDrainFrames {
		l.Frame()
		n++
	}
	return n
}

// Run drives the loop on the calling goroutine until ctx is done: a frame
// per interval tick, and microtasks as soon as work is posted.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Frame()
		case <-l.wake:
			l.RunMicrotasks()
		}
	}
}

func (l *Loop) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
