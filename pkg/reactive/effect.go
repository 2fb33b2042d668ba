package reactive

// Effect is a reactive side effect that re-runs when its dependencies
// change. Effects run once at creation, tracking every signal or memo they
// read, and re-run synchronously whenever one of those changes. The Cleanup
// returned by a run is called before the next run and on disposal.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	sources []*signalBase
	owner   *Owner

	running  bool
	pending  bool
	disposed bool
	runs     int
}

// MarkDirty implements Listener. A dirty effect re-runs immediately, or
// right after its current run finishes when it is already running.
func (e *Effect) MarkDirty() {
	if e.disposed {
		return
	}
	if e.running {
		e.pending = true
		return
	}
	e.run()
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// Runs returns how many times the effect body has executed.
func (e *Effect) Runs() int {
	return e.runs
}

// Rerun forces the effect to run again even if no dependency changed.
func (e *Effect) Rerun() {
	e.MarkDirty()
}

// Disposed reports whether the effect has been stopped.
func (e *Effect) Disposed() bool {
	return e.disposed
}

func (e *Effect) addSource(source *signalBase) {
	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

// run executes the effect function, repeating while writes made during the
// run dirtied it again.
func (e *Effect) run() {
	e.running = true
	defer func() { e.running = false }()

	for {
		e.pending = false
		e.runOnce()
		if !e.pending || e.disposed {
			return
		}
	}
}

func (e *Effect) runOnce() {
	if e.cleanup != nil {
		c := e.cleanup
		e.cleanup = nil
		Untrack(c)
	}

	e.unsubscribeAll()

	e.runs++
	WithListener(e, func() {
		e.cleanup = e.fn()
	})
}

func (e *Effect) unsubscribeAll() {
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]
}

// Dispose stops the effect, runs its last cleanup and unsubscribes from all
// sources. It is idempotent.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true

	if e.cleanup != nil {
		c := e.cleanup
		e.cleanup = nil
		Untrack(c)
	}
	e.unsubscribeAll()
	e.sources = nil

	if e.owner != nil {
		e.owner.removeEffect(e)
	}
}

// CreateEffect creates and runs an unowned effect. The caller is
// responsible for calling Dispose.
func CreateEffect(fn func() Cleanup) *Effect {
	return newEffect(nil, fn)
}

func newEffect(owner *Owner, fn func() Cleanup) *Effect {
	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: owner,
	}
	if owner != nil {
		owner.registerEffect(e)
	}
	e.run()
	return e
}
