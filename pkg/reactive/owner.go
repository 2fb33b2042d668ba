package reactive

// Owner represents a scope that owns effects and cleanup functions.
// Disposing an Owner disposes everything it owns, including child owners.
// Owners form a hierarchy that mirrors the node tree.
type Owner struct {
	id uint64

	parent   *Owner
	children []*Owner

	effects  []*Effect
	cleanups []func()

	disposed bool
}

// NewOwner creates a new Owner registered as a child of parent.
// A nil parent creates a root Owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}
	if parent != nil {
		parent.children = append(parent.children, o)
	}
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil for a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether the Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed
}

// Effect creates and runs an effect owned by o. On a disposed owner the
// effect is created already stopped and never runs.
func (o *Owner) Effect(fn func() Cleanup) *Effect {
	if o.disposed {
		return &Effect{id: nextID(), fn: fn, disposed: true}
	}
	return newEffect(o, fn)
}

// EffectCount returns the number of live effects owned directly by o.
func (o *Owner) EffectCount() int {
	return len(o.effects)
}

// OnCleanup registers fn to run when o is disposed. On a disposed owner fn
// runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) registerEffect(e *Effect) {
	o.effects = append(o.effects, e)
}

func (o *Owner) removeEffect(e *Effect) {
	for i, existing := range o.effects {
		if existing == e {
			o.effects = append(o.effects[:i], o.effects[i+1:]...)
			return
		}
	}
}

func (o *Owner) removeChild(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// Dispose disposes child owners first, then owned effects, then runs
// cleanups in reverse registration order. It is idempotent.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	effects := o.effects
	o.effects = nil
	for _, e := range effects {
		e.owner = nil
		e.Dispose()
	}

	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}
}
