// Package lifecycle provides the per-node event bus that weave uses to
// announce initialization, mounting, moving, updating, patching, unmounting
// and errors.
//
// Events for one node fire synchronously and in strict phase order
// (before, body, after) inside the call that triggers them. Wrapper
// components such as suspense or error boundaries subscribe here instead of
// re-implementing reconciliation.
package lifecycle

// Event names a lifecycle event.
type Event string

const (
	InitBefore Event = "init_before"
	Init       Event = "init"
	InitAfter  Event = "init_after"

	MountBefore Event = "mount_before"
	Mounted     Event = "mounted"
	MountAfter  Event = "mount_after"

	MoveBefore Event = "move_before"
	MoveAfter  Event = "move_after"

	UnmountBefore Event = "unmount_before"
	Unmounted     Event = "unmounted"
	UnmountAfter  Event = "unmount_after"

	UpdateBefore Event = "update_before"
	Updated      Event = "updated"
	UpdateAfter  Event = "update_after"

	PatchBefore Event = "patch_before"
	PatchAfter  Event = "patch_after"

	RenderBefore Event = "render_before"
	RenderAfter  Event = "render_after"

	// Error carries render errors. Throw carries non-error signals for
	// suspense-like consumers.
	Error Event = "error"
	Throw Event = "throw"
)

// Handler receives an event payload.
type Handler func(payload any)

type entry struct {
	fn      Handler
	once    bool
	removed bool
}

// Bus is a synchronous event emitter.
type Bus struct {
	handlers map[Event][]*entry
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Event][]*entry)}
}

// On registers fn for ev and returns a function that removes it.
func (b *Bus) On(ev Event, fn Handler) (off func()) {
	return b.add(ev, &entry{fn: fn})
}

// Once registers fn for the next emission of ev only.
func (b *Bus) Once(ev Event, fn Handler) (off func()) {
	return b.add(ev, &entry{fn: fn, once: true})
}

func (b *Bus) add(ev Event, e *entry) func() {
	b.handlers[ev] = append(b.handlers[ev], e)
	return func() { b.remove(ev, e) }
}

func (b *Bus) remove(ev Event, e *entry) {
	e.removed = true
	list := b.handlers[ev]
	for i, existing := range list {
		if existing == e {
			b.handlers[ev] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(b.handlers[ev]) == 0 {
		delete(b.handlers, ev)
	}
}

// Emit calls every handler registered for ev, in registration order.
// Handlers added during emission do not see the current event.
func (b *Bus) Emit(ev Event, payload any) {
	list := b.handlers[ev]
	if len(list) == 0 {
		return
	}
	snapshot := make([]*entry, len(list))
	copy(snapshot, list)
	for _, e := range snapshot {
		if e.removed {
			continue
		}
		if e.once {
			b.remove(ev, e)
		}
		e.fn(payload)
	}
}

// Count returns the number of handlers registered for ev.
func (b *Bus) Count(ev Event) int {
	return len(b.handlers[ev])
}

// Clear removes every handler.
func (b *Bus) Clear() {
	for _, list := range b.handlers {
		for _, e := range list {
			e.removed = true
		}
	}
	b.handlers = make(map[Event][]*entry)
}

// Escalate installs a handler on ev that calls forward only while it is the
// sole handler for ev. A local listener therefore consumes the event, and
// the event escalates when nothing local listens.
func (b *Bus) Escalate(ev Event, forward Handler) (off func()) {
	return b.On(ev, func(payload any) {
		if b.Count(ev) == 1 {
			forward(payload)
		}
	})
}
