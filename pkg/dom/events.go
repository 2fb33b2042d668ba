package dom

// Event is delivered to listeners by Dispatch.
type Event struct {
	Type   string
	Target *Node
	Detail any

	// CurrentTarget is the node whose listener is running.
	CurrentTarget *Node

	stopped bool
}

// StopPropagation prevents the event from bubbling further.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Listener handles a dispatched event.
type Listener func(*Event)

type listener struct {
	fn Listener
}

// AddEventListener registers fn for events of the given type and returns a
// function that removes it.
func (n *Node) AddEventListener(typ string, fn Listener) (remove func()) {
	if n.listeners == nil {
		n.listeners = make(map[string][]*listener)
	}
	l := &listener{fn: fn}
	n.listeners[typ] = append(n.listeners[typ], l)
	return func() {
		list := n.listeners[typ]
		for i, existing := range list {
			if existing == l {
				n.listeners[typ] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(n.listeners[typ]) == 0 {
			delete(n.listeners, typ)
		}
	}
}

// ListenerCount returns the number of listeners registered for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// Dispatch delivers an event of the given type to n and bubbles it through
// the ancestors. It returns false if propagation was stopped.
func (n *Node) Dispatch(typ string, detail any) bool {
	ev := &Event{Type: typ, Target: n, Detail: detail}
	for cur := n; cur != nil; cur = cur.parent {
		list := cur.listeners[typ]
		if len(list) == 0 {
			continue
		}
		snapshot := make([]*listener, len(list))
		copy(snapshot, list)
		ev.CurrentTarget = cur
		for _, l := range snapshot {
			l.fn(ev)
		}
		if ev.stopped {
			return false
		}
	}
	return true
}
