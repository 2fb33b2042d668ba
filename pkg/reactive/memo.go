package reactive

import "sync"

// Memo is a cached computation that tracks its dependencies. When any
// dependency changes the memo is invalidated, its own subscribers are
// notified, and the value is recomputed lazily on the next read.
//
// A Memo is read-only: it implements Readable but not Writable.
type Memo[T any] struct {
	base signalBase

	compute func() T

	value   T
	valid   bool
	valueMu sync.Mutex

	sources []*signalBase

	computing bool
}

// NewMemo creates a memo. The computation runs on first Get.
func NewMemo[T any](compute func() T) *Memo[T] {
	return &Memo[T]{
		base:    signalBase{id: nextID()},
		compute: compute,
	}
}

// Get returns the memo's value, recomputing if necessary, and subscribes
// the current listener.
func (m *Memo[T]) Get() T {
	m.base.track()
	return m.Peek()
}

// Peek returns the value without subscribing.
func (m *Memo[T]) Peek() T {
	m.valueMu.Lock()
	valid := m.valid
	m.valueMu.Unlock()
	if !valid {
		m.recompute()
	}
	m.valueMu.Lock()
	defer m.valueMu.Unlock()
	return m.value
}

// ReadAny implements Readable.
func (m *Memo[T]) ReadAny() any {
	return m.Get()
}

// MarkDirty implements Listener.
func (m *Memo[T]) MarkDirty() {
	m.valueMu.Lock()
	wasValid := m.valid
	m.valid = false
	m.valueMu.Unlock()
	if wasValid {
		m.base.notifySubscribers()
	}
}

// ID implements Listener.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

func (m *Memo[T]) addSource(source *signalBase) {
	for _, s := range m.sources {
		if s == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}

func (m *Memo[T]) recompute() {
	if m.computing {
		panic("reactive: circular dependency in memo")
	}
	m.computing = true
	defer func() { m.computing = false }()

	for _, s := range m.sources {
		s.unsubscribe(m)
	}
	m.sources = m.sources[:0]

	var value T
	WithListener(m, func() {
		value = m.compute()
	})

	m.valueMu.Lock()
	m.value = value
	m.valid = true
	m.valueMu.Unlock()
}
