package reactive

// Listener is anything that can be notified when a dependency changes.
// It is implemented by memos and effects.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// Readable is a type-erased reactive value. Reading it inside an effect
// subscribes the effect.
type Readable interface {
	ReadAny() any
}

// Writable is a type-erased reactive value that accepts writes.
// WriteAny reports false when the value has the wrong type.
type Writable interface {
	Readable
	WriteAny(v any) bool
}

// Read resolves v: Readable values and func() any getters are read (with
// tracking), anything else is returned as is.
func Read(v any) any {
	switch r := v.(type) {
	case Readable:
		return r.ReadAny()
	case func() any:
		return r()
	default:
		return v
	}
}

// IsReactive reports whether Read would resolve v through a reactive read.
func IsReactive(v any) bool {
	switch v.(type) {
	case Readable, func() any:
		return true
	default:
		return false
	}
}
