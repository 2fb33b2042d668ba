package reactive

import (
	"sync"

	"github.com/petermattis/goid"
)

// TrackingContext holds the reactive state for a goroutine.
type TrackingContext struct {
	// currentListener is what's currently tracking dependencies.
	// nil means no tracking.
	currentListener Listener

	// batchDepth tracks nested Batch() calls.
	batchDepth int

	// pendingUpdates accumulates listeners to notify when a batch completes.
	pendingUpdates []Listener
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

func getTrackingContext() *TrackingContext {
	gid := goid.Get()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*TrackingContext)
	}

	ctx := &TrackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

func getCurrentListener() Listener {
	return getTrackingContext().currentListener
}

// setCurrentListener sets the current listener and returns the previous one.
func setCurrentListener(l Listener) Listener {
	ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	return old
}

// WithListener runs fn with l as the tracking listener.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}

// Untrack runs fn without dependency tracking.
func Untrack(fn func()) {
	WithListener(nil, fn)
}

// UntrackValue runs fn without dependency tracking and returns its result.
func UntrackValue[T any](fn func() T) T {
	var out T
	Untrack(func() { out = fn() })
	return out
}

// IsTracking reports whether a listener is currently collecting dependencies.
func IsTracking() bool {
	return getCurrentListener() != nil
}

// ReleaseGoroutine drops the tracking context of the calling goroutine.
// Long-lived worker goroutines call it before exiting.
func ReleaseGoroutine() {
	trackingContexts.Delete(goid.Get())
}
