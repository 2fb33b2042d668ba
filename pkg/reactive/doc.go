// Package reactive is the dependency-tracking capability that drives weave
// re-renders.
//
// It offers three things: read-with-tracking (Signal.Get, Memo.Get),
// write (Signal.Set) and run-untracked (Untrack). Effects record every
// signal or memo they read while running and re-run synchronously when any
// of them changes. Batch defers notifications until the outermost batch
// returns, so an effect observing several signals re-runs once.
//
// # Ownership
//
// Effects and cleanups belong to an Owner. Disposing an Owner stops all of
// its effects, runs its cleanups and disposes its child owners. weave gives
// every Node its own Owner so that unmounting a node stops every binding it
// created.
//
// # Tracking Context
//
// The "current listener" used for dependency tracking is goroutine-local,
// so independent render passes on different goroutines never see each
// other's tracking state.
package reactive
