// Package sched provides the cooperative loop and the per-node task
// scheduler used by weave.
//
// A Loop models a single-threaded host: a microtask queue that is drained
// completely after every unit of work, and an idle queue whose callbacks
// run inside frames with a fixed time budget. All work submitted to a Loop
// runs on the goroutine that drives it (Frame, Drain or Run). Post is the
// only goroutine-safe entry point.
//
// A Scheduler belongs to one node. Submit queues a named task for idle time;
// submitting a task while another task with the same name is still pending
// cancels the pending one, which resolves with no value. At most one task
// per name is therefore pending, and it always represents the latest
// request. Running tasks are never aborted.
package sched
