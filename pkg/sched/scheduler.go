package sched

import "time"

// Scheduler is a per-node idle-time task queue that coalesces same-named
// tasks.
type Scheduler struct {
	loop *Loop

	queue  []*Task
	byName map[string]*Task

	cancelIdle func()
	applied    map[string]bool
	disposed   bool
}

// New creates a Scheduler on loop.
func New(loop *Loop) *Scheduler {
	return &Scheduler{
		loop:    loop,
		byName:  make(map[string]*Task),
		applied: make(map[string]bool),
	}
}

// Submit queues fn under name for the next idle period. A pending task with
// the same name is cancelled first and resolves with no value.
func (s *Scheduler) Submit(name string, fn func() any) *Task {
	t := newTask(s.loop, name, fn)
	if s.disposed {
		t.cancel()
		return t
	}

	if prev, ok := s.byName[name]; ok {
		s.remove(prev)
		prev.cancel()
		s.observeCancel(name)
	}

	s.byName[name] = t
	s.queue = append(s.queue, t)
	if s.loop.observer != nil {
		s.loop.observer.TaskSubmitted(name)
	}
	s.requestIdle()
	return t
}

// Run applies fn synchronously under name, cancelling any pending task of
// the same name, and returns the settled task.
func (s *Scheduler) Run(name string, fn func() any) *Task {
	if prev, ok := s.byName[name]; ok {
		s.remove(prev)
		prev.cancel()
		s.observeCancel(name)
	}
	t := newTask(s.loop, name, fn)
	if s.disposed {
		t.cancel()
		return t
	}
	s.execute(t)
	return t
}

// Schedule runs fn synchronously the first time name is applied on this
// scheduler and submits it for idle time afterwards.
func (s *Scheduler) Schedule(name string, fn func() any) *Task {
	if !s.applied[name] {
		return s.Run(name, fn)
	}
	return s.Submit(name, fn)
}

// Applied reports whether a task named name has ever run.
func (s *Scheduler) Applied(name string) bool {
	return s.applied[name]
}

// Pending reports whether a task named name is queued.
func (s *Scheduler) Pending(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Len returns the number of queued tasks.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// Dispose cancels every pending task and refuses new ones.
func (s *Scheduler) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	if s.cancelIdle != nil {
		s.cancelIdle()
		s.cancelIdle = nil
	}
	queue := s.queue
	s.queue = nil
	s.byName = make(map[string]*Task)
	for _, t := range queue {
		t.cancel()
		s.observeCancel(t.name)
	}
}

// Disposed reports whether Dispose was called.
func (s *Scheduler) Disposed() bool {
	return s.disposed
}

func (s *Scheduler) requestIdle() {
	if s.cancelIdle != nil {
		return
	}
	s.cancelIdle = s.loop.RequestIdle(s.work)
}

// work runs queued tasks while the frame has budget left; at least one task
// runs per idle callback.
func (s *Scheduler) work(d Deadline) {
	s.cancelIdle = nil
	first := true
	for len(s.queue) > 0 && !s.disposed {
		if !first && d.TimeRemaining() <= 0 {
			break
		}
		first = false

		t := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.byName, t.name)
		s.execute(t)
	}
	if len(s.queue) > 0 && !s.disposed {
		s.requestIdle()
	}
}

func (s *Scheduler) execute(t *Task) {
	start := time.Now()
	s.applied[t.name] = true
	t.run()
	if s.loop != nil && s.loop.observer != nil {
		s.loop.observer.TaskRun(t.name, time.Since(start))
	}
}

func (s *Scheduler) remove(t *Task) {
	delete(s.byName, t.name)
	for i, q := range s.queue {
		if q == t {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

func (s *Scheduler) observeCancel(name string) {
	if s.loop != nil && s.loop.observer != nil {
		s.loop.observer.TaskCancelled(name)
	}
}
