package sched

// TaskState is the lifecycle state of a Task.
type TaskState uint8

const (
	TaskPending TaskState = iota
	TaskRunning
	TaskDone
	TaskCancelled
)

// String returns the string representation of the TaskState.
func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskDone:
		return "done"
	case TaskCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Task is a named unit of work submitted to a Scheduler. It settles either
// with the value its function returned or, when cancelled, with no value.
type Task struct {
	name  string
	fn    func() any
	loop  *Loop
	state TaskState

	value any
	ok    bool

	done      chan struct{}
	callbacks []func(any, bool)
}

func newTask(loop *Loop, name string, fn func() any) *Task {
	return &Task{
		name: name,
		fn:   fn,
		loop: loop,
		done: make(chan struct{}),
	}
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// State returns the current state.
func (t *Task) State() TaskState { return t.state }

// Done is closed once the task settles.
func (t *Task) Done() <-chan struct{} { return t.done }

// Settled reports whether the task has completed or been cancelled.
func (t *Task) Settled() bool {
	return t.state == TaskDone || t.state == TaskCancelled
}

// Result returns the value and whether there is one. Cancelled and
// unsettled tasks report ok == false.
func (t *Task) Result() (value any, ok bool) {
	return t.value, t.ok
}

// Then registers fn to run as a microtask once the task settles. Continuations
// of a task that already settled are queued right away.
func (t *Task) Then(fn func(value any, ok bool)) {
	if t.Settled() {
		t.queue(fn)
		return
	}
	t.callbacks = append(t.callbacks, fn)
}

func (t *Task) queue(fn func(any, bool)) {
	value, ok := t.value, t.ok
	if t.loop == nil {
		fn(value, ok)
		return
	}
	t.loop.Microtask(func() { fn(value, ok) })
}

// run executes the task. A panicking task still settles, with no value,
// before the panic continues.
func (t *Task) run() {
	t.state = TaskRunning
	settled := false
	defer func() {
		if !settled {
			t.settle(TaskDone, nil, false)
		}
	}()
	value := t.fn()
	settled = true
	t.settle(TaskDone, value, true)
}

func (t *Task) cancel() {
	if t.state != TaskPending {
		return
	}
	t.settle(TaskCancelled, nil, false)
}

func (t *Task) settle(state TaskState, value any, ok bool) {
	t.state = state
	t.value = value
	t.ok = ok
	close(t.done)

	callbacks := t.callbacks
	t.callbacks = nil
	for _, fn := range callbacks {
		t.queue(fn)
	}
}

// Resolved returns a task that already completed with value.
func Resolved(name string, value any) *Task {
	t := newTask(nil, name, nil)
	t.settle(TaskDone, value, true)
	return t
}
