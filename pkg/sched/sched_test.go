package sched

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLoop() (*Loop, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	return NewLoop(WithClock(clock.Now), WithFrameBudget(10*time.Millisecond)), clock
}

type countingObserver struct {
	submitted, cancelled, ran int
}

func (o *countingObserver) TaskSubmitted(string)          { o.submitted++ }
func (o *countingObserver) TaskCancelled(string)          { o.cancelled++ }
func (o *countingObserver) TaskRun(string, time.Duration) { o.ran++ }

func TestSubmitCoalescesSameName(t *testing.T) {
	obs := &countingObserver{}
	loop := NewLoop(WithObserver(obs))
	s := New(loop)

	var applied []string
	first := s.Submit("patch", func() any { applied = append(applied, "first"); return "first" })
	second := s.Submit("patch", func() any { applied = append(applied, "second"); return "second" })

	if !first.Settled() || first.State() != TaskCancelled {
		t.Fatalf("first task state = %s, want cancelled", first.State())
	}
	if v, ok := first.Result(); ok || v != nil {
		t.Errorf("cancelled Result() = %v, %v; want nil, false", v, ok)
	}
	select {
	case <-first.Done():
	default:
		t.Error("cancelled task Done() not closed")
	}

	loop.Drain()

	if diff := cmp.Diff([]string{"second"}, applied); diff != "" {
		t.Errorf("applied (-want +got):\n%s", diff)
	}
	if v, ok := second.Result(); !ok || v != "second" {
		t.Errorf("second Result() = %v, %v", v, ok)
	}
	if obs.submitted != 2 || obs.cancelled != 1 || obs.ran != 1 {
		t.Errorf("observer = %+v", obs)
	}
}

func TestDifferentNamesDoNotCoalesce(t *testing.T) {
	loop := NewLoop()
	s := New(loop)

	var order []string
	s.Submit("a", func() any { order = append(order, "a"); return nil })
	s.Submit("b", func() any { order = append(order, "b"); return nil })
	if s.Len() != 2 || !s.Pending("a") || !s.Pending("b") {
		t.Fatalf("queue len = %d", s.Len())
	}

	loop.Drain()
	if diff := cmp.Diff([]string{"a", "b"}, order); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestScheduleRunsFirstSynchronously(t *testing.T) {
	loop := NewLoop()
	s := New(loop)

	ran := 0
	task := s.Schedule("patch-children", func() any { ran++; return ran })
	if ran != 1 || !task.Settled() {
		t.Fatal("first Schedule should run synchronously")
	}
	if !s.Applied("patch-children") {
		t.Error("Applied should be true after the first run")
	}

	task = s.Schedule("patch-children", func() any { ran++; return ran })
	if ran != 1 || task.Settled() {
		t.Fatal("second Schedule should be deferred")
	}
	loop.Drain()
	if v, _ := task.Result(); v != 2 {
		t.Errorf("deferred result = %v, want 2", v)
	}
}

func TestFrameBudget(t *testing.T) {
	loop, clock := newTestLoop()
	s := New(loop)

	var ran []int
	for i := 0; i < 3; i++ {
		i := i
		s.Submit(string(rune('a'+i)), func() any {
			ran = append(ran, i)
			clock.Advance(6 * time.Millisecond)
			return nil
		})
	}

	// 10ms budget: the first task always runs, the second starts with 4ms
	// left, the third has none.
	if !loop.Frame() {
		t.Fatal("work should remain after the first frame")
	}
	if diff := cmp.Diff([]int{0, 1}, ran); diff != "" {
		t.Errorf("after frame 1 (-want +got):\n%s", diff)
	}

	loop.Frame()
	if diff := cmp.Diff([]int{0, 1, 2}, ran); diff != "" {
		t.Errorf("after frame 2 (-want +got):\n%s", diff)
	}
	if loop.Pending() {
		t.Error("loop should be idle")
	}
}

func TestThenRunsAsMicrotask(t *testing.T) {
	loop := NewLoop()
	s := New(loop)

	var log []string
	task := s.Submit("x", func() any { log = append(log, "run"); return 1 })
	task.Then(func(v any, ok bool) {
		log = append(log, "then")
		if !ok || v != 1 {
			t.Errorf("Then got %v, %v", v, ok)
		}
	})

	cancelled := s.Submit("y", func() any { return nil })
	s.Submit("y", func() any { return nil })
	cancelled.Then(func(v any, ok bool) {
		log = append(log, "cancelled-then")
		if ok {
			t.Error("cancelled continuation reported a value")
		}
	})

	loop.Drain()
	want := []string{"cancelled-then", "run", "then"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("log (-want +got):\n%s", diff)
	}
}

func TestDisposeCancelsPending(t *testing.T) {
	loop := NewLoop()
	s := New(loop)

	ran := false
	task := s.Submit("patch", func() any { ran = true; return nil })
	s.Dispose()
	loop.Drain()

	if ran {
		t.Error("task ran after Dispose")
	}
	if task.State() != TaskCancelled {
		t.Errorf("state = %s, want cancelled", task.State())
	}
	if late := s.Submit("patch", func() any { ran = true; return nil }); late.State() != TaskCancelled {
		t.Error("Submit after Dispose should return a cancelled task")
	}
}

func TestPostIsDrainedOnLoop(t *testing.T) {
	loop := NewLoop()
	done := make(chan struct{})
	go func() {
		loop.Post(func() { close(done) })
	}()

	deadline := time.After(time.Second)
	for {
		loop.RunMicrotasks()
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("posted function never ran")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestPanickingTaskSettles(t *testing.T) {
	loop := NewLoop()
	s := New(loop)

	task := s.Submit("boom", func() any { panic("boom") })
	loop.Drain()

	if task.State() != TaskDone {
		t.Errorf("state = %s, want done", task.State())
	}
	if _, ok := task.Result(); ok {
		t.Error("panicking task should have no value")
	}
}

func TestResolved(t *testing.T) {
	task := Resolved("x", 5)
	if v, ok := task.Result(); !ok || v != 5 {
		t.Errorf("Result() = %v, %v", v, ok)
	}
	called := false
	task.Then(func(any, bool) { called = true })
	if !called {
		t.Error("Then on a loop-less resolved task should run inline")
	}
}
