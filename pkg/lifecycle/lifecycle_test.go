package lifecycle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmitOrderAndOff(t *testing.T) {
	b := NewBus()
	var log []string

	off := b.On(Mounted, func(p any) { log = append(log, "a:"+p.(string)) })
	b.On(Mounted, func(p any) { log = append(log, "b:"+p.(string)) })

	b.Emit(Mounted, "1")
	off()
	b.Emit(Mounted, "2")
	b.Emit(Unmounted, "ignored")

	want := []string{"a:1", "b:1", "b:2"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("log (-want +got):\n%s", diff)
	}
}

func TestOnce(t *testing.T) {
	b := NewBus()
	n := 0
	b.Once(Updated, func(any) { n++ })

	b.Emit(Updated, nil)
	b.Emit(Updated, nil)

	if n != 1 {
		t.Errorf("once handler ran %d times", n)
	}
	if b.Count(Updated) != 0 {
		t.Errorf("Count = %d, want 0", b.Count(Updated))
	}
}

func TestRemovedDuringEmitIsSkipped(t *testing.T) {
	b := NewBus()
	var offB func()
	ranB := false

	b.On(PatchAfter, func(any) { offB() })
	offB = b.On(PatchAfter, func(any) { ranB = true })

	b.Emit(PatchAfter, nil)
	if ranB {
		t.Error("handler removed mid-emit still ran")
	}
}

func TestEscalate(t *testing.T) {
	b := NewBus()
	var escalated []any
	b.Escalate(Error, func(p any) { escalated = append(escalated, p) })

	b.Emit(Error, "first")

	local := 0
	off := b.On(Error, func(any) { local++ })
	b.Emit(Error, "second")
	off()
	b.Emit(Error, "third")

	if diff := cmp.Diff([]any{"first", "third"}, escalated); diff != "" {
		t.Errorf("escalated (-want +got):\n%s", diff)
	}
	if local != 1 {
		t.Errorf("local handler ran %d times, want 1", local)
	}
}

func TestClear(t *testing.T) {
	b := NewBus()
	ran := false
	b.On(Init, func(any) { ran = true })
	b.Clear()
	b.Emit(Init, nil)
	if ran {
		t.Error("handler ran after Clear")
	}
}
