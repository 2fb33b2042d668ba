package weave

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/sched"
)

type fixture struct {
	host *Host
	loop *sched.Loop
	body *dom.Node
	root *Node
	logs *bytes.Buffer
}

// newFixture mounts an empty root under a fresh body element. The root has
// not applied children yet, so its first UpdateChildren is synchronous.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	loop := sched.NewLoop(sched.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	h := NewHost(loop, WithLogger(slog.New(slog.NewTextHandler(logs, nil))))
	body := dom.NewElement("body")
	root := h.Root()
	if err := root.Mount(body, nil, false); err != nil {
		t.Fatalf("Mount root: %v", err)
	}
	t.Cleanup(h.Dispose)
	return &fixture{host: h, loop: loop, body: body, root: root, logs: logs}
}

// update applies children to the root and drains the loop.
func (f *fixture) update(t *testing.T, children ...any) *DiffResult {
	t.Helper()
	task, err := f.root.UpdateChildren(children...)
	if err != nil {
		t.Fatalf("UpdateChildren: %v", err)
	}
	f.loop.Drain()
	v, ok := task.Result()
	if !ok {
		t.Fatalf("task %q settled without a value (state %s)", task.Name(), task.State())
	}
	return v.(*DiffResult)
}

func countKinds(r *DiffResult) map[PatchKind]int {
	out := make(map[PatchKind]int)
	for _, p := range r.Patches {
		out[p.Kind]++
	}
	return out
}
