package weave

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/sched"
)

// DefaultTracerName is the otel tracer used when none is configured.
const DefaultTracerName = "github.com/vango-dev/weave"

// Recorder receives reconciliation metrics. pkg/metrics implements it.
type Recorder interface {
	// PatchesApplied is called once per applied diff with the number of
	// patches of each kind.
	PatchesApplied(counts map[string]int, d time.Duration)

	// RenderFailed is called for every caught render error.
	RenderFailed(component string)
}

type nopRecorder struct{}

func (nopRecorder) PatchesApplied(map[string]int, time.Duration) {}
func (nopRecorder) RenderFailed(string)                          {}

// Host binds a reconciled tree to a loop and carries the side tables that
// map platform nodes and node ids back to nodes and component instances.
type Host struct {
	loop    *sched.Loop
	logger  *slog.Logger
	metrics Recorder
	tracer  trace.Tracer
	owner   *reactive.Owner

	views     map[uint64]*Node
	instances map[uint64]*Component
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(h *Host) {
		if r != nil {
			h.metrics = r
		}
	}
}

// WithTracer sets the tracer used for patch and render spans.
func WithTracer(t trace.Tracer) Option {
	return func(h *Host) {
		if t != nil {
			h.tracer = t
		}
	}
}

// NewHost creates a Host on loop.
func NewHost(loop *sched.Loop, opts ...Option) *Host {
	h := &Host{
		loop:      loop,
		logger:    slog.Default(),
		metrics:   nopRecorder{},
		tracer:    otel.Tracer(DefaultTracerName),
		owner:     reactive.NewOwner(nil),
		views:     make(map[uint64]*Node),
		instances: make(map[uint64]*Component),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Loop returns the loop the host schedules on.
func (h *Host) Loop() *sched.Loop { return h.loop }

// Logger returns the host logger.
func (h *Host) Logger() *slog.Logger { return h.logger }

// Root creates a container fragment bound to h. It is the top of a
// reconciled tree.
func (h *Host) Root() *Node {
	n := newNode(KindFragment)
	n.host = h
	n.container = true
	n.props = Props{}
	return n
}

// Render mounts a new root under parent and applies children to it
// synchronously.
func (h *Host) Render(parent *dom.Node, children ...any) (*Node, error) {
	root := h.Root()
	if err := root.Mount(parent, nil, false); err != nil {
		return nil, err
	}
	if _, err := root.UpdateChildren(children...); err != nil {
		return root, err
	}
	return root, nil
}

// NodeFor returns the node bound to a platform node.
func (h *Host) NodeFor(d *dom.Node) (*Node, bool) {
	n, ok := h.views[d.ID()]
	return n, ok
}

// InstanceOf returns the component instance rendering into n.
func (h *Host) InstanceOf(n *Node) (*Component, bool) {
	c, ok := h.instances[n.id]
	return c, ok
}

// Dispose stops every reactive binding created under h.
func (h *Host) Dispose() {
	h.owner.Dispose()
}

func (n *Node) logger() *slog.Logger {
	if h := n.Host(); h != nil {
		return h.logger
	}
	return slog.Default()
}
