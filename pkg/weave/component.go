package weave

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/lifecycle"
	"github.com/vango-dev/weave/pkg/reactive"
)

// RenderFunc renders a component. The result is any value UpdateChildren
// accepts; a returned error is reported like a panic.
type RenderFunc func(ctx *Ctx) any

// Definition describes a component. Setup runs once per instance and may
// return the render step; otherwise Render is used. Definitions are matched
// by pointer identity across renders, so create them once.
type Definition struct {
	Name   string
	Setup  func(ctx *Ctx) RenderFunc
	Render RenderFunc
}

// Define creates a definition with a setup step.
func Define(name string, setup func(ctx *Ctx) RenderFunc) *Definition {
	return &Definition{Name: name, Setup: setup}
}

// Func creates a definition from a plain render function.
func Func(name string, render RenderFunc) *Definition {
	return &Definition{Name: name, Render: render}
}

func (d *Definition) String() string {
	if d.Name == "" {
		return "anonymous"
	}
	return d.Name
}

// Component is a live instance of a Definition. It owns its node, which is
// a container for context writes.
type Component struct {
	node *Node
	def  *Definition
	ctx  *Ctx

	props    Props
	state    any
	children []any

	render RenderFunc
	effect *reactive.Effect
}

// Node returns the node the instance renders into.
func (c *Component) Node() *Node { return c.node }

// Definition returns the definition the instance was created from.
func (c *Component) Definition() *Definition { return c.def }

// Props returns the current props.
func (c *Component) Props() Props { return c.props }

// State returns the current state.
func (c *Component) State() any { return c.state }

// Renders returns how many times the render step has run.
func (c *Component) Renders() int {
	if c.effect == nil {
		return 0
	}
	return c.effect.Runs()
}

// Patch replaces props, state and children and re-renders.
func (c *Component) Patch(props Props, state any, children []any) {
	c.props = props
	c.state = state
	c.children = children
	c.Update()
}

// Update re-runs the render step.
func (c *Component) Update() {
	if c.effect != nil && c.node.status != StatusUnmounted {
		c.effect.Rerun()
	}
}

func (n *Node) initComponent(h *Host) error {
	n.container = true
	c := &Component{
		node:     n,
		def:      n.def,
		props:    n.props,
		state:    n.state,
		children: n.declared,
	}
	c.ctx = &Ctx{c: c}
	h.instances[n.id] = c

	var err error
	reactive.Untrack(func() {
		err = c.guard(func() {
			if c.def.Setup != nil {
				c.render = c.def.Setup(c.ctx)
			}
		})
	})
	if c.render == nil {
		c.render = c.def.Render
	}
	if err != nil || c.render == nil {
		if err == nil {
			err = fmt.Errorf("definition %s has no render step", c.def)
		}
		c.report(err)
		return nil
	}

	c.effect = n.owner.Effect(func() reactive.Cleanup {
		c.run(h)
		return nil
	})
	return nil
}

// run performs one render pass. Reads inside render are tracked by the
// effect; the child update is not.
func (c *Component) run(h *Host) {
	n := c.node
	n.emit(lifecycle.RenderBefore, c)

	_, span := h.tracer.Start(context.Background(), "weave.render",
		trace.WithAttributes(
			attribute.String("weave.component", c.def.String()),
			attribute.Int64("weave.node", int64(n.id)),
		))
	defer span.End()

	var out any
	err := c.guard(func() { out = c.render(c.ctx) })
	if err == nil {
		if e, ok := out.(error); ok {
			err = e
		}
	}
	if err == nil {
		reactive.Untrack(func() {
			_, err = n.UpdateChildren(out)
		})
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.report(err)
		return
	}
	n.emit(lifecycle.RenderAfter, c)
}

// guard runs fn and converts a panic into an error.
func (c *Component) guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

// report logs a render error and re-emits it as an error event on the next
// microtask so the render call stack is left intact.
func (c *Component) report(err error) {
	n := c.node
	var we *errors.WeaveError
	if !stderrors.As(err, &we) || we.Code != errors.CodeRenderFailed {
		err = errors.New(errors.CodeRenderFailed).
			WithDetailf("component %s", c.def).
			Wrap(err)
	}
	n.logger().Error("render failed",
		"component", c.def.String(),
		"node", n.id,
		"error", err)

	h := n.Host()
	if h == nil {
		return
	}
	h.metrics.RenderFailed(c.def.String())
	h.loop.Microtask(func() {
		if n.status != StatusUnmounted {
			n.Fail(err)
		}
	})
}

// Ctx is handed to setup and render. It replaces an implicit current-node
// stack: everything a component needs from its position in the tree is
// reached through it.
type Ctx struct {
	c *Component
}

// Node returns the component node.
func (x *Ctx) Node() *Node { return x.c.node }

// Component returns the running instance.
func (x *Ctx) Component() *Component { return x.c }

// Props returns the current props.
func (x *Ctx) Props() Props { return x.c.props }

// Prop returns one prop resolved through reactive.Read.
func (x *Ctx) Prop(key string) any { return reactive.Read(x.c.props[key]) }

// State returns the current state.
func (x *Ctx) State() any { return x.c.state }

// Children returns the declared children passed to the component.
func (x *Ctx) Children() []any { return x.c.children }

// Context reads an inherited context value.
func (x *Ctx) Context(key any) any { return x.c.node.ContextValue(key) }

// Provide writes a context value for the subtree of this component.
func (x *Ctx) Provide(key, value any) error { return x.c.node.SetContextValue(key, value) }

// Directive registers a directive for the subtree of this component.
func (x *Ctx) Directive(d Directive) error { return RegisterDirective(x.c.node, d) }

// On subscribes to a lifecycle event of the component node.
func (x *Ctx) On(ev lifecycle.Event, fn lifecycle.Handler) func() {
	return x.c.node.On(ev, fn)
}

// Effect creates an effect owned by the component.
func (x *Ctx) Effect(fn func() reactive.Cleanup) *reactive.Effect {
	return x.c.node.owner.Effect(fn)
}

// OnCleanup registers fn to run when the component unmounts.
func (x *Ctx) OnCleanup(fn func()) { x.c.node.owner.OnCleanup(fn) }

// Throw emits v on the throw channel of the component node.
func (x *Ctx) Throw(v any) { x.c.node.Throw(v) }

// Logger returns the host logger.
func (x *Ctx) Logger() *slog.Logger { return x.c.node.logger() }
