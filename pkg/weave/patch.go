package weave

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/lifecycle"
)

// apply runs a diff result against n in a fixed order: moves, removals,
// insertions and replacements first, then content patches, then prop
// updates, then one re-render per touched component. When n is not
// attached to the platform tree only the bookkeeping is done; children are
// placed when n mounts.
func (n *Node) apply(r *DiffResult) {
	h := n.Host()
	start := time.Now()
	_, span := h.tracer.Start(context.Background(), "weave.patch",
		trace.WithAttributes(
			attribute.String("weave.kind", n.kind.String()),
			attribute.Int64("weave.node", int64(n.id)),
			attribute.Int("weave.patches", len(r.Patches)),
		))
	defer span.End()

	n.emit(lifecycle.PatchBefore, r)

	for _, c := range r.Target {
		c.parent = n
	}
	parent := n.childParent()

	byKind := make([][]Patch, len(patchKindNames))
	for _, p := range r.Patches {
		byKind[p.Kind] = append(byKind[p.Kind], p)
	}

	moves := byKind[PatchMove]
	for i := len(moves) - 1; i >= 0; i-- {
		p := moves[i]
		if parent != nil {
			n.place(p.Old.View, r.Target, p.Index, parent, true)
		}
	}
	for _, p := range byKind[PatchRemove] {
		p.Old.View.Unmount()
	}
	for _, p := range byKind[PatchInsert] {
		if parent != nil {
			c := p.New.View
			n.place(c, r.Target, p.Index, parent, c.status == StatusMounted)
		}
	}
	for _, p := range byKind[PatchReplace] {
		if parent != nil {
			n.place(p.New.View, r.Target, p.Index, parent, false)
		}
		p.Old.View.Unmount()
	}

	n.children = r.Target

	var dirty []*Node
	markDirty := func(c *Node) {
		if !c.dirty {
			c.dirty = true
			dirty = append(dirty, c)
		}
	}

	for _, p := range byKind[PatchText] {
		o := p.Old.View
		o.text = p.New.View.text
		o.el.SetData(o.text)
	}
	for _, p := range byKind[PatchChildren] {
		o := p.Old.View
		o.declared = p.New.View.declared
		markDirty(o)
	}

	for _, p := range byKind[PatchDOMUpdate] {
		o, nw := p.Old.View, p.New.View
		o.props = nw.props
		o.declared = nw.declared
		if err := o.UpdateDOM(); err != nil {
			n.logger().Error("element update failed", "node", o.id, "error", err)
		}
	}
	for _, p := range byKind[PatchViewPatch] {
		o, nw := p.Old.View, p.New.View
		o.props = nw.props
		o.state = nw.state
		markDirty(o)
	}

	for _, c := range dirty {
		c.dirty = false
		n.flush(c)
	}

	n.emit(lifecycle.PatchAfter, r)

	h.metrics.PatchesApplied(r.Counts(), time.Since(start))
	if len(r.Patches) > 0 {
		n.logger().Debug("patches applied",
			"node", n.id,
			"kind", n.kind.String(),
			"patches", len(r.Patches))
	}
}

// flush re-renders a node whose declaration changed during a patch.
func (n *Node) flush(c *Node) {
	if c.status == StatusUnmounted {
		return
	}
	switch c.kind {
	case KindComponent:
		inst, ok := n.Host().instances[c.id]
		if !ok {
			return
		}
		inst.Patch(c.props, c.state, c.declared)
	case KindFragment:
		if c.status == StatusCreated {
			return
		}
		if _, err := c.UpdateChildren(c.declared...); err != nil {
			n.logger().Error("fragment update failed", "node", c.id, "error", err)
		}
	}
}

// place mounts c at target index i under parent. The reference is the
// first later target entry already attached under parent, falling back to
// n's anchor (nil for elements, which appends).
func (n *Node) place(c *Node, target []*Node, i int, parent *dom.Node, isMove bool) {
	var ref *dom.Node
	for j := i + 1; j < len(target); j++ {
		if t := target[j]; t != c && t.attachedUnder(parent) {
			ref = t.firstPlatform()
			break
		}
	}
	if ref == nil && n.kind != KindElement {
		ref = n.anchor
	}
	if err := c.Mount(parent, ref, isMove); err != nil {
		n.logger().Error("mount failed", "node", c.id, "parent", n.id, "error", err)
	}
}
