package weave

import (
	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/lifecycle"
	"github.com/vango-dev/weave/pkg/reactive"
)

// init initializes n once. Element nodes apply their children and then
// their props, components run setup and the first render, fragments and
// reactive nodes compute their first child list.
func (n *Node) init() error {
	if n.status != StatusCreated {
		return nil
	}
	h := n.Host()
	if h == nil {
		return errors.New(errors.CodeNoHost).WithDetailf("%s node %d", n.kind, n.id)
	}

	n.emit(lifecycle.InitBefore, n)
	n.status = StatusInitialized
	n.owner = reactive.NewOwner(n.ownerParent())
	if n.el != nil {
		h.views[n.el.ID()] = n
	}

	var err error
	switch n.kind {
	case KindElement:
		err = n.initElement()
	case KindFragment:
		if len(n.declared) > 0 {
			_, err = n.UpdateChildren(n.declared...)
		}
	case KindComponent:
		err = n.initComponent(h)
	case KindReactive:
		n.initReactive()
	}
	if err != nil {
		return err
	}

	n.emit(lifecycle.Init, n)
	n.emit(lifecycle.InitAfter, n)
	return nil
}

func (n *Node) initReactive() {
	n.owner.Effect(func() reactive.Cleanup {
		v := reactive.Read(n.source)
		reactive.Untrack(func() {
			if _, err := n.UpdateChildren(v); err != nil {
				n.logger().Error("reactive node update failed", "node", n.id, "error", err)
			}
		})
		return nil
	})
}

// Mount initializes n if needed and places it under parent before the
// given reference (nil appends). With isMove the node is repositioned and
// the move events are emitted instead of the mount events.
func (n *Node) Mount(parent, before *dom.Node, isMove bool) error {
	if n.status == StatusUnmounted {
		return errors.New(errors.CodeUnmounted).WithDetailf("%s node %d", n.kind, n.id)
	}
	if parent == nil {
		return errors.New(errors.CodeMountUnderSelf).WithDetail("nil platform parent")
	}
	if own := n.platform(); own != nil && own.Contains(parent) {
		return errors.New(errors.CodeMountUnderSelf).WithDetailf("%s node %d", n.kind, n.id)
	}
	for _, c := range n.children {
		if c.containsPlatform(parent) {
			return errors.New(errors.CodeMountUnderSelf).WithDetailf("%s node %d", n.kind, n.id)
		}
	}
	if err := n.init(); err != nil {
		return err
	}

	if isMove {
		n.emit(lifecycle.MoveBefore, n)
	} else {
		n.emit(lifecycle.MountBefore, n)
	}

	if err := parent.InsertBefore(n.platform(), before); err != nil {
		return errors.New(errors.CodeMountUnderSelf).Wrap(err)
	}
	if n.anchor != nil {
		for _, c := range n.children {
			if err := c.Mount(parent, n.anchor, isMove || c.status == StatusMounted); err != nil {
				return err
			}
		}
	}

	first := n.status != StatusMounted
	n.status = StatusMounted
	if isMove {
		n.emit(lifecycle.MoveAfter, n)
		return nil
	}
	if first {
		n.emit(lifecycle.Mounted, n)
	}
	n.emit(lifecycle.MountAfter, n)
	return nil
}

// Unmount tears n down: it cancels pending tasks, detaches the platform
// node, unmounts children, clears listeners and stops owned reactive
// bindings. The node cannot be mounted again.
func (n *Node) Unmount() {
	if n.status == StatusUnmounted {
		return
	}
	n.emit(lifecycle.UnmountBefore, n)

	if n.sched != nil {
		n.sched.Dispose()
	}
	if p := n.platform(); p != nil {
		p.Remove()
	}
	for _, c := range n.children {
		c.Unmount()
	}
	if n.element != nil {
		n.cleanupProps()
	}

	n.status = StatusUnmounted
	n.emit(lifecycle.Unmounted, n)
	n.emit(lifecycle.UnmountAfter, n)
	n.bus.Clear()

	if n.owner != nil {
		n.owner.Dispose()
	}
	if h := n.Host(); h != nil {
		if n.el != nil {
			delete(h.views, n.el.ID())
		}
		delete(h.instances, n.id)
	}
}

// platform returns the dom node that positions n.
func (n *Node) platform() *dom.Node {
	if n.el != nil {
		return n.el
	}
	return n.anchor
}

// firstPlatform returns the first dom node n occupies, used as an insertion
// reference by preceding siblings.
func (n *Node) firstPlatform() *dom.Node {
	if n.el != nil {
		return n.el
	}
	for _, c := range n.children {
		if c.status == StatusMounted && c.platform().Parent() == n.anchor.Parent() {
			return c.firstPlatform()
		}
	}
	return n.anchor
}

// childParent returns the dom node children of n are placed under, or nil
// when n is not attached yet.
func (n *Node) childParent() *dom.Node {
	if n.kind == KindElement {
		return n.el
	}
	if n.anchor != nil {
		return n.anchor.Parent()
	}
	return nil
}

func (n *Node) attachedUnder(parent *dom.Node) bool {
	p := n.platform()
	return n.status == StatusMounted && p != nil && p.Parent() == parent
}

func (n *Node) containsPlatform(d *dom.Node) bool {
	if n.el != nil {
		return n.el.Contains(d)
	}
	for _, c := range n.children {
		if c.containsPlatform(d) {
			return true
		}
	}
	return false
}
