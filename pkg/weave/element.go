package weave

import (
	"sort"
	"strings"

	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/lifecycle"
	"github.com/vango-dev/weave/pkg/reactive"
)

// Reserved prop keys and prefixes.
const (
	propKey         = "key"
	propRef         = "ref"
	eventPrefix     = "on"
	privatePrefix   = "_"
	directivePrefix = "v-"
)

// elementState is the per-element record of applied props.
type elementState struct {
	applied  Props
	cleanups map[string]func()
	bound    map[string]*boundDirective
}

type boundDirective struct {
	dir   Directive
	arg   string
	value any
}

func newElementState() *elementState {
	return &elementState{
		applied:  Props{},
		cleanups: make(map[string]func()),
		bound:    make(map[string]*boundDirective),
	}
}

func (n *Node) initElement() error {
	if len(n.declared) > 0 {
		if _, err := n.UpdateChildren(n.declared...); err != nil {
			return err
		}
	}
	n.applyProps()
	return nil
}

// UpdateDOM re-applies the declared children and props of an element node
// inside the update_before / updated / update_after bracket. Nodes that
// were never initialized pick the declaration up on init instead.
func (n *Node) UpdateDOM() error {
	if n.kind != KindElement || n.status == StatusCreated || n.status == StatusUnmounted {
		return nil
	}
	n.emit(lifecycle.UpdateBefore, n)
	if _, err := n.UpdateChildren(n.declared...); err != nil {
		return err
	}
	n.applyProps()
	n.emit(lifecycle.Updated, n)
	n.emit(lifecycle.UpdateAfter, n)
	return nil
}

func skipProp(k string) bool {
	return k == propKey || strings.HasPrefix(k, privatePrefix)
}

// applyProps diffs the declared props against the applied record by
// identity. Removed keys are cleaned up before changed keys are patched.
func (n *Node) applyProps() {
	st := n.element
	for _, k := range sortedKeys(st.applied) {
		if v, ok := n.props[k]; !ok || v == nil {
			n.cleanupProp(k, true)
			delete(st.applied, k)
		}
	}
	for _, k := range sortedKeys(n.props) {
		v := n.props[k]
		if skipProp(k) || v == nil {
			continue
		}
		old, had := st.applied[k]
		if had && identical(old, v) {
			continue
		}
		n.patchProp(k, old, v, had)
		st.applied[k] = v
	}
}

func (n *Node) patchProp(k string, old, v any, had bool) {
	if strings.HasPrefix(k, directivePrefix) {
		n.patchDirective(k, old, v, had)
		return
	}
	if had {
		n.cleanupProp(k, false)
	}

	switch {
	case k == propRef:
		n.bindRef(v)
	case isListener(k, v):
		typ := strings.ToLower(k[len(eventPrefix):])
		n.element.cleanups[k] = n.el.AddEventListener(typ, toListener(v))
	default:
		eff := n.owner.Effect(func() reactive.Cleanup {
			n.el.ApplyAttribute(k, reactive.Read(v))
			return nil
		})
		n.element.cleanups[k] = eff.Dispose
	}
}

// cleanupProp undoes a patched prop. With removed the prop is gone from the
// declaration and its attribute is removed too.
func (n *Node) cleanupProp(k string, removed bool) {
	st := n.element
	if b, ok := st.bound[k]; ok {
		if removed {
			delete(st.bound, k)
			if b.dir.Unmounted != nil {
				b.dir.Unmounted(n.el, Binding{Key: k, Arg: b.arg, OldValue: b.value})
			}
		}
		return
	}
	if c, ok := st.cleanups[k]; ok {
		delete(st.cleanups, k)
		c()
	}
	if removed && k != propRef && !strings.HasPrefix(k, directivePrefix) && !isListener(k, st.applied[k]) {
		n.el.RemoveAttribute(k)
	}
}

func (n *Node) cleanupProps() {
	for _, k := range sortedKeys(n.element.applied) {
		n.cleanupProp(k, true)
	}
	n.element.applied = Props{}
}

func (n *Node) bindRef(v any) {
	el := n.el
	switch r := v.(type) {
	case reactive.Writable:
		r.WriteAny(el)
		n.element.cleanups[propRef] = func() { r.WriteAny(nil) }
	case func(*dom.Node):
		r(el)
		n.element.cleanups[propRef] = func() { r(nil) }
	case reactive.Readable:
		n.logger().Warn("ref binding is read-only, ignoring", "node", n.id, "tag", n.tag)
	default:
		n.logger().Warn("unsupported ref binding", "node", n.id, "type", typeName(v))
	}
}

func isListener(k string, v any) bool {
	if len(k) <= len(eventPrefix) || !strings.HasPrefix(k, eventPrefix) {
		return false
	}
	return toListener(v) != nil
}

func toListener(v any) dom.Listener {
	switch fn := v.(type) {
	case dom.Listener:
		return fn
	case func(*dom.Event):
		return fn
	case func():
		return func(*dom.Event) { fn() }
	default:
		return nil
	}
}

func sortedKeys(p Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
