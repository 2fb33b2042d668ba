package weave

import (
	"fmt"
	"sync/atomic"

	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/lifecycle"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/sched"
)

// Kind is the kind of a Node.
type Kind uint8

const (
	KindFragment  Kind = iota // Children only, positioned by an anchor
	KindElement               // Bound to one dom element
	KindText                  // Bound to one dom text node
	KindComponent             // Rendered by a Definition
	KindReactive              // Children follow a reactive source
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFragment:
		return "fragment"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComponent:
		return "component"
	case KindReactive:
		return "reactive"
	default:
		return "unknown"
	}
}

// Status is the lifecycle status of a Node. It only moves forward.
type Status uint8

const (
	StatusCreated Status = iota
	StatusInitialized
	StatusMounted
	StatusUnmounted
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusInitialized:
		return "initialized"
	case StatusMounted:
		return "mounted"
	case StatusUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// Props are the declared properties of an element or component node.
type Props map[string]any

// taskPatchChildren is the scheduler task name used by UpdateChildren.
const taskPatchChildren = "patch-children"

var nodeIDs atomic.Uint64

// Node is one addressable position in the reconciled tree.
type Node struct {
	id     uint64
	kind   Kind
	status Status

	key   any
	keyed bool

	parent   *Node
	children []*Node

	// el is the platform node of element and text nodes. anchor is the
	// comment that fixes the position of every other kind; children are
	// placed before it.
	el     *dom.Node
	anchor *dom.Node
	handle bool

	context       map[any]any
	container     bool
	outsideEffect bool

	bus   *lifecycle.Bus
	sched *sched.Scheduler
	owner *reactive.Owner
	host  *Host

	// Element and fragment declarations.
	tag      string
	props    Props
	declared []any
	element  *elementState

	text string

	// Component declarations.
	def   *Definition
	state any

	source any

	dirty bool
}

func newNode(kind Kind) *Node {
	n := &Node{
		id:      nodeIDs.Add(1),
		kind:    kind,
		context: make(map[any]any),
		bus:     lifecycle.NewBus(),
	}
	switch kind {
	case KindFragment, KindComponent, KindReactive:
		n.anchor = dom.NewComment(kind.String())
	}
	n.bus.Escalate(lifecycle.Error, n.escalate(lifecycle.Error))
	n.bus.Escalate(lifecycle.Throw, n.escalate(lifecycle.Throw))
	return n
}

// New builds a Node from a tag, props and declared children. The tag may be
// an element name, a *dom.Node handle, a *Definition, a RenderFunc, or nil
// for a fragment. The "key" prop sets the node key.
func New(tag any, props Props, children ...any) (*Node, error) {
	var n *Node
	switch t := tag.(type) {
	case nil:
		n = newNode(KindFragment)
	case string:
		n = newNode(KindElement)
		n.tag = t
		n.el = dom.NewElement(t)
		n.element = newElementState()
	case *dom.Node:
		if t.Type() == dom.TextNode {
			n = newNode(KindText)
			n.el = t
			n.handle = true
			n.text = t.Data()
			break
		}
		if t.Type() != dom.ElementNode {
			return nil, errors.New(errors.CodeUnknownNodeType).
				WithDetailf("cannot bind a %s node", t.Type())
		}
		n = newNode(KindElement)
		n.tag = t.Tag()
		n.el = t
		n.handle = true
		n.element = newElementState()
	case *Definition:
		n = newNode(KindComponent)
		n.def = t
	case RenderFunc:
		n = newNode(KindComponent)
		n.def = Func("", t)
	case func(*Ctx) any:
		n = newNode(KindComponent)
		n.def = Func("", t)
	default:
		return nil, errors.New(errors.CodeUnknownNodeType).
			WithDetailf("unsupported tag of type %T", tag)
	}

	if props == nil {
		props = Props{}
	}
	n.props = props
	n.declared = children
	if k, ok := props["key"]; ok && k != nil {
		n.setKey(k)
	}
	return n, nil
}

// H is like New but panics on an unsupported tag.
func H(tag any, props Props, children ...any) *Node {
	n, err := New(tag, props, children...)
	if err != nil {
		panic(err)
	}
	return n
}

// Text creates a text node.
func Text(s string) *Node {
	n := newNode(KindText)
	n.text = s
	n.el = dom.NewText(s)
	return n
}

// Reactive creates a node whose children are the current value of source,
// a reactive.Readable or a func() any.
func Reactive(source any) *Node {
	n := newNode(KindReactive)
	n.source = source
	return n
}

// Fragment creates a node that groups children without an element.
func Fragment(children ...any) *Node {
	return H(nil, nil, children...)
}

func (n *Node) setKey(k any) {
	if !isComparable(k) {
		k = fmt.Sprint(k)
	}
	n.key = k
	n.keyed = true
}

// WithKey sets the node key and returns n.
func (n *Node) WithKey(k any) *Node {
	n.setKey(k)
	return n
}

// WithState sets the state handed to a component node and returns n.
func (n *Node) WithState(state any) *Node {
	n.state = state
	return n
}

// WithOutsideEffect flags n as managing content the reconciler does not
// control. Such nodes are replaced wholesale on every re-render.
func (n *Node) WithOutsideEffect() *Node {
	n.outsideEffect = true
	return n
}

// AsContainer marks n as a context-write boundary and returns n.
func (n *Node) AsContainer() *Node {
	n.container = true
	return n
}

// ID returns the node identity.
func (n *Node) ID() uint64 { return n.id }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Status returns the lifecycle status.
func (n *Node) Status() Status { return n.status }

// Key returns the node key and whether the node is keyed.
func (n *Node) Key() (any, bool) { return n.key, n.keyed }

// Tag returns the element tag, or "" for other kinds.
func (n *Node) Tag() string { return n.tag }

// TextData returns the content of a text node.
func (n *Node) TextData() string { return n.text }

// Definition returns the component definition, or nil.
func (n *Node) Definition() *Definition { return n.def }

// Props returns the declared props.
func (n *Node) Props() Props { return n.props }

// Parent returns the parent node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the current children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Element returns the platform node of an element or text node.
func (n *Node) Element() *dom.Node { return n.el }

// Anchor returns the position anchor, or nil for element and text nodes.
func (n *Node) Anchor() *dom.Node { return n.anchor }

// IsContainer reports whether n is a context-write boundary.
func (n *Node) IsContainer() bool { return n.container }

// HasOutsideEffect reports whether n is replaced wholesale on re-render.
func (n *Node) HasOutsideEffect() bool { return n.outsideEffect }

// Host returns the host n is attached to, or nil.
func (n *Node) Host() *Host {
	for p := n; p != nil; p = p.parent {
		if p.host != nil {
			return p.host
		}
	}
	return nil
}

// On subscribes fn to a lifecycle event of n.
func (n *Node) On(ev lifecycle.Event, fn lifecycle.Handler) (off func()) {
	return n.bus.On(ev, fn)
}

// Once subscribes fn to the next emission of a lifecycle event of n.
func (n *Node) Once(ev lifecycle.Event, fn lifecycle.Handler) (off func()) {
	return n.bus.Once(ev, fn)
}

// Throw emits v on the throw channel. It escalates to ancestors until a
// node with a local throw listener is reached.
func (n *Node) Throw(v any) {
	n.bus.Emit(lifecycle.Throw, v)
}

// Fail emits err on the error channel with the same escalation as Throw.
func (n *Node) Fail(err error) {
	n.bus.Emit(lifecycle.Error, err)
}

func (n *Node) emit(ev lifecycle.Event, payload any) {
	n.bus.Emit(ev, payload)
}

// escalate forwards an event to the parent; the root logs it.
func (n *Node) escalate(ev lifecycle.Event) lifecycle.Handler {
	return func(payload any) {
		if n.parent != nil {
			n.parent.bus.Emit(ev, payload)
			return
		}
		n.logger().Warn("unhandled "+string(ev),
			"node", n.id,
			"value", payload)
	}
}

func (n *Node) ownerParent() *reactive.Owner {
	for p := n.parent; p != nil; p = p.parent {
		if p.owner != nil {
			return p.owner
		}
	}
	if h := n.Host(); h != nil {
		return h.owner
	}
	return nil
}

func (n *Node) scheduler() (*sched.Scheduler, error) {
	if n.sched != nil {
		return n.sched, nil
	}
	h := n.Host()
	if h == nil {
		return nil, errors.New(errors.CodeNoHost).WithDetailf("%s node %d", n.kind, n.id)
	}
	n.sched = sched.New(h.loop)
	return n.sched, nil
}

// UpdateChildren normalizes the declared children, diffs them against the
// current children and applies the result. The first call on a node
// applies synchronously and returns a settled task; later calls are queued
// on the node scheduler, cancelling any pending patch. The task value is
// the applied *DiffResult.
func (n *Node) UpdateChildren(children ...any) (*sched.Task, error) {
	if n.status == StatusUnmounted {
		return nil, errors.New(errors.CodeUnmounted).WithDetailf("%s node %d", n.kind, n.id)
	}
	if n.kind == KindText {
		return nil, errors.New(errors.CodeUnknownNodeType).WithDetail("text nodes have no children")
	}
	next, err := normalize(children)
	if err != nil {
		return nil, err
	}
	s, err := n.scheduler()
	if err != nil {
		return nil, err
	}
	return s.Schedule(taskPatchChildren, func() any {
		if n.status == StatusUnmounted {
			return nil
		}
		result := Diff(n.children, next)
		n.apply(result)
		return result
	}), nil
}
