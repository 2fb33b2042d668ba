package dom

import (
	"errors"
	"sync/atomic"
)

// NodeType is the node type discriminator.
type NodeType uint8

const (
	ElementNode  NodeType = iota + 1 // <div>, <button>, etc.
	TextNode                         // Plain text
	CommentNode                      // Comment, used as a position anchor
	DocumentNode                     // Tree root
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case DocumentNode:
		return "Document"
	default:
		return "Unknown"
	}
}

var (
	// ErrHierarchy is returned when an insertion would make a node its own
	// ancestor or attach a child to a node that cannot hold children.
	ErrHierarchy = errors.New("dom: hierarchy request error")

	// ErrNotChild is returned when a reference or removed node is not a
	// child of the node operated on.
	ErrNotChild = errors.New("dom: node is not a child of this node")
)

var idCounter atomic.Uint64

// Node is a platform tree node.
type Node struct {
	id   uint64
	typ  NodeType
	tag  string
	data string

	attrs     map[string]string
	listeners map[string][]*listener

	parent   *Node
	children []*Node

	observers []*observer
}

func newNode(typ NodeType) *Node {
	return &Node{
		id:  idCounter.Add(1),
		typ: typ,
	}
}

// NewDocument creates an empty document root.
func NewDocument() *Node {
	return newNode(DocumentNode)
}

// NewElement creates a detached element.
func NewElement(tag string) *Node {
	n := newNode(ElementNode)
	n.tag = tag
	return n
}

// NewText creates a detached text node.
func NewText(data string) *Node {
	n := newNode(TextNode)
	n.data = data
	return n
}

// NewComment creates a detached comment node.
func NewComment(data string) *Node {
	n := newNode(CommentNode)
	n.data = data
	return n
}

// ID returns the node's process-unique identifier.
func (n *Node) ID() uint64 { return n.id }

// Type returns the node type.
func (n *Node) Type() NodeType { return n.typ }

// Tag returns the element tag name, or "" for non-elements.
func (n *Node) Tag() string { return n.tag }

// Data returns the content of a text or comment node.
func (n *Node) Data() string { return n.data }

// SetData replaces the content of a text or comment node.
func (n *Node) SetData(data string) {
	if n.data == data {
		return
	}
	n.data = data
	n.notify(Mutation{Op: OpText, Target: n.id, Value: data})
}

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// NextSibling returns the following sibling or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// TextContent returns the concatenated text of all descendant text nodes.
func (n *Node) TextContent() string {
	switch n.typ {
	case TextNode:
		return n.data
	case CommentNode:
		return ""
	}
	var b []byte
	for _, c := range n.children {
		b = append(b, c.TextContent()...)
	}
	return string(b)
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) canHaveChildren() bool {
	return n.typ == ElementNode || n.typ == DocumentNode
}
