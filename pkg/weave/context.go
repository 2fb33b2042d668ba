package weave

import "github.com/vango-dev/weave/internal/errors"

type absent struct{}

func (absent) String() string { return "<absent>" }

// Absent is returned by ContextValue when no node on the parent chain
// holds the key.
var Absent any = absent{}

// ContextValue looks key up on n and then on each ancestor.
func (n *Node) ContextValue(key any) any {
	for p := n; p != nil; p = p.parent {
		if v, ok := p.context[key]; ok {
			return v
		}
	}
	return Absent
}

// SetContextValue writes key at the nearest container, n included.
func (n *Node) SetContextValue(key, value any) error {
	for p := n; p != nil; p = p.parent {
		if p.container {
			p.context[key] = value
			return nil
		}
	}
	return errors.New(errors.CodeNoContainer).WithDetailf("key %v on %s node %d", key, n.kind, n.id)
}
