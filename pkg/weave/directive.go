package weave

import (
	"strings"

	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/lifecycle"
)

// Directive is a reusable hook bound to element props whose key starts
// with Key. Keys start with "v-"; a suffix after ":" is passed as Arg.
type Directive struct {
	Key       string
	Mounted   func(el *dom.Node, b Binding)
	Updated   func(el *dom.Node, b Binding)
	Unmounted func(el *dom.Node, b Binding)
}

// Binding describes one directive application.
type Binding struct {
	Key      string
	Arg      string
	Value    any
	OldValue any
}

type directiveRegistryKey struct{}

// directives is stored under directiveRegistryKey at container nodes and
// copied on write so a nested container never mutates its ancestor's set.
type directives map[string]Directive

// RegisterDirective stores d at the nearest container of n.
func RegisterDirective(n *Node, d Directive) error {
	next := directives{}
	if cur, ok := n.ContextValue(directiveRegistryKey{}).(directives); ok {
		for k, v := range cur {
			next[k] = v
		}
	}
	next[d.Key] = d
	return n.SetContextValue(directiveRegistryKey{}, next)
}

// resolveDirective finds the directive with the longest key that prefixes
// the prop key.
func (n *Node) resolveDirective(propKey string) (Directive, string, bool) {
	reg, _ := n.ContextValue(directiveRegistryKey{}).(directives)
	name, arg, _ := strings.Cut(propKey, ":")

	var best Directive
	found := false
	for k, d := range reg {
		if strings.HasPrefix(name, k) && (!found || len(k) > len(best.Key)) {
			best, found = d, true
		}
	}
	return best, arg, found
}

func (n *Node) patchDirective(k string, old, v any, had bool) {
	st := n.element
	if b, ok := st.bound[k]; ok && had {
		b.value = v
		if b.dir.Updated != nil {
			b.dir.Updated(n.el, Binding{Key: k, Arg: b.arg, Value: v, OldValue: old})
		}
		return
	}

	d, arg, ok := n.resolveDirective(k)
	if !ok {
		n.logger().Warn("unknown directive", "node", n.id, "prop", k)
		return
	}
	b := &boundDirective{dir: d, arg: arg, value: v}
	st.bound[k] = b
	if d.Mounted == nil {
		return
	}
	if n.status == StatusMounted {
		d.Mounted(n.el, Binding{Key: k, Arg: arg, Value: v})
		return
	}
	n.bus.Once(lifecycle.Mounted, func(any) {
		if st.bound[k] == b {
			d.Mounted(n.el, Binding{Key: k, Arg: arg, Value: b.value})
		}
	})
}
