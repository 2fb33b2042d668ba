package dom

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SetAttribute sets an attribute on an element.
func (n *Node) SetAttribute(key, value string) {
	if n.typ != ElementNode {
		return
	}
	if old, ok := n.attrs[key]; ok && old == value {
		return
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[key] = value
	n.notify(Mutation{Op: OpSetAttr, Target: n.id, Name: key, Value: value})
}

// RemoveAttribute removes an attribute if present.
func (n *Node) RemoveAttribute(key string) {
	if _, ok := n.attrs[key]; !ok {
		return
	}
	delete(n.attrs, key)
	n.notify(Mutation{Op: OpRemoveAttr, Target: n.id, Name: key})
}

// Attribute returns the value of an attribute.
func (n *Node) Attribute(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(key string) bool {
	_, ok := n.attrs[key]
	return ok
}

// AttributeNames returns the attribute names in sorted order.
func (n *Node) AttributeNames() []string {
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ApplyAttribute sets or removes an attribute from an arbitrary Go value.
// nil and false remove the attribute, true sets it to the empty string.
func (n *Node) ApplyAttribute(key string, value any) {
	s, ok := FormatAttribute(value)
	if !ok {
		n.RemoveAttribute(key)
		return
	}
	n.SetAttribute(key, s)
}

// FormatAttribute converts a value to its attribute string. The boolean
// result is false when the attribute should be absent.
func FormatAttribute(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return "", val
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case []string:
		return strings.Join(val, " "), true
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+val[k])
		}
		return strings.Join(parts, "; "), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
