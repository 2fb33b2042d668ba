// Package weave reconciles a declared tree of UI nodes against a live
// platform tree from pkg/dom.
//
// A Node is one addressable position in the reconciled tree. Nodes are built
// with H and come in five kinds: elements bound to one dom element, text,
// components driven by a Definition, fragments, and reactive nodes whose
// children follow a reactive source.
//
//	host := weave.NewHost(sched.NewLoop())
//	root, err := host.Render(doc, weave.H("ul", nil,
//		weave.H("li", weave.Props{"key": 1}, "one"),
//		weave.H("li", weave.Props{"key": 2}, "two"),
//	))
//
// UpdateChildren diffs a newly declared child list against the current one
// (Diff) and applies the resulting patch list in a fixed order. The first
// call on a node applies synchronously; later calls go through the node's
// idle-time scheduler, where a newer request replaces a pending one.
//
// All methods must be called from the goroutine that drives the host's
// sched.Loop.
package weave
