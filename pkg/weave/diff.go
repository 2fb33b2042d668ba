package weave

import (
	"github.com/vango-dev/weave/pkg/dom"
)

// PatchKind tags a Patch.
type PatchKind uint8

const (
	PatchMove      PatchKind = iota // Reposition a kept node
	PatchInsert                     // Mount a new node
	PatchRemove                     // Unmount an old node
	PatchReplace                    // Mount New in place of Old
	PatchText                       // Update text content
	PatchDOMUpdate                  // Copy declared props/children onto an element
	PatchViewPatch                  // Carry props/state onto a component instance
	PatchChildren                   // Carry declared children onto a component or fragment
)

var patchKindNames = [...]string{
	PatchMove:      "move",
	PatchInsert:    "insert",
	PatchRemove:    "remove",
	PatchReplace:   "replace",
	PatchText:      "text",
	PatchDOMUpdate: "dom-update",
	PatchViewPatch: "view-patch",
	PatchChildren:  "patch-children",
}

// String returns the patch kind name.
func (k PatchKind) String() string {
	if int(k) < len(patchKindNames) {
		return patchKindNames[k]
	}
	return "unknown"
}

// DiffNode describes one side of a patch.
type DiffNode struct {
	Platform *dom.Node
	View     *Node
	Key      any
	Keyed    bool
	Index    int
}

// Patch is one edit. Index is the position in the target child list.
type Patch struct {
	Kind  PatchKind
	Old   *DiffNode
	New   *DiffNode
	Index int
}

// DiffResult is the output of Diff.
type DiffResult struct {
	Patches []Patch

	// Target is the child list after the patches are applied. Kept nodes
	// appear in place of their new declarations.
	Target []*Node
}

// Count returns the number of patches of kind k.
func (r *DiffResult) Count(k PatchKind) int {
	n := 0
	for _, p := range r.Patches {
		if p.Kind == k {
			n++
		}
	}
	return n
}

// Counts returns the patch count per kind name.
func (r *DiffResult) Counts() map[string]int {
	out := make(map[string]int)
	for _, p := range r.Patches {
		out[p.Kind.String()]++
	}
	return out
}

func diffNode(n *Node, index int) *DiffNode {
	return &DiffNode{
		Platform: n.platform(),
		View:     n,
		Key:      n.key,
		Keyed:    n.keyed,
		Index:    index,
	}
}

// outcome of comparing an old node with a new declaration at one position.
type outcome uint8

const (
	outcomeKeep    outcome = iota // Same node, nothing to do
	outcomePatch                  // Keep the old node, content patches added
	outcomeReplace                // The new node replaces the old one
)

type differ struct {
	result  *DiffResult
	inOld   map[*Node]bool
	inNext  map[*Node]bool
	patches []Patch
}

// Diff computes the edit script that turns old into next.
//
// Pass 1 walks positions, comparing unkeyed nodes index by index. Keyed
// nodes are deferred to pass 2, which matches them by key. Kept nodes whose
// relative order changed are moved; the set that stays in place is the
// longest increasing run of old positions, so a swap costs one move.
func Diff(old, next []*Node) *DiffResult {
	d := &differ{
		result: &DiffResult{Target: make([]*Node, len(next))},
		inOld:  make(map[*Node]bool, len(old)),
		inNext: make(map[*Node]bool, len(next)),
	}
	for _, n := range old {
		d.inOld[n] = true
	}
	for _, n := range next {
		d.inNext[n] = true
	}

	// kept pairs target index with old index for move minimization.
	var kept [][2]int

	// Pass 1: unkeyed, index aligned.
	size := len(old)
	if len(next) > size {
		size = len(next)
	}
	for i := 0; i < size; i++ {
		var o, nw *Node
		if i < len(old) {
			o = old[i]
		}
		if i < len(next) {
			nw = next[i]
		}

		if nw != nil && nw.keyed {
			if o != nil && !o.keyed {
				d.removeUnlessKept(o, i)
			}
			continue
		}
		if nw == nil {
			if !o.keyed {
				d.removeUnlessKept(o, i)
			}
			continue
		}
		if o == nil || o.keyed {
			d.insert(nw, i)
			continue
		}

		if o == nw || (o.el != nil && o.el == nw.el) {
			d.result.Target[i] = o
			kept = append(kept, [2]int{i, i})
			continue
		}
		if d.inNext[o] || d.inOld[nw] {
			// One side is a live node reused elsewhere; its own position
			// handles it.
			d.insert(nw, i)
			d.removeUnlessKept(o, i)
			continue
		}
		switch d.compare(o, nw, i) {
		case outcomeReplace:
			d.replace(o, nw, i)
		default:
			d.result.Target[i] = o
			kept = append(kept, [2]int{i, i})
		}
	}

	// Pass 2: keyed.
	oldByKey := make(map[any]int)
	for i, o := range old {
		if !o.keyed {
			continue
		}
		if _, dup := oldByKey[o.key]; !dup {
			oldByKey[o.key] = i
		}
	}
	claimed := make(map[int]bool)
	for i, nw := range next {
		if !nw.keyed {
			continue
		}
		j, ok := oldByKey[nw.key]
		if !ok || claimed[j] {
			d.insert(nw, i)
			continue
		}
		claimed[j] = true
		o := old[j]
		if o == nw {
			d.result.Target[i] = o
			kept = append(kept, [2]int{i, j})
			continue
		}
		switch d.compare(o, nw, i) {
		case outcomeReplace:
			d.replace(o, nw, i)
		default:
			d.result.Target[i] = o
			kept = append(kept, [2]int{i, j})
		}
	}
	for j, o := range old {
		if o.keyed && !claimed[j] && !d.inNext[o] {
			d.patches = append(d.patches, Patch{Kind: PatchRemove, Old: diffNode(o, j), Index: j})
		}
	}

	d.result.Patches = append(d.moves(kept, old), d.patches...)
	return d.result
}

// compare decides how an old node is brought up to a new declaration at
// index i, recording content patches for kept nodes.
func (d *differ) compare(o, nw *Node, i int) outcome {
	if o.kind == KindText || nw.kind == KindText {
		if o.kind != nw.kind || o.handle || nw.handle {
			return outcomeReplace
		}
		if o.text != nw.text {
			d.add(PatchText, o, nw, i)
			return outcomePatch
		}
		return outcomeKeep
	}
	if o.outsideEffect || nw.outsideEffect {
		return outcomeReplace
	}
	if o.kind != nw.kind {
		return outcomeReplace
	}

	switch o.kind {
	case KindElement:
		if o.tag != nw.tag || o.handle || nw.handle {
			return outcomeReplace
		}
		if propsDiffer(o.props, nw.props) || childrenDiffer(o.declared, nw.declared) {
			d.add(PatchDOMUpdate, o, nw, i)
			return outcomePatch
		}
		return outcomeKeep
	case KindComponent:
		if o.def != nw.def {
			return outcomeReplace
		}
		if propsDiffer(o.props, nw.props) || !identical(o.state, nw.state) {
			d.add(PatchViewPatch, o, nw, i)
		}
		// Render closures can capture state a props comparison cannot see.
		d.add(PatchChildren, o, nw, i)
		return outcomePatch
	case KindFragment:
		if childrenDiffer(o.declared, nw.declared) {
			d.add(PatchChildren, o, nw, i)
			return outcomePatch
		}
		return outcomeKeep
	case KindReactive:
		if !identical(o.source, nw.source) {
			return outcomeReplace
		}
		return outcomeKeep
	}
	return outcomeReplace
}

func (d *differ) add(k PatchKind, o, nw *Node, i int) {
	d.patches = append(d.patches, Patch{Kind: k, Old: diffNode(o, i), New: diffNode(nw, i), Index: i})
}

func (d *differ) insert(nw *Node, i int) {
	d.result.Target[i] = nw
	d.patches = append(d.patches, Patch{Kind: PatchInsert, New: diffNode(nw, i), Index: i})
}

func (d *differ) replace(o, nw *Node, i int) {
	d.result.Target[i] = nw
	d.patches = append(d.patches, Patch{Kind: PatchReplace, Old: diffNode(o, i), New: diffNode(nw, i), Index: i})
}

func (d *differ) removeUnlessKept(o *Node, i int) {
	if d.inNext[o] {
		return
	}
	d.patches = append(d.patches, Patch{Kind: PatchRemove, Old: diffNode(o, i), Index: i})
}

// moves emits a move for every kept node outside the longest increasing
// subsequence of old indices taken in target order.
func (d *differ) moves(kept [][2]int, old []*Node) []Patch {
	if len(kept) < 2 {
		return nil
	}
	sortPairs(kept)
	seq := make([]int, len(kept))
	for i, p := range kept {
		seq[i] = p[1]
	}
	stay := lis(seq)

	var out []Patch
	for i, p := range kept {
		if stay[i] {
			continue
		}
		n := d.result.Target[p[0]]
		out = append(out, Patch{
			Kind:  PatchMove,
			Old:   diffNode(old[p[1]], p[1]),
			New:   diffNode(n, p[0]),
			Index: p[0],
		})
	}
	return out
}

func sortPairs(pairs [][2]int) {
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j][0] < pairs[j-1][0]; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
}

// lis marks the members of one longest strictly increasing subsequence.
func lis(seq []int) []bool {
	tails := make([]int, 0, len(seq)) // indices into seq
	prev := make([]int, len(seq))
	for i, v := range seq {
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	out := make([]bool, len(seq))
	if len(tails) == 0 {
		return out
	}
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		out[i] = true
	}
	return out
}
