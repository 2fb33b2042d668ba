package weave

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/weave/pkg/reactive"
)

func keyed(keys ...int) []*Node {
	out := make([]*Node, len(keys))
	for i, k := range keys {
		out[i] = H("li", Props{"key": k}, k)
	}
	return out
}

func texts(ss ...string) []*Node {
	out := make([]*Node, len(ss))
	for i, s := range ss {
		out[i] = Text(s)
	}
	return out
}

func TestDiff(t *testing.T) {
	shared := Func("shared", func(*Ctx) any { return nil })
	sig := reactive.NewSignal(1)

	tests := []struct {
		name string
		old  []*Node
		next []*Node
		want map[PatchKind]int
	}{
		{
			name: "empty to text",
			next: texts("a"),
			want: map[PatchKind]int{PatchInsert: 1},
		},
		{
			name: "same text",
			old:  texts("a", "b"),
			next: texts("a", "b"),
			want: map[PatchKind]int{},
		},
		{
			name: "changed text",
			old:  texts("a", "b"),
			next: texts("a", "c"),
			want: map[PatchKind]int{PatchText: 1},
		},
		{
			name: "shrink",
			old:  texts("a", "b", "c"),
			next: texts("a"),
			want: map[PatchKind]int{PatchRemove: 2},
		},
		{
			name: "text to element",
			old:  texts("a"),
			next: []*Node{H("b", nil, "a")},
			want: map[PatchKind]int{PatchReplace: 1},
		},
		{
			name: "keyed reverse",
			old:  keyed(1, 2, 3, 4, 5),
			next: keyed(5, 4, 3, 2, 1),
			want: map[PatchKind]int{PatchMove: 4},
		},
		{
			name: "keyed add and remove",
			old:  keyed(1, 2, 3),
			next: keyed(1, 3, 4),
			want: map[PatchKind]int{PatchInsert: 1, PatchRemove: 1},
		},
		{
			name: "keyed and unkeyed mixed",
			old:  append(texts("head"), keyed(1, 2)...),
			next: append(texts("head"), keyed(2, 1)...),
			want: map[PatchKind]int{PatchMove: 1},
		},
		{
			name: "keyed tag change replaces without move",
			old:  []*Node{H("li", Props{"key": 1}), H("li", Props{"key": 2})},
			next: []*Node{H("p", Props{"key": 2}), H("li", Props{"key": 1})},
			want: map[PatchKind]int{PatchReplace: 1},
		},
		{
			name: "same component definition",
			old:  []*Node{H(shared, Props{"n": 1})},
			next: []*Node{H(shared, Props{"n": 1})},
			want: map[PatchKind]int{PatchChildren: 1},
		},
		{
			name: "component props change",
			old:  []*Node{H(shared, Props{"n": 1})},
			next: []*Node{H(shared, Props{"n": 2})},
			want: map[PatchKind]int{PatchViewPatch: 1, PatchChildren: 1},
		},
		{
			name: "component to element",
			old:  []*Node{H(shared, nil)},
			next: []*Node{H("div", nil)},
			want: map[PatchKind]int{PatchReplace: 1},
		},
		{
			name: "same reactive source",
			old:  []*Node{Reactive(sig)},
			next: []*Node{Reactive(sig)},
			want: map[PatchKind]int{},
		},
		{
			name: "outside effect",
			old:  []*Node{H("div", nil).WithOutsideEffect()},
			next: []*Node{H("div", nil).WithOutsideEffect()},
			want: map[PatchKind]int{PatchReplace: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Diff(tt.old, tt.next)
			if diff := cmp.Diff(tt.want, countKinds(r)); diff != "" {
				t.Errorf("patch kinds (-want +got):\n%s", diff)
			}
			if len(r.Target) != len(tt.next) {
				t.Errorf("len(Target) = %d, want %d", len(r.Target), len(tt.next))
			}
		})
	}
}

func TestDiffTargetKeepsOldNodes(t *testing.T) {
	old := keyed(1, 2, 3)
	next := keyed(3, 1, 2)
	r := Diff(old, next)

	want := []*Node{old[2], old[0], old[1]}
	for i := range want {
		if r.Target[i] != want[i] {
			t.Errorf("Target[%d] is not the kept old node", i)
		}
	}
	if got := r.Count(PatchMove); got != 1 {
		t.Errorf("moves = %d, want 1", got)
	}
}

func TestDiffReusedNodeIsNotRemoved(t *testing.T) {
	a, b := Text("a"), H("hr", nil)
	r := Diff([]*Node{a, b}, []*Node{b, a})
	if got := r.Count(PatchRemove); got != 0 {
		t.Errorf("removes = %d, want 0", got)
	}
	if r.Target[0] != b || r.Target[1] != a {
		t.Error("reused nodes missing from Target")
	}
}

func TestLIS(t *testing.T) {
	tests := []struct {
		seq  []int
		want int
	}{
		{nil, 0},
		{[]int{0, 1, 2}, 3},
		{[]int{2, 1, 0}, 1},
		{[]int{2, 0, 4, 1, 3}, 3},
	}
	for _, tt := range tests {
		n := 0
		for _, in := range lis(tt.seq) {
			if in {
				n++
			}
		}
		if n != tt.want {
			t.Errorf("lis(%v) kept %d, want %d", tt.seq, n, tt.want)
		}
	}
}

func TestPatchKindString(t *testing.T) {
	if got := PatchChildren.String(); got != "patch-children" {
		t.Errorf("PatchChildren = %q", got)
	}
	if got := PatchKind(99).String(); got != "unknown" {
		t.Errorf("PatchKind(99) = %q", got)
	}
}
