package weave

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/reactive"
)

func TestReactiveAttribute(t *testing.T) {
	f := newFixture(t)
	title := reactive.NewSignal("a")
	f.root.UpdateChildren(H("div", Props{"title": title, "hidden": true}))
	el := f.root.Children()[0].Element()

	if got := el.OuterHTML(); got != `<div hidden title="a"></div>` {
		t.Fatalf("html = %q", got)
	}
	title.Set("b")
	if v, _ := el.Attribute("title"); v != "b" {
		t.Errorf("title = %q, want b", v)
	}

	f.update(t, H("div", Props{"title": title}))
	if el.HasAttribute("hidden") {
		t.Error("removed prop left its attribute behind")
	}
	title.Set("c")
	if v, _ := el.Attribute("title"); v != "c" {
		t.Errorf("title = %q, want c", v)
	}
}

func TestEventListenerProps(t *testing.T) {
	f := newFixture(t)
	clicks := 0
	f.root.UpdateChildren(H("button", Props{"onClick": func() { clicks++ }}))
	el := f.root.Children()[0].Element()

	el.Dispatch("click", nil)
	if clicks != 1 {
		t.Fatalf("clicks = %d", clicks)
	}
	if el.HasAttribute("onClick") {
		t.Error("listener was applied as an attribute")
	}

	f.update(t, H("button", nil))
	el.Dispatch("click", nil)
	if clicks != 1 {
		t.Errorf("listener survived removal, clicks = %d", clicks)
	}
	if n := el.ListenerCount("click"); n != 0 {
		t.Errorf("ListenerCount = %d", n)
	}
}

func TestRefBindings(t *testing.T) {
	f := newFixture(t)
	ref := reactive.NewSignal[*dom.Node](nil)
	var called *dom.Node
	f.root.UpdateChildren(
		H("input", Props{"ref": ref}),
		H("span", Props{"ref": func(el *dom.Node) { called = el }}),
	)
	kids := f.root.Children()
	if ref.Peek() != kids[0].Element() {
		t.Error("writable ref not assigned")
	}
	if called != kids[1].Element() {
		t.Error("ref callback not called")
	}

	f.update(t)
	if ref.Peek() != nil || called != nil {
		t.Error("refs not cleared on unmount")
	}
}

func TestReadOnlyRefWarns(t *testing.T) {
	f := newFixture(t)
	ro := reactive.NewMemo(func() *dom.Node { return nil })
	f.root.UpdateChildren(H("div", Props{"ref": ro}))

	if ro.Peek() != nil {
		t.Error("read-only ref was written")
	}
	if !strings.Contains(f.logs.String(), "read-only") {
		t.Errorf("no warning logged: %q", f.logs.String())
	}
}

func TestPrivateAndKeyPropsSkipped(t *testing.T) {
	f := newFixture(t)
	f.root.UpdateChildren(H("div", Props{"key": 1, "_meta": "x", "id": "a"}))
	el := f.root.Children()[0].Element()
	if diff := cmp.Diff([]string{"id"}, el.AttributeNames()); diff != "" {
		t.Errorf("attributes (-want +got):\n%s", diff)
	}
}

func TestDirectiveHooks(t *testing.T) {
	f := newFixture(t)
	var log []string
	err := RegisterDirective(f.root, Directive{
		Key: "v-focus",
		Mounted: func(el *dom.Node, b Binding) {
			attached := el.Parent() != nil
			log = append(log, "mounted:"+b.Arg+":"+b.Value.(string)+":"+boolString(attached))
		},
		Updated: func(el *dom.Node, b Binding) {
			log = append(log, "updated:"+b.OldValue.(string)+"->"+b.Value.(string))
		},
		Unmounted: func(el *dom.Node, b Binding) {
			log = append(log, "unmounted:"+b.OldValue.(string))
		},
	})
	if err != nil {
		t.Fatalf("RegisterDirective: %v", err)
	}

	f.root.UpdateChildren(H("input", Props{"v-focus:strong": "1"}))
	f.update(t, H("input", Props{"v-focus:strong": "2"}))
	f.update(t)

	want := []string{"mounted:strong:1:true", "updated:1->2", "unmounted:2"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("hooks (-want +got):\n%s", diff)
	}
}

func TestContextWrites(t *testing.T) {
	f := newFixture(t)
	child := H("div", nil)
	f.root.UpdateChildren(child)

	if err := child.SetContextValue("k", 1); err != nil {
		t.Fatalf("SetContextValue: %v", err)
	}
	if v := f.root.ContextValue("k"); v != 1 {
		t.Errorf("root saw %v, want the write anchored at the root", v)
	}
	if v := child.ContextValue("missing"); v != Absent {
		t.Errorf("missing key = %v, want Absent", v)
	}

	orphan := H("div", nil)
	if err := orphan.SetContextValue("k", 1); !errors.HasCode(err, errors.CodeNoContainer) {
		t.Errorf("orphan write err = %v", err)
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
