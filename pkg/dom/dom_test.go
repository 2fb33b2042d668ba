package dom

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNodeTypeString(t *testing.T) {
	tests := []struct {
		typ  NodeType
		want string
	}{
		{ElementNode, "Element"},
		{TextNode, "Text"},
		{CommentNode, "Comment"},
		{DocumentNode, "Document"},
		{NodeType(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestInsertBeforeAndMove(t *testing.T) {
	doc := NewDocument()
	a, b, c := NewElement("a"), NewElement("b"), NewElement("c")

	for _, n := range []*Node{a, b} {
		if err := doc.AppendChild(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := doc.InsertBefore(c, a); err != nil {
		t.Fatal(err)
	}
	if got := doc.InnerHTML(); got != "<c></c><a></a><b></b>" {
		t.Fatalf("InnerHTML = %q", got)
	}

	// Moving an attached node keeps the same instance.
	rec := Record(doc)
	if err := doc.InsertBefore(b, c); err != nil {
		t.Fatal(err)
	}
	if got := doc.InnerHTML(); got != "<b></b><c></c><a></a>" {
		t.Fatalf("InnerHTML after move = %q", got)
	}
	if rec.Count(OpMove) != 1 || rec.Count(OpInsert) != 0 {
		t.Errorf("mutations = %+v, want one move", rec.Mutations)
	}
	if b.Parent() != doc || b.NextSibling() != c {
		t.Error("sibling links not updated")
	}
}

func TestInsertBeforeErrors(t *testing.T) {
	parent := NewElement("div")
	child := NewElement("span")
	_ = parent.AppendChild(child)

	if err := child.AppendChild(parent); !errors.Is(err, ErrHierarchy) {
		t.Errorf("cycle insert error = %v, want ErrHierarchy", err)
	}
	if err := parent.AppendChild(parent); !errors.Is(err, ErrHierarchy) {
		t.Errorf("self insert error = %v, want ErrHierarchy", err)
	}
	if err := parent.InsertBefore(NewText("x"), NewElement("p")); !errors.Is(err, ErrNotChild) {
		t.Errorf("foreign ref error = %v, want ErrNotChild", err)
	}
	if err := NewText("t").AppendChild(NewText("u")); !errors.Is(err, ErrHierarchy) {
		t.Errorf("text parent error = %v, want ErrHierarchy", err)
	}
	if err := parent.RemoveChild(NewElement("p")); !errors.Is(err, ErrNotChild) {
		t.Errorf("RemoveChild foreign error = %v, want ErrNotChild", err)
	}
}

func TestAttributes(t *testing.T) {
	el := NewElement("input")
	rec := Record(el)

	el.ApplyAttribute("id", "x")
	el.ApplyAttribute("disabled", true)
	el.ApplyAttribute("hidden", false)
	el.ApplyAttribute("class", []string{"a", "b"})
	el.ApplyAttribute("style", map[string]string{"color": "red", "align": "left"})
	el.ApplyAttribute("id", "x") // unchanged, no mutation

	if got := el.OuterHTML(); got != `<input class="a b" disabled id="x" style="align: left; color: red">` {
		t.Errorf("OuterHTML = %q", got)
	}
	if rec.Count(OpSetAttr) != 4 {
		t.Errorf("set-attr count = %d, want 4", rec.Count(OpSetAttr))
	}

	el.ApplyAttribute("disabled", nil)
	if el.HasAttribute("disabled") {
		t.Error("nil should remove the attribute")
	}
}

func TestDispatchBubbles(t *testing.T) {
	outer := NewElement("div")
	inner := NewElement("button")
	_ = outer.AppendChild(inner)

	var log []string
	removeOuter := outer.AddEventListener("click", func(e *Event) {
		log = append(log, "outer:"+e.Target.Tag())
	})
	inner.AddEventListener("click", func(e *Event) {
		log = append(log, "inner")
	})

	inner.Dispatch("click", nil)
	removeOuter()
	inner.Dispatch("click", nil)

	want := []string{"inner", "outer:button", "inner"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("dispatch order (-want +got):\n%s", diff)
	}
	if outer.ListenerCount("click") != 0 {
		t.Error("listener not removed")
	}
}

func TestStopPropagation(t *testing.T) {
	outer := NewElement("div")
	inner := NewElement("a")
	_ = outer.AppendChild(inner)

	reached := false
	outer.AddEventListener("x", func(*Event) { reached = true })
	inner.AddEventListener("x", func(e *Event) { e.StopPropagation() })

	if inner.Dispatch("x", nil) {
		t.Error("Dispatch should report stopped propagation")
	}
	if reached {
		t.Error("event bubbled past StopPropagation")
	}
}

func TestObserveSubtree(t *testing.T) {
	doc := NewDocument()
	div := NewElement("div")
	text := NewText("hi")
	_ = doc.AppendChild(div)

	rec := Record(doc)
	_ = div.AppendChild(text)
	text.SetData("bye")
	div.RemoveChild(text)
	rec.Stop()
	div.SetAttribute("id", "ignored")

	ops := make([]MutationOp, 0, len(rec.Mutations))
	for _, m := range rec.Mutations {
		ops = append(ops, m.Op)
	}
	want := []MutationOp{OpInsert, OpText, OpRemove}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("ops (-want +got):\n%s", diff)
	}
	if rec.Mutations[0].HTML != "hi" || rec.Mutations[0].Parent != div.ID() {
		t.Errorf("insert mutation = %+v", rec.Mutations[0])
	}
}

func TestTextContentAndEscaping(t *testing.T) {
	p := NewElement("p")
	_ = p.AppendChild(NewText("a < b"))
	_ = p.AppendChild(NewComment(""))
	_ = p.AppendChild(NewText("!"))

	if got := p.TextContent(); got != "a < b!" {
		t.Errorf("TextContent = %q", got)
	}
	if got := p.OuterHTML(); got != "<p>a &lt; b<!---->!</p>" {
		t.Errorf("OuterHTML = %q", got)
	}
}
