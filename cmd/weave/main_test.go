package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/sched"
	"github.com/vango-dev/weave/pkg/weave"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const before = `
children:
  - {tag: li, key: a, text: A}
  - {tag: li, key: b, text: B}
`

const after = `
children:
  - {tag: li, key: b, text: B}
  - {tag: li, key: a, text: A}
`

func TestDiffCommandJSON(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.yaml", before)
	newPath := writeFile(t, dir, "new.yaml", after)

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"diff", "--json", oldPath, newPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var report diffReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out.String())
	}
	if len(report.Patches) != 1 || report.Patches[0].Kind != "move" {
		t.Errorf("patches = %+v", report.Patches)
	}
	if report.Totals["move"] != 1 {
		t.Errorf("totals = %v", report.Totals)
	}
	if !strings.HasPrefix(report.HTML, "<li>B</li><li>A</li>") {
		t.Errorf("html = %q", report.HTML)
	}
}

func TestDiffCommandText(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.yaml", before)
	newPath := writeFile(t, dir, "new.yaml", "children:\n  - {text: gone}\n")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"diff", oldPath, newPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"Patches", "Mutations", "gone"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDiffCommandBadDocument(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "children:\n  - tag: p\n    colour: red\n")

	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"diff", bad, bad})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}

func TestVersionShort(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"version", "--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version = %q, want %q", got, version)
	}
}

func TestDemoRotatesOnTick(t *testing.T) {
	loop := sched.NewLoop()
	host := weave.NewHost(loop)
	body := dom.NewElement("body")
	ticks := reactive.NewSignal(0)
	if _, err := host.Render(body, weave.H(demo, weave.Props{"ticks": ticks})); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(body.TextContent(), "tick 0alphabetagammadelta") {
		t.Fatalf("text = %q", body.TextContent())
	}

	rec := dom.Record(body)
	defer rec.Stop()
	ticks.Set(1)
	loop.Drain()

	if !strings.Contains(body.TextContent(), "tick 1betagammadeltaalpha") {
		t.Errorf("text = %q", body.TextContent())
	}
	if rec.Count(dom.OpInsert) != 0 {
		t.Errorf("rotation inserted nodes: %+v", rec.Mutations)
	}
}
