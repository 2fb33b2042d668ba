package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/decl"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/sched"
	"github.com/vango-dev/weave/pkg/weave"
)

func diffCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diff OLD.yaml NEW.yaml",
		Short: "Show the patches between two declared trees",
		Long: `Render OLD, update it to NEW and print what the reconciler did:
the patches applied at the top level, the patch totals across the whole
tree, every platform mutation, and the resulting markup.

Examples:
  weave diff before.yaml after.yaml
  weave diff --json before.yaml after.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldDoc, err := decl.Load(args[0])
			if err != nil {
				return err
			}
			newDoc, err := decl.Load(args[1])
			if err != nil {
				return err
			}
			report, err := runDiff(oldDoc, newDoc)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			report.print(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

// tally sums patch counts over every node of a tree.
type tally struct {
	counts map[string]int
}

func (t *tally) PatchesApplied(counts map[string]int, _ time.Duration) {
	for k, n := range counts {
		t.counts[k] += n
	}
}

func (t *tally) RenderFailed(string) {}

type patchReport struct {
	Kind  string `json:"kind"`
	Index int    `json:"index"`
	Node  string `json:"node"`
}

type diffReport struct {
	Patches   []patchReport  `json:"patches"`
	Totals    map[string]int `json:"totals"`
	Mutations []dom.Mutation `json:"mutations"`
	HTML      string         `json:"html"`
}

// runDiff renders oldDoc into a scratch tree, updates it to newDoc and
// reports what happened.
func runDiff(oldDoc, newDoc *decl.Document) (*diffReport, error) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	loop := sched.NewLoop(sched.WithLogger(quiet))
	t := &tally{counts: make(map[string]int)}
	host := weave.NewHost(loop, weave.WithLogger(quiet), weave.WithRecorder(t))
	defer host.Dispose()

	body := dom.NewElement("body")
	root, err := host.Render(body, oldDoc.Nodes()...)
	if err != nil {
		return nil, err
	}
	loop.Drain()
	t.counts = make(map[string]int)

	rec := dom.Record(body)
	defer rec.Stop()

	task, err := root.UpdateChildren(newDoc.Nodes()...)
	if err != nil {
		return nil, err
	}
	loop.Drain()

	v, ok := task.Result()
	if !ok {
		return nil, errors.Newf(errors.CategoryCLI, "update was cancelled")
	}
	result := v.(*weave.DiffResult)

	report := &diffReport{
		Totals:    t.counts,
		Mutations: rec.Mutations,
		HTML:      body.InnerHTML(),
	}
	for _, p := range result.Patches {
		side := p.New
		if side == nil {
			side = p.Old
		}
		report.Patches = append(report.Patches, patchReport{
			Kind:  p.Kind.String(),
			Index: p.Index,
			Node:  describe(side.View),
		})
	}
	return report, nil
}

func describe(n *weave.Node) string {
	var s string
	switch n.Kind() {
	case weave.KindElement:
		s = "<" + n.Tag() + ">"
	case weave.KindText:
		s = fmt.Sprintf("%q", n.TextData())
	case weave.KindComponent:
		s = n.Definition().String()
	default:
		s = n.Kind().String()
	}
	if k, ok := n.Key(); ok {
		s += fmt.Sprintf(" key=%v", k)
	}
	return s
}

func (r *diffReport) print(w io.Writer) {
	fmt.Fprintln(w, paint("1", "Patches"))
	if len(r.Patches) == 0 {
		info(w, "none")
	}
	for _, p := range r.Patches {
		info(w, "%-14s #%d %s", p.Kind, p.Index, p.Node)
	}

	fmt.Fprintln(w, paint("1", "Totals"))
	kinds := make([]string, 0, len(r.Totals))
	for k := range r.Totals {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		info(w, "%-14s %d", k, r.Totals[k])
	}

	fmt.Fprintln(w, paint("1", "Mutations"))
	for _, m := range r.Mutations {
		line := fmt.Sprintf("%-11s target=%d", m.Op, m.Target)
		if m.Parent != 0 {
			line += fmt.Sprintf(" parent=%d", m.Parent)
		}
		if m.Before != 0 {
			line += fmt.Sprintf(" before=%d", m.Before)
		}
		if m.Name != "" {
			line += fmt.Sprintf(" %s=%q", m.Name, m.Value)
		} else if m.Op == dom.OpText {
			line += fmt.Sprintf(" %q", m.Value)
		}
		info(w, "%s", line)
	}

	fmt.Fprintln(w, paint("1", "Result"))
	info(w, "%s", r.HTML)
	success(w, "%d mutations", len(r.Mutations))
}
