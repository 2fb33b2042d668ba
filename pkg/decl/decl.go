// Package decl reads declared trees from YAML documents and builds weave
// nodes from them.
//
//	children:
//	  - tag: ul
//	    props: {class: todo}
//	    children:
//	      - {tag: li, key: 1, text: write}
//	      - {tag: li, key: 2, text: test}
//	  - text: "2 items"
//
// An entry with a tag is an element, an entry with only text is a text
// node, and an entry with neither is a fragment of its children.
package decl

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/weave"
)

// Document is a declared child list.
type Document struct {
	Children []Decl `yaml:"children"`
}

// Decl is one declared node.
type Decl struct {
	Tag           string         `yaml:"tag,omitempty"`
	Key           any            `yaml:"key,omitempty"`
	Props         map[string]any `yaml:"props,omitempty"`
	Text          *string        `yaml:"text,omitempty"`
	Children      []Decl         `yaml:"children,omitempty"`
	OutsideEffect bool           `yaml:"outside_effect,omitempty"`
}

// Parse decodes and validates a document. Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.CodeInvalidDocument).Wrap(err)
	}
	for i := range doc.Children {
		if err := doc.Children[i].validate(fmt.Sprintf("children[%d]", i)); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

// Load reads and parses a document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidDocument).WithDetail(path).Wrap(err)
	}
	doc, err := Parse(data)
	if err != nil {
		var we *errors.WeaveError
		if stderrors.As(err, &we) && we.Detail == "" {
			we.Detail = path
		}
		return nil, err
	}
	return doc, nil
}

func (d *Decl) validate(path string) error {
	if d.Tag != "" && d.Text != nil && len(d.Children) > 0 {
		return errors.New(errors.CodeInvalidDocument).
			WithDetailf("%s: text and children are exclusive", path)
	}
	if d.Tag == "" && d.Text != nil && len(d.Children) > 0 {
		return errors.New(errors.CodeInvalidDocument).
			WithDetailf("%s: a text node has no children", path)
	}
	if d.Tag == "" && len(d.Props) > 0 {
		return errors.New(errors.CodeInvalidDocument).
			WithDetailf("%s: props need a tag", path)
	}
	for i := range d.Children {
		if err := d.Children[i].validate(fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// Nodes builds fresh nodes for the document children.
func (doc *Document) Nodes() []any {
	out := make([]any, len(doc.Children))
	for i := range doc.Children {
		out[i] = doc.Children[i].Node()
	}
	return out
}

// Node builds a fresh node for d.
func (d *Decl) Node() *weave.Node {
	var n *weave.Node
	switch {
	case d.Tag == "" && d.Text != nil:
		n = weave.Text(*d.Text)
	case d.Tag == "":
		n = weave.Fragment(d.children()...)
	default:
		props := make(weave.Props, len(d.Props)+1)
		for k, v := range d.Props {
			props[k] = v
		}
		if d.Text != nil {
			n = weave.H(d.Tag, props, *d.Text)
		} else {
			n = weave.H(d.Tag, props, d.children()...)
		}
	}
	if d.Key != nil {
		n.WithKey(d.Key)
	}
	if d.OutsideEffect {
		n.WithOutsideEffect()
	}
	return n
}

func (d *Decl) children() []any {
	out := make([]any, len(d.Children))
	for i := range d.Children {
		out[i] = d.Children[i].Node()
	}
	return out
}

// Marshal encodes doc back to YAML.
func Marshal(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}
