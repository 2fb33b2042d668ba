package dom

import (
	"html"
	"strings"
)

// OuterHTML serializes n and its subtree. Comments render as <!--data-->.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for _, c := range n.children {
		c.writeHTML(&b)
	}
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	switch n.typ {
	case TextNode:
		b.WriteString(html.EscapeString(n.data))
	case CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.data)
		b.WriteString("-->")
	case DocumentNode:
		for _, c := range n.children {
			c.writeHTML(b)
		}
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.tag)
		for _, k := range n.AttributeNames() {
			v := n.attrs[k]
			b.WriteByte(' ')
			b.WriteString(k)
			if v != "" {
				b.WriteString(`="`)
				b.WriteString(html.EscapeString(v))
				b.WriteByte('"')
			}
		}
		b.WriteByte('>')
		if voidElements[n.tag] {
			return
		}
		for _, c := range n.children {
			c.writeHTML(b)
		}
		b.WriteString("</")
		b.WriteString(n.tag)
		b.WriteByte('>')
	}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}
