package m2scene

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Document mirrors a tree as html nodes so that CSS selectors can be matched against it.
// The mirror is a snapshot and must be rebuilt after structural changes.
type Document struct {
	root  *html.Node
	nodes map[*html.Node]*Node
}

func NewDocument(root *Node) *Document {
	d := &Document{
		nodes: make(map[*html.Node]*Node),
	}
	d.root = d.mirror(root)
	return d
}

func (d *Document) mirror(n *Node) *html.Node {
	h := &html.Node{
		Type: html.ElementNode,
		Data: n.Tag,
	}
	for _, a := range n.Attrs {
		h.Attr = append(h.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	d.nodes[h] = n
	for _, c := range n.Children {
		h.AppendChild(d.mirror(c))
	}
	return h
}

// Select returns the nodes matched by m in document order.
func (d *Document) Select(m cascadia.Matcher) []*Node {
	var out []*Node
	var walk func(h *html.Node)
	walk = func(h *html.Node) {
		if m.Match(h) {
			out = append(out, d.nodes[h])
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return out
}
