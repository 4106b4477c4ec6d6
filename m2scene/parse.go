package m2scene

import (
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var ErrNoSVG = errors.New("no svg element found")

// Parse reads markup and returns the first svg element as a detached tree. Namespaced
// attributes keep their prefix, so xlink:href survives the round trip. Text following a
// child element is kept as that child's Tail. Whitespace-only text is dropped.
func Parse(r io.Reader) (*Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	svgs := doc.Find("svg").First()
	if len(svgs.Nodes) == 0 {
		return nil, ErrNoSVG
	}
	return fromHTML(svgs.Nodes[0]), nil
}

func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

func fromHTML(h *html.Node) *Node {
	n := &Node{Tag: h.Data}
	for _, a := range h.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		n.SetAttr(name, a.Val)
	}
	var last *Node
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			last = fromHTML(c)
			last.Parent = n
			n.Children = append(n.Children, last)
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			if last != nil {
				last.Tail += c.Data
			} else {
				n.Text += c.Data
			}
		}
	}
	return n
}
