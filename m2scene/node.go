// Package m2scene implements the scene-graph node that every drawable renders into and
// that the export pipeline rewrites.
package m2scene

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

type Attr struct {
	Name  string
	Value string
}

// Node is an SVG element. Children are owned by the node and Parent is a back reference
// maintained by AppendChild, InsertAfter, Remove and ReplaceWith.
type Node struct {
	Tag      string
	Attrs    []Attr
	Children []*Node
	Parent   *Node

	// Text is character data rendered before the children, used by style, text and title.
	Text string
	// Tail is character data between n's end tag and its next sibling, as in the c of
	// <text>a<tspan>b</tspan>c</text>. It belongs to the parent's content, so it stays in
	// place when n is removed, moved or replaced, and is not cloned.
	Tail string
}

func New(tag string, attrs ...Attr) *Node {
	n := &Node{Tag: tag}
	for _, a := range attrs {
		n.SetAttr(a.Name, a.Value)
	}
	return n
}

func (n *Node) ID() string {
	return n.Attr("id")
}

func (n *Node) Attr(name string) string {
	v, _ := n.LookupAttr(name)
	return v
}

func (n *Node) LookupAttr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) HasAttr(name string) bool {
	_, ok := n.LookupAttr(name)
	return ok
}

// SetAttr sets name to value, keeping the attribute's position if it already exists.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

func (n *Node) DelAttr(name string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// Href returns the identifier referenced by href or xlink:href without the leading #.
func (n *Node) Href() string {
	href, ok := n.LookupAttr("href")
	if !ok {
		href = n.Attr("xlink:href")
	}
	return strings.TrimPrefix(href, "#")
}

func (n *Node) Classes() []string {
	return strings.Fields(n.Attr("class"))
}

func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// Declarations parses the inline style attribute. Malformed styles yield no declarations.
func (n *Node) Declarations() []*css.Declaration {
	s := n.Attr("style")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	decls, err := parser.ParseDeclarations(s)
	if err != nil {
		return nil
	}
	return decls
}

func (n *Node) Style(property string) string {
	v, _ := n.LookupStyle(property)
	return v
}

func (n *Node) LookupStyle(property string) (string, bool) {
	decls := n.Declarations()
	// Later declarations win.
	for i := len(decls) - 1; i >= 0; i-- {
		if decls[i].Property == property {
			return decls[i].Value, true
		}
	}
	return "", false
}

func (n *Node) SetStyle(property, value string) {
	decls := n.Declarations()
	found := false
	out := decls[:0]
	for _, d := range decls {
		if d.Property == property {
			if found {
				continue
			}
			found = true
			d.Value = value
			d.Important = false
		}
		out = append(out, d)
	}
	if !found {
		out = append(out, &css.Declaration{Property: property, Value: value})
	}
	n.setDeclarations(out)
}

func (n *Node) DelStyle(property string) {
	decls := n.Declarations()
	out := decls[:0]
	for _, d := range decls {
		if d.Property != property {
			out = append(out, d)
		}
	}
	n.setDeclarations(out)
}

func (n *Node) setDeclarations(decls []*css.Declaration) {
	if len(decls) == 0 {
		n.DelAttr("style")
		return
	}
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		s := d.Property + ":" + d.Value
		if d.Important {
			s += " !important"
		}
		parts = append(parts, s)
	}
	n.SetAttr("style", strings.Join(parts, ";"))
}

// Clone deep copies n. The clone is detached and its descendants point at their cloned
// parents.
func (n *Node) Clone() *Node {
	c := &Node{
		Tag:  n.Tag,
		Text: n.Text,
	}
	if n.Attrs != nil {
		c.Attrs = append([]Attr(nil), n.Attrs...)
	}
	for _, child := range n.Children {
		cc := child.Clone()
		cc.Tail = child.Tail
		cc.Parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// AppendChild moves child to the end of n's children.
func (n *Node) AppendChild(child *Node) {
	child.Remove()
	child.Parent = n
	n.Children = append(n.Children, child)
}

// InsertAfter places sibling right after n in n's parent.
func (n *Node) InsertAfter(sibling *Node) {
	if n.Parent == nil {
		return
	}
	sibling.Remove()
	p := n.Parent
	i := n.Index()
	p.Children = append(p.Children, nil)
	copy(p.Children[i+2:], p.Children[i+1:])
	p.Children[i+1] = sibling
	sibling.Parent = p
}

// Index returns n's position among its parent's children or -1 when detached.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	i := n.Index()
	if i >= 0 {
		p := n.Parent
		if i > 0 {
			p.Children[i-1].Tail += n.Tail
		} else {
			p.Text += n.Tail
		}
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	n.Parent = nil
	n.Tail = ""
}

// ReplaceWith puts m at n's position and detaches n.
func (n *Node) ReplaceWith(m *Node) {
	if n == m {
		return
	}
	p := n.Parent
	if p == nil {
		return
	}
	m.Remove()
	i := n.Index()
	p.Children[i] = m
	m.Parent = p
	m.Tail = n.Tail
	n.Parent = nil
	n.Tail = ""
}

func (n *Node) RemoveChildren() {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
}

// Walk visits n and its descendants depth-first in pre-order. Returning false from fn
// skips the node's children. fn may detach the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	children := append([]*Node(nil), n.Children...)
	for _, c := range children {
		c.Walk(fn)
	}
}

// FindAll returns every node in pre-order for which fn is true.
func (n *Node) FindAll(fn func(*Node) bool) []*Node {
	var nodes []*Node
	n.Walk(func(c *Node) bool {
		if fn(c) {
			nodes = append(nodes, c)
		}
		return true
	})
	return nodes
}

func (n *Node) FindByID(id string) *Node {
	if id == "" {
		return nil
	}
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.ID() == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// Contains reports whether m is n or one of its descendants.
func (n *Node) Contains(m *Node) bool {
	for ; m != nil; m = m.Parent {
		if m == n {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}
