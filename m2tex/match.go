package m2tex

import (
	"oss.terrastruct.com/m2/m2scene"
)

const (
	mmlNodeAttr = "data-mml-node"
	charAttr    = "data-c"
)

// Match finds every occurrence of candidate's expression in root. The expression is the
// children of candidate's math node, and an occurrence is a run of consecutive siblings
// in root that deep matches them in order. When the expression is a single token, such
// as a number, its glyphs also match as a run inside a longer token of the same kind, so
// "12" is found in "123" as two glyph handles. Matching is structural only and mutates
// neither tree.
func Match(root, candidate *m2scene.Node) [][]*m2scene.Node {
	if root == nil || candidate == nil {
		return nil
	}
	pattern := mathNode(candidate).Children
	if len(pattern) == 0 {
		return nil
	}
	var glyphs []*m2scene.Node
	if len(pattern) == 1 && isGlyphRun(pattern[0].Children) {
		glyphs = pattern[0].Children
	}

	var matches [][]*m2scene.Node
	root.Walk(func(n *m2scene.Node) bool {
		matches = appendRuns(matches, n.Children, pattern)
		if glyphs != nil && len(n.Children) > len(glyphs) && n.Attr(mmlNodeAttr) == pattern[0].Attr(mmlNodeAttr) {
			matches = appendRuns(matches, n.Children, glyphs)
		}
		return true
	})
	return matches
}

func appendRuns(matches [][]*m2scene.Node, siblings, pattern []*m2scene.Node) [][]*m2scene.Node {
	for start := 0; start+len(pattern) <= len(siblings); start++ {
		if matchRun(siblings[start:], pattern) {
			run := make([]*m2scene.Node, len(pattern))
			copy(run, siblings[start:])
			matches = append(matches, run)
		}
	}
	return matches
}

// isGlyphRun reports whether nodes are all leaf glyphs.
func isGlyphRun(nodes []*m2scene.Node) bool {
	if len(nodes) == 0 {
		return false
	}
	for _, n := range nodes {
		if _, ok := n.LookupAttr(mmlNodeAttr); ok || len(n.Children) > 0 {
			return false
		}
	}
	return true
}

func mathNode(n *m2scene.Node) *m2scene.Node {
	nodes := n.FindAll(func(c *m2scene.Node) bool {
		return c.Attr(mmlNodeAttr) == "math"
	})
	if len(nodes) == 0 {
		return n
	}
	return nodes[0]
}

func matchRun(siblings, pattern []*m2scene.Node) bool {
	for i, p := range pattern {
		if !deepMatch(siblings[i], p) {
			return false
		}
	}
	return true
}

func deepMatch(n, p *m2scene.Node) bool {
	if n.Attr(mmlNodeAttr) != p.Attr(mmlNodeAttr) {
		return false
	}
	if c, ok := p.LookupAttr(charAttr); ok && n.Attr(charAttr) != c {
		return false
	}
	if len(n.Children) != len(p.Children) {
		return false
	}
	return matchRun(n.Children, p.Children)
}
