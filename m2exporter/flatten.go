package m2exporter

import (
	"fmt"
	"regexp"
	"strings"

	"oss.terrastruct.com/m2/lib/geo"
	"oss.terrastruct.com/m2/lib/svg"
	"oss.terrastruct.com/m2/m2scene"
)

// maxUseDepth bounds how many rounds of nested references are resolved. References that
// are still unresolved afterwards, such as mutually recursive ones, stay in place.
const maxUseDepth = 32

var urlRefRe = regexp.MustCompile(`url\(\s*['"]?#([^'")\s]+)['"]?\s*\)`)

// Flatten replaces every use element with a copy of the element it references and then
// drops defs containers nothing refers to anymore. References to missing elements and
// references to an ancestor of themselves are left in place. Flattening a flat
// document changes nothing.
func Flatten(root *m2scene.Node) {
	for i := 0; i < maxUseDepth; i++ {
		if !flattenPass(root) {
			break
		}
	}
	dropUnusedDefs(root)
}

func flattenPass(root *m2scene.Node) bool {
	uses := root.FindAll(func(n *m2scene.Node) bool {
		return n.Tag == "use"
	})
	resolved := false
	for _, use := range uses {
		target := root.FindByID(use.Href())
		if target == nil || target.Contains(use) {
			continue
		}
		use.ReplaceWith(instantiate(use, target))
		resolved = true
	}
	return resolved
}

// instantiate copies target for use. The copy's own attributes win over the ones of the
// reference, as they would when inherited through the use element. Transforms compose
// and x, y become a translation.
func instantiate(use, target *m2scene.Node) *m2scene.Node {
	c := target.Clone()
	c.Walk(func(n *m2scene.Node) bool {
		n.DelAttr("id")
		return true
	})
	if c.Tag == "symbol" {
		c.Tag = "g"
		for _, attr := range []string{"viewBox", "preserveAspectRatio", "refX", "refY"} {
			c.DelAttr(attr)
		}
	}

	transforms := make([]string, 0, 3)
	if t := use.Attr("transform"); t != "" {
		transforms = append(transforms, t)
	}
	x, y := useOffset(use)
	if x != 0 || y != 0 {
		transforms = append(transforms, fmt.Sprintf("translate(%s %s)", svg.Num(x), svg.Num(y)))
	}
	if t := c.Attr("transform"); t != "" {
		transforms = append(transforms, t)
	}
	if len(transforms) > 0 {
		c.SetAttr("transform", strings.Join(transforms, " "))
	}

	for _, a := range use.Attrs {
		switch a.Name {
		case "href", "xlink:href", "transform", "x", "y", "width", "height":
		case "id":
			c.SetAttr("id", a.Value)
		case "style":
			for _, d := range use.Declarations() {
				if _, ok := c.LookupStyle(d.Property); !ok {
					c.SetStyle(d.Property, d.Value)
				}
			}
		case "class":
			classes := use.Classes()
			for _, cl := range c.Classes() {
				if !use.HasClass(cl) {
					classes = append(classes, cl)
				}
			}
			c.SetAttr("class", strings.Join(classes, " "))
		default:
			if !c.HasAttr(a.Name) {
				c.SetAttr(a.Name, a.Value)
			}
		}
	}
	return c
}

func useOffset(use *m2scene.Node) (float64, float64) {
	x := attrFloat(use, "x")
	y := attrFloat(use, "y")
	p := geo.NewPoint(x, y)
	if !p.IsFinite() {
		return 0, 0
	}
	return x, y
}

// references collects every id referenced from outside skip, through href or url(#id).
func references(root, skip *m2scene.Node) map[string]struct{} {
	refs := make(map[string]struct{})
	root.Walk(func(n *m2scene.Node) bool {
		if skip != nil && n == skip {
			return false
		}
		for _, a := range n.Attrs {
			switch a.Name {
			case "href", "xlink:href":
				if strings.HasPrefix(a.Value, "#") {
					refs[a.Value[1:]] = struct{}{}
				}
			default:
				for _, m := range urlRefRe.FindAllStringSubmatch(a.Value, -1) {
					refs[m[1]] = struct{}{}
				}
			}
		}
		return true
	})
	return refs
}

// dropUnusedDefs removes defs containers whose content nothing outside of them refers
// to. A defs holding a stylesheet is kept.
func dropUnusedDefs(root *m2scene.Node) {
	defs := root.FindAll(func(n *m2scene.Node) bool {
		return n.Tag == "defs"
	})
	for _, d := range defs {
		if d.Root() != root {
			// Removed along with an enclosing defs.
			continue
		}
		hasStyle := len(d.FindAll(func(n *m2scene.Node) bool { return n.Tag == "style" })) > 0
		if hasStyle {
			continue
		}
		refs := references(root, d)
		used := false
		d.Walk(func(n *m2scene.Node) bool {
			if _, ok := refs[n.ID()]; ok && n.ID() != "" {
				used = true
			}
			return !used
		})
		if !used {
			d.Remove()
		}
	}
}
