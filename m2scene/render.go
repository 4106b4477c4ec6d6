package m2scene

import (
	"bytes"
	"io"
	"strings"

	"oss.terrastruct.com/m2/lib/svg"
)

const XMLHeader = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

// Render writes n as XML markup.
func (n *Node) Render(w io.Writer) error {
	buf := &bytes.Buffer{}
	n.render(buf)
	_, err := w.Write(buf.Bytes())
	return err
}

func (n *Node) String() string {
	buf := &bytes.Buffer{}
	n.render(buf)
	return buf.String()
}

func (n *Node) render(buf *bytes.Buffer) {
	buf.WriteByte('<')
	buf.WriteString(n.Tag)
	for _, a := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		buf.WriteString(svg.EscapeAttr(a.Value))
		buf.WriteByte('"')
	}
	if n.Text == "" && len(n.Children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	if n.Text != "" {
		if n.Tag == "style" && strings.ContainsAny(n.Text, "<>&") && !strings.Contains(n.Text, "]]>") {
			buf.WriteString("<![CDATA[")
			buf.WriteString(n.Text)
			buf.WriteString("]]>")
		} else {
			buf.WriteString(svg.EscapeText(n.Text))
		}
	}
	for _, c := range n.Children {
		c.render(buf)
		buf.WriteString(svg.EscapeText(c.Tail))
	}
	buf.WriteString("</")
	buf.WriteString(n.Tag)
	buf.WriteByte('>')
}
