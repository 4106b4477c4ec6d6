//go:build cgo

package m2tex

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"oss.terrastruct.com/xdefer"
	v8 "rogchap.com/v8go"
)

//go:embed polyfills.js
var polyfillsJS string

//go:embed setup.js
var setupJS string

// MathJax typesets with a MathJax bundle run in V8. It keeps one context for its whole
// lifetime and is not safe for concurrent use.
type MathJax struct {
	opts  MathJaxOptions
	v8ctx *v8.Context
}

func NewMathJax(opts *MathJaxOptions) (_ *MathJax, err error) {
	defer xdefer.Errorf(&err, "failed to load MathJax")

	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	bundle, err := os.ReadFile(o.Path)
	if err != nil {
		return nil, err
	}

	v8ctx := v8.NewContext()
	scripts := []struct {
		name string
		src  string
	}{
		{"polyfills.js", polyfillsJS},
		{"mathjax.js", string(bundle)},
		{"setup.js", setupJS},
	}
	for _, s := range scripts {
		if _, err := v8ctx.RunScript(s.src, s.name); err != nil {
			v8ctx.Close()
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return &MathJax{
		opts:  o,
		v8ctx: v8ctx,
	}, nil
}

func (mj *MathJax) Typeset(tex string) (_ *Tree, err error) {
	defer xdefer.Errorf(&err, "failed to typeset %q", tex)

	texJSON, err := json.Marshal(tex)
	if err != nil {
		return nil, err
	}
	val, err := mj.v8ctx.RunScript(fmt.Sprintf(`adaptor.innerHTML(html.convert(%s, {
  display: %t,
  em: %v,
  ex: %v,
}))`, texJSON, mj.opts.Display, mj.opts.PxPerEx*2, mj.opts.PxPerEx), "typeset.js")
	if err != nil {
		return nil, err
	}
	return ParseSVG(val.String(), mj.opts.PxPerEx)
}

func (mj *MathJax) Close() {
	iso := mj.v8ctx.Isolate()
	mj.v8ctx.Close()
	iso.Dispose()
}
