//go:build !cgo

package m2tex

import "errors"

// MathJax needs cgo for V8.
type MathJax struct{}

func NewMathJax(opts *MathJaxOptions) (*MathJax, error) {
	if _, err := opts.withDefaults(); err != nil {
		return nil, err
	}
	return nil, errors.New("MathJax requires a cgo build")
}

func (mj *MathJax) Typeset(tex string) (*Tree, error) {
	return nil, ErrUnavailable
}

func (mj *MathJax) Close() {}
