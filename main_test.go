package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"

	"oss.terrastruct.com/m2/lib/log"
	"oss.terrastruct.com/m2/lib/version"
	"oss.terrastruct.com/m2/lib/xmain"
	"oss.terrastruct.com/m2/m2tex"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

func runMain(t *testing.T, stdin string, args ...string) (string, error) {
	env := xos.NewEnv(nil)
	stdout := &bytes.Buffer{}
	ms := xmain.NewState("m2", args, env, strings.NewReader(stdin), nopCloser{stdout}, nopCloser{io.Discard})
	ms.Log = cmdlog.NewTB(env, t)

	ctx := log.WithTB(context.Background(), t, nil)
	err := run(ctx, ms)
	return stdout.String(), err
}

const labelScene = `{"elements": [
  {"type": "point", "id": "a", "x": 0, "y": 0},
  {"type": "label", "id": "l", "tex": "x", "at": "a"}
]}`

const vectorScene = `{"elements": [
  {"type": "point", "id": "a", "x": 10, "y": 0},
  {"type": "vector", "id": "v", "to": "a"}
]}`

func TestRun(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		run  func(t *testing.T, dir string)
	}{
		{
			name: "json",
			run: func(t *testing.T, dir string) {
				in := filepath.Join(dir, "vector.json")
				assert.NoError(t, os.WriteFile(in, []byte(vectorScene), 0644))

				_, err := runMain(t, "", in)
				assert.NoError(t, err)

				out, err := os.ReadFile(filepath.Join(dir, "vector.svg"))
				assert.NoError(t, err)
				assert.True(t, strings.HasPrefix(string(out), "<?xml"))
				assert.Contains(t, string(out), `x2="6"`)
				assert.Contains(t, string(out), `class="marker marker-end"`)
				assert.NotContains(t, string(out), "url(#")
			},
		},
		{
			name: "stdio",
			run: func(t *testing.T, dir string) {
				stdout, err := runMain(t, vectorScene, "--trim=2", "-")
				assert.NoError(t, err)
				assert.Contains(t, stdout, `x2="8"`)
			},
		},
		{
			name: "svg",
			run: func(t *testing.T, dir string) {
				in := filepath.Join(dir, "icon.svg")
				assert.NoError(t, os.WriteFile(in, []byte(`<svg><defs><circle id="c" r="1"/></defs><use href="#c" x="2"/></svg>`), 0644))

				_, err := runMain(t, "", "-t", "figma", in)
				assert.NoError(t, err)

				out, err := os.ReadFile(filepath.Join(dir, "icon.export.svg"))
				assert.NoError(t, err)
				assert.NotContains(t, string(out), "<use")
				assert.Contains(t, string(out), `<circle r="1" transform="translate(2 0)"`)

				// The input is left alone.
				orig, err := os.ReadFile(in)
				assert.NoError(t, err)
				assert.Contains(t, string(orig), "<use")
			},
		},
		{
			name: "svg_stdin",
			run: func(t *testing.T, dir string) {
				stdout, err := runMain(t, `<svg><line x2="1"/></svg>`, "-")
				assert.NoError(t, err)
				assert.Contains(t, stdout, `<line x2="1"`)
			},
		},
		{
			name: "output_path",
			run: func(t *testing.T, dir string) {
				in := filepath.Join(dir, "in.json")
				out := filepath.Join(dir, "out.svg")
				assert.NoError(t, os.WriteFile(in, []byte(`{"elements": []}`), 0644))

				_, err := runMain(t, "", in, out)
				assert.NoError(t, err)
				_, err = os.Stat(out)
				assert.NoError(t, err)
			},
		},
		{
			name: "compile_error",
			run: func(t *testing.T, dir string) {
				_, err := runMain(t, `{"elements": [{"type": "hexagon"}]}`, "-")
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "hexagon")
			},
		},
		{
			name: "mathjax_unavailable",
			run: func(t *testing.T, dir string) {
				stdout := &bytes.Buffer{}
				stderr := &bytes.Buffer{}
				args := []string{"--mathjax=" + filepath.Join(dir, "missing.js"), "-"}
				ms := xmain.NewState("m2", args, xos.NewEnv(nil), strings.NewReader(labelScene), nopCloser{stdout}, nopCloser{stderr})

				err := run(context.Background(), ms)
				assert.True(t, errors.Is(err, m2tex.ErrUnavailable), err)
				assert.Contains(t, stderr.String(), "TeX labels will fail to render")
			},
		},
		{
			name: "bad_target",
			run: func(t *testing.T, dir string) {
				_, err := runMain(t, vectorScene, "--target=inkscape", "-")
				var uerr xmain.UsageError
				assert.True(t, errors.As(err, &uerr), err)
			},
		},
		{
			name: "too_many_args",
			run: func(t *testing.T, dir string) {
				_, err := runMain(t, "", "a.json", "b.svg", "c.svg")
				var uerr xmain.UsageError
				assert.True(t, errors.As(err, &uerr), err)
			},
		},
		{
			name: "watch_stdin",
			run: func(t *testing.T, dir string) {
				_, err := runMain(t, "", "-w", "-")
				var uerr xmain.UsageError
				assert.True(t, errors.As(err, &uerr), err)
			},
		},
		{
			name: "version",
			run: func(t *testing.T, dir string) {
				stdout, err := runMain(t, "", "--version")
				assert.NoError(t, err)
				assert.Equal(t, version.Version+"\n", stdout)

				stdout, err = runMain(t, "", "version")
				assert.NoError(t, err)
				assert.Equal(t, version.Version+"\n", stdout)
			},
		},
		{
			name: "help",
			run: func(t *testing.T, dir string) {
				stdout, err := runMain(t, "")
				assert.NoError(t, err)
				assert.Contains(t, stdout, "Usage:")
				assert.Contains(t, stdout, "$M2_TARGET")

				stdout, err = runMain(t, "", "--help")
				assert.NoError(t, err)
				assert.Contains(t, stdout, "--trim")
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tc.run(t, t.TempDir())
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-", defaultOutputPath("-"))
	assert.Equal(t, "a/scene.svg", defaultOutputPath("a/scene.json"))
	assert.Equal(t, "scene.svg", defaultOutputPath("scene"))
	assert.Equal(t, "icon.export.svg", defaultOutputPath("icon.svg"))
	assert.Equal(t, "icon.export.svg", defaultOutputPath("icon.SVG"))
}
