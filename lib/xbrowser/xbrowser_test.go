package xbrowser

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/xos"
)

func TestOpenFile(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}

	dir := t.TempDir()
	fp := filepath.Join(dir, "out file.svg")
	got := filepath.Join(dir, "got")

	env := xos.NewEnv(nil)
	env.Setenv("BROWSER", "printf %s >"+got)
	err := OpenFile(context.Background(), env, fp)
	assert.NoError(t, err)

	b, err := os.ReadFile(got)
	assert.NoError(t, err)
	exp, err := fileURL(fp)
	assert.NoError(t, err)
	assert.Equal(t, exp, string(b))
	assert.Contains(t, exp, "out%20file.svg")
}

func TestOpenFileDisabled(t *testing.T) {
	t.Parallel()

	env := xos.NewEnv(nil)
	env.Setenv("BROWSER", "0")
	assert.NoError(t, OpenFile(context.Background(), env, "x.svg"))
}
