// Package xbrowser opens exports in the user's browser.
package xbrowser

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"

	"github.com/pkg/browser"

	"oss.terrastruct.com/xos"
)

// OpenFile opens the local file fp. $BROWSER, when set, is run through sh with the URL as
// its argument; BROWSER=0 disables opening altogether.
func OpenFile(ctx context.Context, env *xos.Env, fp string) error {
	u, err := fileURL(fp)
	if err != nil {
		return err
	}

	cmdline := env.Getenv("BROWSER")
	switch cmdline {
	case "":
		return browser.OpenURL(u)
	case "0":
		return nil
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline+` "$1"`, "--", u)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to run $BROWSER %q (out: %q): %w", cmdline, out, err)
	}
	return nil
}

func fileURL(fp string) (string, error) {
	abs, err := filepath.Abs(fp)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
