// Package diff compares test output against expectation files kept in testdata.
package diff

import (
	"fmt"
	"os"
	"path/filepath"

	"oss.terrastruct.com/diff"
)

// Testdata compares got against path.exp<ext>. A missing expectation diffs against
// nothing and fails like any other mismatch. Set $TESTDATA_ACCEPT to record got as the
// new expectation.
func Testdata(path, ext string, got []byte) (err error) {
	expPath := fmt.Sprintf("%s.exp%s", path, ext)
	gotPath := fmt.Sprintf("%s.got%s", path, ext)

	err = os.MkdirAll(filepath.Dir(gotPath), 0755)
	if err != nil {
		return err
	}
	err = os.WriteFile(gotPath, got, 0600)
	if err != nil {
		return err
	}

	ds, err := diff.Files(expPath, gotPath)
	if err != nil {
		return err
	}
	if ds != "" {
		if os.Getenv("TESTDATA_ACCEPT") != "" {
			return os.Rename(gotPath, expPath)
		}
		return fmt.Errorf("diff (rerun with $TESTDATA_ACCEPT=1 to accept):\n%s", ds)
	}
	return os.Remove(gotPath)
}
