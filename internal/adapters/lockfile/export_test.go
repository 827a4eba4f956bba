package lockfile

import "testing"

// SetRename replaces the commit step of Save for the duration of the test.
func SetRename(t *testing.T, fn func(oldpath, newpath string) error) {
	t.Helper()
	prev := rename
	rename = fn
	t.Cleanup(func() { rename = prev })
}
