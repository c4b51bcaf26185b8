//go:build !windows

package synchronizer

import (
	"os"

	"github.com/google/renameio/v2"
)

// writeFile replaces path atomically: readers see the old or the new
// content, never a partial file. The result always carries perm, including
// when it replaces an existing file with different permissions.
func writeFile(path string, data []byte, perm os.FileMode) error {
	t, err := renameio.NewPendingFile(path, renameio.WithStaticPermissions(perm))
	if err != nil {
		return err
	}
	defer t.Cleanup()

	if _, err := t.Write(data); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}
