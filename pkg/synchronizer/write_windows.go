//go:build windows

package synchronizer

import "os"

// renameio does not support windows; fall back to truncate-and-write.
func writeFile(path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return err
	}
	return os.Chmod(path, perm)
}
