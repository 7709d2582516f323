// pkg/storage/atomicfile.go
package storage

import (
	"fmt"
	"os"
)

// AtomicWrite writes data to path + ".tmp" then renames, guaranteeing
// that either the file is fully written or not present at all. A
// half-restored backup is worse than no file.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// WriteOutput writes the recovered blob to path. Unless force is set it
// refuses to replace an existing file.
func WriteOutput(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("storage: %s already exists (use --force to overwrite)", path)
		}
	}
	return AtomicWrite(path, data, 0o644)
}
