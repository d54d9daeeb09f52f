// Package rename moves a file to a new name without ever replacing an
// existing file.
package rename

import (
	"errors"
	"fmt"
	"os"

	"github.com/joseph-ayodele/docnamer/internal/common"
)

// IfAbsent renames oldPath to newPath unless newPath exists. The existence
// check and the claim of newPath are a single atomic step: a hard link where
// the filesystem supports it, else an exclusive create that is then replaced
// by the rename. A collision returns an error wrapping common.ErrTargetExists.
func IfAbsent(oldPath, newPath string) error {
	if oldPath == newPath {
		return nil
	}
	if _, err := os.Lstat(oldPath); err != nil {
		return fmt.Errorf("rename source: %w", err)
	}

	err := os.Link(oldPath, newPath)
	switch {
	case err == nil:
		if err := os.Remove(oldPath); err != nil {
			// undo the link so the file keeps a single name
			_ = os.Remove(newPath)
			return fmt.Errorf("remove old name: %w", err)
		}
		return nil
	case errors.Is(err, os.ErrExist):
		return fmt.Errorf("%w: %s", common.ErrTargetExists, newPath)
	}

	// Hard links unsupported (FAT, some network mounts): claim the name first.
	f, cerr := os.OpenFile(newPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if cerr != nil {
		if errors.Is(cerr, os.ErrExist) {
			return fmt.Errorf("%w: %s", common.ErrTargetExists, newPath)
		}
		return fmt.Errorf("claim target: %w (link: %v)", cerr, err)
	}
	_ = f.Close()
	if err := os.Rename(oldPath, newPath); err != nil {
		_ = os.Remove(newPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
