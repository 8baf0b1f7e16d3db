package atomicfile

import (
	"os"
	"path/filepath"

	"golang.org/x/xerrors"
)

// WriteFile writes data to a temporary file next to path and renames it over
// path once everything has been flushed. On failure the temporary file is
// removed and path is left untouched. The destination directory must exist.
func WriteFile(path string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return xerrors.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return xerrors.Errorf("failed to write %s: %w", tmp, err)
	}
	if err = f.Sync(); err != nil {
		return xerrors.Errorf("failed to sync %s: %w", tmp, err)
	}
	if err = f.Chmod(perm); err != nil {
		return xerrors.Errorf("failed to chmod %s: %w", tmp, err)
	}
	if err = f.Close(); err != nil {
		return xerrors.Errorf("failed to close %s: %w", tmp, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return xerrors.Errorf("failed to rename %s to %s: %w", tmp, path, err)
	}
	return nil
}
