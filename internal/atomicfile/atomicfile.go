// Package atomicfile replaces files by writing a sibling temp file and
// renaming it over the target.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultPerm os.FileMode = 0o644

// WriteFile replaces path with data. Readers see either the old content or
// the new content, never a partial write.
//
// A zero perm keeps the mode of the existing file, or uses 0644 for a new one.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		perm = existingPerm(path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := fill(tmp, data, perm); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := replace(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Update reads path, passes its content to edit and writes the result back
// with WriteFile, keeping the file mode. Nothing is written when edit fails.
func Update(path string, edit func(old []byte) ([]byte, error)) error {
	old, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data, err := edit(old)
	if err != nil {
		return err
	}
	return WriteFile(path, data, 0)
}

func existingPerm(path string) os.FileMode {
	if st, err := os.Stat(path); err == nil {
		return st.Mode().Perm()
	}
	return defaultPerm
}

// fill writes data to tmp, syncs and closes it.
func fill(tmp *os.File, data []byte, perm os.FileMode) error {
	// Chmod is unsupported on some filesystems.
	_ = tmp.Chmod(perm)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}

// replace renames src over dst. Windows refuses to rename onto an existing
// file, so a failed rename is retried once after removing dst.
func replace(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	_ = os.Remove(dst)
	if os.Rename(src, dst) != nil {
		return err
	}
	return nil
}
