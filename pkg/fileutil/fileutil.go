package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// WriteFileAtomic streams r into a temporary file next to path, syncs it and renames it over path.
// Readers see either the old file or the complete new one.
func WriteFileAtomic(path string, r io.Reader, mode os.FileMode) (int64, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		return written, err
	}
	if err := tmp.Sync(); err != nil {
		return written, err
	}
	if err := tmp.Close(); err != nil {
		return written, err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return written, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return written, err
	}
	committed = true
	return written, nil
}

// Exists reports whether path exists and is a regular file
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CopyToDir copies src into dir under a fresh name <prefix>-<uuid><ext> and returns the new path.
// The source is left untouched.
func CopyToDir(src, dir, prefix string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filepath.Base(src), err)
	}
	defer in.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	dst := filepath.Join(dir, prefix+"-"+uuid.NewString()+strings.ToLower(filepath.Ext(src)))
	if _, err := WriteFileAtomic(dst, in, 0644); err != nil {
		return "", fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	return dst, nil
}
