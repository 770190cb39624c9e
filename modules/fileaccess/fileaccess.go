package fileaccess

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrOutsideRoot = errors.New("path escapes root directory")

// FileAccess reads files below a root directory. Paths are slash separated
// and relative to the root.
type FileAccess struct {
	root string
}

func New(root string) *FileAccess {
	return &FileAccess{root: root}
}

func (fa *FileAccess) Root() string {
	return fa.root
}

// Resolve maps a relative slash path to a filesystem path below the root.
func (fa *FileAccess) Resolve(path string) (string, error) {
	clean := filepath.FromSlash(strings.TrimPrefix(path, "/"))
	if clean == "" {
		clean = "."
	}
	if !filepath.IsLocal(clean) && clean != "." {
		return "", fmt.Errorf("%q: %w", path, ErrOutsideRoot)
	}
	return filepath.Join(fa.root, clean), nil
}

// Read reads entire file content
func (fa *FileAccess) Read(path string) ([]byte, error) {
	full, err := fa.Resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: full, Err: fs.ErrNotExist}
	}

	buf := make([]byte, stat.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Open returns the file for streaming through http.ServeContent.
func (fa *FileAccess) Open(path string) (*os.File, error) {
	full, err := fa.Resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (fa *FileAccess) Stat(path string) (os.FileInfo, error) {
	full, err := fa.Resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Stat(full)
}

// List returns the names of regular files directly under dir with the given
// extension, sorted.
func (fa *FileAccess) List(dir, ext string) ([]string, error) {
	full, err := fa.Resolve(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == ext {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
