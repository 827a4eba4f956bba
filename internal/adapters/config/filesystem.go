package config

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is what discovery needs from the disk.
type FileSystem interface {
	// IsFile reports whether path names a regular file.
	IsFile(path string) bool
	ReadFile(path string) ([]byte, error)
}

type osFS struct{}

func (osFS) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (osFS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- discovery only reads lockmap.yaml and package.json
	return os.ReadFile(path)
}

// RootedFS serves an fs.FS as if it were mounted at Root. Paths outside
// Root do not exist.
type RootedFS struct {
	FS   fs.FS
	Root string
}

// NewRootedFS mounts fsys at root.
func NewRootedFS(root string, fsys fs.FS) *RootedFS {
	return &RootedFS{FS: fsys, Root: filepath.Clean(root)}
}

// IsFile reports whether path names a regular file under Root.
func (r *RootedFS) IsFile(path string) bool {
	name, ok := r.name(path)
	if !ok {
		return false
	}
	info, err := fs.Stat(r.FS, name)
	return err == nil && info.Mode().IsRegular()
}

// ReadFile reads path relative to Root.
func (r *RootedFS) ReadFile(path string) ([]byte, error) {
	name, ok := r.name(path)
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	return fs.ReadFile(r.FS, name)
}

func (r *RootedFS) name(path string) (string, bool) {
	rel, err := filepath.Rel(r.Root, filepath.Clean(path))
	if err != nil || !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
