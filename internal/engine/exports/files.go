package exports

import (
	"slices"
	"strings"
)

// FileSet is the set of files a package actually contains, as paths
// relative to the package root without a leading "./".
type FileSet struct {
	files []string
	index map[string]struct{}
}

// NewFileSet builds a set from paths. A leading "./" or "/" is ignored.
func NewFileSet(paths []string) *FileSet {
	fs := &FileSet{index: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		p = normalizeFile(p)
		if p == "" {
			continue
		}
		if _, ok := fs.index[p]; ok {
			continue
		}
		fs.index[p] = struct{}{}
		fs.files = append(fs.files, p)
	}
	slices.Sort(fs.files)
	return fs
}

// Has reports whether target exists. Target may carry a "./" prefix.
func (fs *FileSet) Has(target string) bool {
	_, ok := fs.index[normalizeFile(target)]
	return ok
}

// HasPrefix reports whether any file lives below the folder target.
func (fs *FileSet) HasPrefix(target string) bool {
	prefix := normalizeFile(target)
	i, _ := slices.BinarySearch(fs.files, prefix)
	return i < len(fs.files) && strings.HasPrefix(fs.files[i], prefix)
}

// Len returns the number of files.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Files returns the paths in sorted order.
func (fs *FileSet) Files() []string {
	return slices.Clone(fs.files)
}

func normalizeFile(p string) string {
	p = strings.TrimPrefix(p, "./")
	return strings.TrimLeft(p, "/")
}
