package ports

import "iter"

// FileWalker enumerates the files below a directory.
//
//go:generate mockgen -source=walker.go -destination=mocks/mock_walker.go -package=mocks
type FileWalker interface {
	// WalkFiles yields slash-separated paths relative to root, skipping
	// version control directories and paths matching an ignore pattern.
	WalkFiles(root string, ignores []string) iter.Seq[string]
}
