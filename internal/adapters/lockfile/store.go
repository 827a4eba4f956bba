// Package lockfile persists the dependency graph and the synthesized import map.
package lockfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.LockStore on the project directory. It remembers
// the fingerprint of every file it reads or writes, so saving unchanged
// content does not touch the disk.
type Store struct {
	mu           sync.Mutex
	fingerprints map[string]uint64
}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{fingerprints: make(map[string]uint64)}
}

// rename is swapped in tests to fail the commit of a single file.
var rename = os.Rename

// LoadGraph reads and validates the project lockfile.
func (s *Store) LoadGraph(project *domain.Project) (*domain.DependencyGraph, error) {
	path := project.Path(project.Settings.Lockfile)
	data, err := s.read(path)
	if err != nil || data == nil {
		return nil, err
	}

	graph := domain.NewDependencyGraph()
	if err := json.Unmarshal(data, graph); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockUnmarshalFailed.Error()), "file", path)
	}
	if err := graph.Validate(); err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return graph, nil
}

// LoadImportMap reads the import map output of the project.
func (s *Store) LoadImportMap(project *domain.Project) (*domain.ImportMap, error) {
	path := project.Path(project.Settings.Output)
	data, err := s.read(path)
	if err != nil || data == nil {
		return nil, err
	}

	m, err := domain.ParseImportMap(data)
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return m, nil
}

// Save writes the lockfile and the import map. A nil importMap leaves the
// output untouched. Both files are staged before either is replaced, and
// a failed replacement restores the files already committed, so a failed
// save leaves the previous pair on disk.
func (s *Store) Save(project *domain.Project, graph *domain.DependencyGraph, importMap *domain.ImportMap) (bool, error) {
	lock, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrLockMarshalFailed.Error())
	}
	lock = append(lock, '\n')
	files := []pendingFile{{path: project.Path(project.Settings.Lockfile), data: lock}}

	if importMap != nil {
		out, err := importMap.Marshal()
		if err != nil {
			return false, zerr.Wrap(err, domain.ErrLockMarshalFailed.Error())
		}
		files = append(files, pendingFile{path: project.Path(project.Settings.Output), data: out})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var staged []*pendingFile
	defer func() {
		for _, f := range staged {
			f.discard()
		}
	}()
	for i := range files {
		f := &files[i]
		changed, err := s.stage(f)
		if err != nil {
			return false, err
		}
		if changed {
			staged = append(staged, f)
		}
	}

	for i, f := range staged {
		if err := rename(f.tmp, f.path); err != nil {
			for _, done := range staged[:i] {
				done.restore()
			}
			return false, zerr.With(zerr.Wrap(err, domain.ErrLockWriteFailed.Error()), "file", f.path)
		}
		f.tmp = ""
	}
	for _, f := range staged {
		s.fingerprints[f.path] = xxhash.Sum64(f.data)
	}
	return len(staged) > 0, nil
}

// pendingFile is one file of a save: its new content, the temporary file
// holding it until commit and the content it replaces.
type pendingFile struct {
	path     string
	data     []byte
	tmp      string
	previous []byte
	existed  bool
}

// stage writes f to a temporary file next to its target. Unchanged content
// is not staged. Callers hold s.mu.
func (s *Store) stage(f *pendingFile) (bool, error) {
	if sum, ok := s.fingerprints[f.path]; ok && sum == xxhash.Sum64(f.data) {
		if info, err := os.Stat(f.path); err == nil && info.Mode().IsRegular() && info.Size() == int64(len(f.data)) {
			return false, nil
		}
	}
	existing, err := readOptional(f.path)
	if err != nil {
		return false, err
	}
	if existing != nil && bytes.Equal(existing, f.data) {
		s.fingerprints[f.path] = xxhash.Sum64(existing)
		return false, nil
	}
	f.previous, f.existed = existing, existing != nil

	tmp, err := writeTemp(f.path, f.data)
	if err != nil {
		return false, err
	}
	f.tmp = tmp
	return true, nil
}

// discard removes the temporary file of an uncommitted stage.
func (f *pendingFile) discard() {
	if f.tmp != "" {
		_ = os.Remove(f.tmp)
	}
}

// restore puts back what a committed file replaced.
func (f *pendingFile) restore() {
	if !f.existed {
		_ = os.Remove(f.path)
		return
	}
	if tmp, err := writeTemp(f.path, f.previous); err == nil {
		if rename(tmp, f.path) != nil {
			_ = os.Remove(tmp)
		}
	}
}

// read loads an optional file and remembers its fingerprint.
func (s *Store) read(path string) ([]byte, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return data, err
	}
	s.mu.Lock()
	s.fingerprints[path] = xxhash.Sum64(data)
	s.mu.Unlock()
	return data, nil
}

// readOptional returns nil, nil for a missing file.
func readOptional(path string) ([]byte, error) {
	//nolint:gosec // Path is derived from the project root and its settings
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockReadFailed.Error()), "file", path)
	}
	return data, nil
}

// writeTemp writes data to a new temporary file in the directory of path
// and returns its name.
func writeTemp(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrLockWriteFailed.Error()), "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, fmt.Sprintf(".%s-*", filepath.Base(path)))
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrLockWriteFailed.Error()), "file", path)
	}
	name := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(domain.FilePerm)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(name)
		return "", zerr.With(zerr.Wrap(err, domain.ErrLockWriteFailed.Error()), "file", path)
	}
	return name, nil
}
