// Package store implements the in-memory virtual file store that the
// pipeline threads through every stage. Files are keyed by normalized
// forward-slash paths; the store preserves insertion order for
// deterministic iteration, though output ordering always derives from
// metadata rather than insertion order.
package store

import (
	"fmt"
	"strings"
)

// File is a single entry in the store: a path, raw contents, and a
// heterogeneous metadata map. SourcePath records the key the file was
// originally loaded under, before any path-rewriting stage ran.
type File struct {
	Path       string
	Contents   []byte
	Metadata   map[string]any
	SourcePath string
}

// NewFile creates a File with an initialized metadata map. The path is
// normalized and also recorded as the SourcePath.
func NewFile(path string, contents []byte) *File {
	p := NormalizePath(path)
	return &File{
		Path:       p,
		Contents:   contents,
		Metadata:   make(map[string]any),
		SourcePath: p,
	}
}

// Clone returns a deep-enough copy of the file for snapshotting: contents
// are shared (stages replace, never splice, the byte slice) but the
// metadata map is copied one level deep.
func (f *File) Clone() *File {
	meta := make(map[string]any, len(f.Metadata))
	for k, v := range f.Metadata {
		meta[k] = v
	}
	return &File{
		Path:       f.Path,
		Contents:   f.Contents,
		Metadata:   meta,
		SourcePath: f.SourcePath,
	}
}

// NormalizePath converts a path to the store's canonical key form:
// forward slashes, no leading slash, no empty/"."/".." segments.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, seg := range parts {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	return strings.Join(out, "/")
}

// Store is an ordered mapping from path to File. Keys are unique;
// Set preserves the position of an existing key and appends new keys.
type Store struct {
	files map[string]*File
	order []string
}

// New creates an empty Store.
func New() *Store {
	return &Store{files: make(map[string]*File)}
}

// Get returns the file under the given key, or nil if absent.
func (s *Store) Get(path string) *File {
	return s.files[NormalizePath(path)]
}

// Has reports whether a file exists under the given key.
func (s *Store) Has(path string) bool {
	_, ok := s.files[NormalizePath(path)]
	return ok
}

// Set inserts or replaces the file under the given key and updates
// file.Path to match the key.
func (s *Store) Set(path string, f *File) {
	key := NormalizePath(path)
	if _, exists := s.files[key]; !exists {
		s.order = append(s.order, key)
	}
	f.Path = key
	s.files[key] = f
}

// Delete removes the file under the given key. It is a no-op for keys
// that are not present.
func (s *Store) Delete(path string) {
	key := NormalizePath(path)
	if _, ok := s.files[key]; !ok {
		return
	}
	delete(s.files, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Rename moves a file from oldPath to newPath, updating file.Path.
// Renaming onto an occupied key replaces the occupant. It returns an
// error if no file exists under oldPath.
func (s *Store) Rename(oldPath, newPath string) error {
	oldKey := NormalizePath(oldPath)
	f, ok := s.files[oldKey]
	if !ok {
		return fmt.Errorf("store: rename %q: no such file", oldPath)
	}
	s.Delete(oldKey)
	s.Set(newPath, f)
	return nil
}

// Len returns the number of files in the store.
func (s *Store) Len() int {
	return len(s.files)
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Files returns the files in insertion order. The returned slice is a
// copy; the files themselves are shared.
func (s *Store) Files() []*File {
	files := make([]*File, 0, len(s.order))
	for _, k := range s.order {
		files = append(files, s.files[k])
	}
	return files
}
