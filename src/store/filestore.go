package store

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

var _ ObjectStore = (*FileStore)(nil)

// FileStore is an object store that maps keys to files under a root
// directory. It is the local stand-in for the cloud object store and, with
// afero.MemMapFs, the test double.
type FileStore struct {
	fs   afero.Fs
	root string
}

// NewFileStore creates a file-backed store rooted at root.
func NewFileStore(fs afero.Fs, root string) *FileStore {
	return &FileStore{fs: fs, root: root}
}

// Put writes a document at key, replacing any previous version.
func (f *FileStore) Put(ctx context.Context, key string, body []byte) error {
	p, err := f.keyPath(key)
	if err != nil {
		return err
	}
	if err := f.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	return afero.WriteFile(f.fs, p, body, 0o644)
}

// Get returns the document at key, or ErrNotFound.
func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := f.keyPath(key)
	if err != nil {
		return nil, err
	}
	body, err := afero.ReadFile(f.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return body, nil
}

// List returns all keys with the given prefix, sorted.
func (f *FileStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := afero.Walk(f.fs, f.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		key, relErr := filepath.Rel(f.root, p)
		if relErr != nil {
			return relErr
		}
		key = filepath.ToSlash(key)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// keyPath maps a key to a filesystem path, rejecting traversal outside the
// root.
func (f *FileStore) keyPath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(f.root, filepath.FromSlash(clean)), nil
}
