package prompt

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Extensions a file must carry to be read as a fragment.
var fragmentExts = []string{".md", ".txt"}

type fileStore struct {
	root string
}

// NewFileStore creates a Store backed by a directory. Keys map 1:1 to
// relative file paths under root. Hidden files and directories are skipped,
// as are files without a .md or .txt extension. A missing root lists as
// empty.
func NewFileStore(root string) Store {
	return &fileStore{root: root}
}

func (s *fileStore) List(_ context.Context) ([]string, error) {
	var keys []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.root {
				return fs.SkipAll
			}
			return err
		}

		if path != s.root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !slices.Contains(fragmentExts, filepath.Ext(d.Name())) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	slices.Sort(keys)
	return keys, nil
}

func (s *fileStore) Load(_ context.Context, keys ...string) ([]Fragment, error) {
	fragments := make([]Fragment, 0, len(keys))

	for _, key := range keys {
		path := filepath.Join(s.root, filepath.FromSlash(key))
		if !strings.HasPrefix(path, filepath.Clean(s.root)+string(filepath.Separator)) {
			return nil, fmt.Errorf("%w: %s", ErrFragmentNotFound, key)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrFragmentNotFound, key)
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
		}
		fragments = append(fragments, Fragment{Key: key, Text: string(data)})
	}

	return fragments, nil
}
