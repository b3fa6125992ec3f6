package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStore reads objects from the local filesystem. A prefix that is not
// an existing path matches every sibling whose name starts with it, the way
// an S3 key prefix does.
type LocalStore struct{}

var _ Store = (*LocalStore)(nil)

func NewLocalStore() *LocalStore { return &LocalStore{} }

// LocalPath converts a file:// URI or plain path to a filesystem path.
func LocalPath(uri string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(uri), "file://") {
		return filepath.Clean(uri), nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid file URI %q: %w", uri, err)
	}
	return filepath.Clean(filepath.FromSlash(u.Host + u.Path)), nil
}

func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	root, err := LocalPath(prefix)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	switch {
	case err == nil && !info.IsDir():
		return []string{root}, nil
	case err == nil:
		return walkFiles(root)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	dir, base := filepath.Split(root)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), base) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if !e.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := walkFiles(p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	sort.Strings(out)
	return out, nil
}

func (s *LocalStore) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	path, err := LocalPath(uri)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func walkFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
