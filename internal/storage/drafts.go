package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DraftDir stores rendered drafts as files in one directory (_posts).
type DraftDir struct {
	dir string
}

func NewDraftDir(dir string) *DraftDir {
	return &DraftDir{dir: dir}
}

func (d *DraftDir) Path(name string) string {
	return filepath.Join(d.dir, name)
}

func (d *DraftDir) Exists(name string) (bool, error) {
	_, err := os.Stat(d.Path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat draft %s: %w", name, err)
}

func (d *DraftDir) Read(name string) (string, error) {
	data, err := os.ReadFile(d.Path(name))
	if err != nil {
		return "", fmt.Errorf("read draft %s: %w", name, err)
	}
	return string(data), nil
}

func (d *DraftDir) Write(name, content string) error {
	return WriteFileAtomic(d.Path(name), []byte(content), 0o644)
}

// List returns the .md file names that start with prefix, sorted.
func (d *DraftDir) List(prefix string) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".md") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
