package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/concordia247/drafts/internal/news"
)

// seenDocument is the on-disk shape of the seen ledger.
type seenDocument struct {
	URLs []string `json:"urls"`
}

// FileSeenStore keeps the seen set in a JSON document, usually
// _data/seen.json in the site repository.
type FileSeenStore struct {
	filePath string
}

func NewFileSeenStore(filePath string) *FileSeenStore {
	return &FileSeenStore{filePath: filePath}
}

// Load reads the ledger. A missing or empty file is an empty set. Both
// {"urls": [...]} and a bare JSON array are accepted.
func (fs *FileSeenStore) Load(_ context.Context) (news.SeenSet, error) {
	data, err := os.ReadFile(fs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return news.NewSeenSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seen file: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return news.NewSeenSet(), nil
	}

	var urls []string
	if data[0] == '[' {
		if err := json.Unmarshal(data, &urls); err != nil {
			return nil, fmt.Errorf("parse seen file: %w", err)
		}
	} else {
		var doc seenDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse seen file: %w", err)
		}
		urls = doc.URLs
	}
	return news.NewSeenSet(urls...), nil
}

// Save writes the full set, sorted, replacing the file atomically.
func (fs *FileSeenStore) Save(_ context.Context, seen news.SeenSet) error {
	data, err := json.MarshalIndent(seenDocument{URLs: seen.Sorted()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen set: %w", err)
	}
	data = append(data, '\n')

	if err := WriteFileAtomic(fs.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write seen file: %w", err)
	}
	return nil
}

func (fs *FileSeenStore) Close() error { return nil }
