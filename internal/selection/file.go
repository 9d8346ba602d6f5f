package selection

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.yaml.in/yaml/v3"
)

// fileDoc is the on-disk layout of selections.yaml.
type fileDoc map[Namespace]map[string]string

// FileStore persists selections to a YAML file. Every Set rewrites the
// whole file; the file is re-read on every Get so that several processes
// sharing it see each other's writes.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(ns Namespace, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := doc[ns][key]
	return v, ok, nil
}

func (s *FileStore) Set(ns Namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if doc[ns] == nil {
		doc[ns] = make(map[string]string)
	}
	doc[ns][key] = value

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding selections: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating selections dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing selections: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("writing selections: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() (fileDoc, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileDoc{}, nil
		}
		return nil, fmt.Errorf("reading selections: %w", err)
	}
	doc := fileDoc{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing selections: %w", err)
	}
	return doc, nil
}
