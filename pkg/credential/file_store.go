package credential

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore implements Store on top of a YAML file. Other keys present in the
// file are preserved on write.
type FileStore struct {
	path string
	key  string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. An empty key means DefaultKey.
// The file and its directory are created on the first Set.
func NewFileStore(path, key string) *FileStore {
	if key == "" {
		key = DefaultKey
	}
	return &FileStore{path: path, key: key}
}

// DefaultFilePath returns the per-user location of the credentials file.
func DefaultFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "moviekit", "credentials.yaml")
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.read()
	if err != nil {
		return "", err
	}
	token := doc[s.key]
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

func (s *FileStore) Set(_ context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.read()
	if err != nil {
		return err
	}
	doc[s.key] = token
	return s.write(doc)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, corrupt, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc[s.key]; !ok && !corrupt {
		return nil
	}
	delete(doc, s.key)
	if len(doc) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrStorage, err)
		}
		return nil
	}
	return s.write(doc)
}

// read loads the document. A file that does not parse as a string map reads
// as empty and is reported as corrupt, so the next write replaces it.
func (s *FileStore) read() (doc map[string]string, corrupt bool, err error) {
	doc = make(map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, false, nil
	}
	if err != nil {
		return nil, false, errors.Join(ErrStorage, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return make(map[string]string), true, nil
	}
	if doc == nil {
		doc = make(map[string]string)
	}
	return doc, false, nil
}

// write replaces the file atomically with owner-only permissions.
func (s *FileStore) write(doc map[string]string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Join(ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorage, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}
