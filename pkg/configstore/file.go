package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-settingsform/pkg/document"
)

// FileStore keeps the document in a single file. Files ending in .yaml or
// .yml are YAML, everything else JSON. Writes go to a temporary file in the
// same directory and are renamed into place.
type FileStore struct {
	mu   sync.Mutex
	path string
	yaml bool
}

// NewFileStore returns a store backed by path. The file need not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("configstore: file path is required")
	}
	ext := strings.ToLower(filepath.Ext(path))
	return &FileStore{
		path: filepath.Clean(path),
		yaml: ext == ".yaml" || ext == ".yml",
	}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get reads the document. A missing or empty file is an empty document.
func (s *FileStore) Get(ctx context.Context) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return document.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("configstore: read %s: %w", s.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return document.Document{}, nil
	}

	var decoded any
	if s.yaml {
		err = yaml.Unmarshal(data, &decoded)
	} else {
		err = json.Unmarshal(data, &decoded)
	}
	if err != nil {
		return nil, fmt.Errorf("configstore: decode %s: %w", s.path, err)
	}
	if _, ok := decoded.(map[string]any); !ok && decoded != nil {
		return nil, fmt.Errorf("configstore: %s does not hold an object", s.path)
	}
	doc, err := normalize(decoded)
	if err != nil {
		return nil, fmt.Errorf("configstore: normalize %s: %w", s.path, err)
	}
	return doc, nil
}

// Put replaces the document atomically.
func (s *FileStore) Put(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil {
		doc = document.Document{}
	}

	var (
		data []byte
		err  error
	)
	if s.yaml {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("configstore: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("configstore: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("configstore: temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("configstore: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("configstore: sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("configstore: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("configstore: replace %s: %w", s.path, err)
	}
	return nil
}
