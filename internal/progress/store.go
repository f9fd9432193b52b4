package progress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists the single progress blob.
type Store interface {
	// Load returns a fresh zero state when nothing has been saved yet.
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, s *State) error
}

// MemoryStore keeps the encoded blob in memory. Used for ephemeral sessions
// and as the fallback when durable storage is unavailable.
type MemoryStore struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(_ context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blob == nil {
		return NewState(), nil
	}
	return Decode(m.blob)
}

func (m *MemoryStore) Save(_ context.Context, s *State) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blob = b
	m.mu.Unlock()
	return nil
}

// FileStore writes the blob to <dir>/<key>.json.
type FileStore struct {
	mu  sync.Mutex
	dir string
	key string
}

// NewFileStore keys the file by Key when key is empty.
func NewFileStore(dir, key string) *FileStore {
	if dir == "" {
		dir = "data"
	}
	if key == "" {
		key = Key
	}
	return &FileStore{dir: dir, key: key}
}

func (f *FileStore) path() string {
	return filepath.Join(f.dir, f.key+".json")
}

func (f *FileStore) Load(_ context.Context) (*State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("read progress file: %w", err)
	}
	return Decode(b)
}

// Save writes to a temp file and renames it over the old one, so a crash
// mid-write leaves the previous snapshot intact.
func (f *FileStore) Save(_ context.Context, s *State) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("create progress dir: %w", err)
	}
	tmp := f.path() + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return fmt.Errorf("write progress file: %w", err)
	}
	if err := os.Rename(tmp, f.path()); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}
