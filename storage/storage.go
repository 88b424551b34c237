package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"recipebox"
)

// Keys of the three persisted slots.
const (
	KeyFavorites          = "favorites"
	KeySearchHistory      = "searchHistory"
	KeyDietaryPreferences = "dietaryPreferences"
)

// ErrNotFound is returned by Store.Load when nothing was saved under a key.
var ErrNotFound = errors.New("not found")

// Store is durable key-value storage for serialized slots.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Blob is a single stored object, such as a recipe fixture.
type Blob interface {
	Load(ctx context.Context) ([]byte, error)
}

// NewStore selects a Store backend from cfg. s3Client is only used by the s3 backend.
func NewStore(cfg recipebox.StoreConfig, s3Client *s3.Client) (Store, error) {
	switch cfg.Backend {
	case "file":
		return NewFileStore(cfg.Dir), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 store: RECIPEBOX_S3_BUCKET must be set")
		}
		if s3Client == nil {
			return nil, fmt.Errorf("s3 store: no S3 client")
		}
		return NewS3Store(s3Client, cfg.S3Bucket, cfg.S3Prefix), nil
	case "memory":
		return NewMemoryStore(nil), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// MemoryStore keeps slots in memory. Used by tests and as an ephemeral backend.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string][]byte
	err   error
}

func NewMemoryStore(seed map[string][]byte) *MemoryStore {
	slots := make(map[string][]byte, len(seed))
	for k, v := range seed {
		slots[k] = v
	}
	return &MemoryStore{slots: slots}
}

// NewMemoryStoreWithError returns a store whose every call fails.
func NewMemoryStoreWithError() *MemoryStore {
	return &MemoryStore{slots: map[string][]byte{}, err: errors.New("store unavailable")}
}

func (m *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryStore) Save(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.slots[key] = append([]byte(nil), data...)
	return nil
}

// MemoryBlob is an in-memory Blob for tests.
type MemoryBlob struct {
	data []byte
	err  error
}

func NewMemoryBlob(data []byte) *MemoryBlob {
	return &MemoryBlob{data: data}
}

func NewMemoryBlobWithError() *MemoryBlob {
	return &MemoryBlob{err: errors.New("not found")}
}

func (b *MemoryBlob) Load(ctx context.Context) ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.data, nil
}
