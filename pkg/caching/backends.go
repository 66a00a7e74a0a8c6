package caching

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// MemoryBackend keeps entries in a map. It is the default backend.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]string)}
}

func (m *MemoryBackend) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryBackend) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryBackend) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// FileBackend stores one file per key in a directory. File names are the
// SHA256 of the key; the key itself is kept inside the file so it can be
// listed.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

type fileRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewFileBackend creates the cache directory if it doesn't exist.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileBackend{path: path}, nil
}

// file generates a SHA256 hash of the key to use as a filename.
func (f *FileBackend) file(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(f.path, fmt.Sprintf("%x.json", hash))
}

func (f *FileBackend) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := readRecord(f.file(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil // cache miss
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

func (f *FileBackend) Set(ctx context.Context, key, value string) error {
	data, err := json.Marshal(fileRecord{Key: key, Value: value})
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// write then rename so readers never see a partial file
	tmp, err := os.CreateTemp(f.path, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.file(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

func (f *FileBackend) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.file(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (f *FileBackend) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(f.path, "*.json"))
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, name := range files {
		rec, err := readRecord(name)
		if err != nil {
			continue
		}
		if strings.HasPrefix(rec.Key, prefix) {
			keys = append(keys, rec.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func readRecord(name string) (fileRecord, error) {
	var rec fileRecord
	data, err := os.ReadFile(name)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("corrupt cache file %s: %w", filepath.Base(name), err)
	}
	return rec, nil
}

// RedisBackend stores entries as plain Redis strings. Expiry stays with
// Cache so every backend ages entries the same way.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisBackend) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisBackend) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
