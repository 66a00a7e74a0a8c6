package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CacheBackend stores cache entries in the cache_entries table.
type CacheBackend struct {
	db *DB
}

func NewCacheBackend(db *DB) *CacheBackend {
	return &CacheBackend{db: db}
}

func (c *CacheBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx, "SELECT value FROM cache_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, true, nil
}

func (c *CacheBackend) Set(ctx context.Context, key, value string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (c *CacheBackend) Remove(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (c *CacheBackend) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT key FROM cache_entries WHERE key LIKE ? ESCAPE '\' ORDER BY key`,
		likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan cache key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
