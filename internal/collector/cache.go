package collector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache is a TTL cache of JSON payloads on disk, one file per key.
// It keeps repeated runs within a session from re-hitting rate-limited
// provider endpoints.
type FileCache struct {
	Dir string
	TTL time.Duration
}

type cacheEnvelope struct {
	Timestamp time.Time       `json:"ts"`
	Value     json.RawMessage `json:"value"`
}

func NewFileCache(dir string, ttl time.Duration) *FileCache {
	return &FileCache{Dir: dir, TTL: ttl}
}

// Get unmarshals a fresh cached value into out. It returns false when the
// entry is missing, expired, or unreadable.
func (c *FileCache) Get(key string, out any) bool {
	if c == nil || c.Dir == "" {
		return false
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return false
	}
	var env cacheEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}
	if time.Since(env.Timestamp) > c.TTL {
		return false
	}
	return json.Unmarshal(env.Value, out) == nil
}

// Set stores a value under key. Cache write failures are non-fatal.
func (c *FileCache) Set(key string, value any) error {
	if c == nil || c.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("cache mkdir: %w", err)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	env := cacheEnvelope{Timestamp: time.Now(), Value: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("cache marshal envelope: %w", err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.Dir, sanitizeKey(key)+".json")
}

func sanitizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
