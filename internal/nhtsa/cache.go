package nhtsa

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Cache stores raw NHTSA API payloads on disk, zstd-compressed. Complaint
// payloads for popular vehicles run to megabytes of JSON, so compression
// keeps repeated evaluation runs cheap without re-hitting the API.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// NewCache creates a payload cache rooted at dir. An empty dir disables
// caching: Get always misses and Put is a no-op.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// cacheKey derives the file name for a request URL.
func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json.zst")
}

// Get returns the cached payload for url, or false on a miss. Corrupt
// entries are treated as misses.
func (c *Cache) Get(url string) ([]byte, bool) {
	if c == nil || c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	compressed, err := os.ReadFile(c.cachePath(cacheKey(url)))
	if err != nil {
		return nil, false
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, false
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores a payload for url.
func (c *Cache) Put(url string, data []byte) error {
	if c == nil || c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	compressed := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}

	if err := os.WriteFile(c.cachePath(cacheKey(url)), compressed, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}
