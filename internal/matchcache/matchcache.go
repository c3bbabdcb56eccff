// Package matchcache persists human review verdicts for cross-venue
// pairings in a single versioned JSON file.
//
// The matcher asks one question of it: given a Polymarket market
// identifier and a Kalshi ticker, is the pairing confirmed, rejected, or
// unknown? Writes use atomic file replacement (write to .tmp, then rename)
// so a crash mid-save never corrupts the file.
package matchcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Verdict is the review state of one pairing.
type Verdict string

const (
	VerdictUnknown   Verdict = "unknown"
	VerdictConfirmed Verdict = "confirmed"
	VerdictRejected  Verdict = "rejected"
)

// fileVersion guards the on-disk format. A file with any other version is
// discarded on open and the cache starts empty.
const fileVersion = 1

type cacheFile struct {
	Version int                `json:"version"`
	Entries map[string]Verdict `json:"entries"`
}

// Cache is the on-disk verdict store. All operations are mutex-protected.
type Cache struct {
	path    string
	mu      sync.Mutex
	entries map[string]Verdict
}

// Open loads the cache at path, creating parent directories as needed.
// A missing file yields an empty cache.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	c := &Cache{path: path, entries: make(map[string]Verdict)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("read match cache: %w", err)
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse match cache: %w", err)
	}
	if f.Version == fileVersion && f.Entries != nil {
		c.entries = f.Entries
	}
	return c, nil
}

// Verdict reports the review state of a pairing.
func (c *Cache) Verdict(polyID, kalshiID string) Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key(polyID, kalshiID)]; ok {
		return v
	}
	return VerdictUnknown
}

// Confirm marks a pairing as human-confirmed and persists.
func (c *Cache) Confirm(polyID, kalshiID string) error {
	return c.set(key(polyID, kalshiID), VerdictConfirmed)
}

// Reject marks a pairing as a false match and persists.
func (c *Cache) Reject(polyID, kalshiID string) error {
	return c.set(key(polyID, kalshiID), VerdictRejected)
}

// Forget removes any verdict for a pairing and persists.
func (c *Cache) Forget(polyID, kalshiID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(polyID, kalshiID)
	if _, ok := c.entries[k]; !ok {
		return nil
	}
	delete(c.entries, k)
	return c.saveLocked()
}

// Len returns the number of stored verdicts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) set(k string, v Verdict) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = v
	return c.saveLocked()
}

// saveLocked writes the whole file atomically. Caller holds c.mu.
func (c *Cache) saveLocked() error {
	data, err := json.Marshal(cacheFile{Version: fileVersion, Entries: c.entries})
	if err != nil {
		return fmt.Errorf("marshal match cache: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write match cache: %w", err)
	}
	return os.Rename(tmp, c.path)
}

func key(polyID, kalshiID string) string {
	return polyID + "|" + kalshiID
}
