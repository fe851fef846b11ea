// Package source retrieves and caches source lines for the display engine.
//
// The cache is intentionally easy to invalidate: the display engine drops
// the active file's entry before every render so on-disk edits show up on
// the next draw.
package source

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// ErrNoSource indicates the file could not be read.
var ErrNoSource = errors.New("source: no source available")

// Provider supplies source lines for files.
type Provider interface {
	// Lines returns all lines of the file, without trailing newlines.
	Lines(path string) ([]string, error)

	// Invalidate drops any cached content for the file.
	Invalidate(path string)

	// InvalidateAll drops the entire cache.
	InvalidateAll()
}

// FileCache is a Provider backed by a filesystem. The afero abstraction
// keeps it testable against an in-memory fs.
type FileCache struct {
	mu    sync.RWMutex
	fs    afero.Fs
	files map[string][]string
}

// NewFileCache creates a cache over the given filesystem. A nil fs uses
// the host OS filesystem.
func NewFileCache(fs afero.Fs) *FileCache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileCache{
		fs:    fs,
		files: make(map[string][]string),
	}
}

// Lines returns the file's lines, reading and caching on first access.
func (c *FileCache) Lines(path string) ([]string, error) {
	c.mu.RLock()
	lines, ok := c.files[path]
	c.mu.RUnlock()
	if ok {
		return lines, nil
	}

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoSource, path, err)
	}

	text := strings.TrimSuffix(string(data), "\n")
	lines = strings.Split(text, "\n")

	c.mu.Lock()
	c.files[path] = lines
	c.mu.Unlock()
	return lines, nil
}

// Invalidate drops the cached content for one file.
func (c *FileCache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.files, path)
	c.mu.Unlock()
}

// InvalidateAll drops every cached file.
func (c *FileCache) InvalidateAll() {
	c.mu.Lock()
	c.files = make(map[string][]string)
	c.mu.Unlock()
}
