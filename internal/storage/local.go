// Package storage implements the content-addressed artifact store: a single
// logical namespace of relative keys backed by two tiers, the local
// filesystem (always available) and an S3-compatible remote bucket
// (optional). Reads prefer the remote tier and opportunistically promote
// local-only objects; writes are best-effort on both sides.
package storage

import (
	"os"
	"path/filepath"
)

// Local is the filesystem tier. Keys map directly onto paths under the root
// directory, so the local tree mirrors the remote bucket layout.
type Local struct {
	root string
}

// NewLocal creates the tier root when missing.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: root}, nil
}

// Root returns the tier's base directory.
func (l *Local) Root() string { return l.root }

// Path resolves a key to its absolute location on disk.
func (l *Local) Path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

// Exists reports whether the key is present in this tier.
func (l *Local) Exists(key string) bool {
	info, err := os.Stat(l.Path(key))
	return err == nil && !info.IsDir()
}

// Read returns the object bytes, or an error when absent.
func (l *Local) Read(key string) ([]byte, error) {
	return os.ReadFile(l.Path(key))
}

// Write stores the object, creating parent directories as needed.
func (l *Local) Write(key string, data []byte) error {
	p := l.Path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// Remove deletes a single object; a missing object is not an error.
func (l *Local) Remove(key string) error {
	err := os.Remove(l.Path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// RemovePrefix deletes every object under a key prefix (a directory).
func (l *Local) RemovePrefix(prefix string) error {
	return os.RemoveAll(l.Path(prefix))
}

// FindFirst returns the first candidate key that exists in this tier along
// with its bytes. Used for tolerating legacy on-disk filename conventions.
func (l *Local) FindFirst(candidates ...string) (string, []byte, bool) {
	for _, key := range candidates {
		if !l.Exists(key) {
			continue
		}
		data, err := l.Read(key)
		if err != nil || len(data) == 0 {
			continue
		}
		return key, data, true
	}
	return "", nil, false
}
