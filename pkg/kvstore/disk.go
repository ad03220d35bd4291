package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Disk stores one JSON file per key under a root directory. Writes go
// through a temp file + rename so a crash mid-write never leaves a
// half-written value behind.
type Disk struct {
	root string
}

// NewDisk creates the root directory if needed.
func NewDisk(root string) (*Disk, error) {
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore/disk: mkdir %s: %w", root, err)
	}
	return &Disk{root: root}, nil
}

// path maps a key to a filename. Keys are already namespace-escaped, but the
// collection separator ':' is not filename-safe everywhere.
func (d *Disk) path(key string) string {
	return filepath.Join(d.root, url.PathEscape(key)+".json")
}

func (d *Disk) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, err := os.ReadFile(d.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kvstore/disk: read %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("kvstore/disk: unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (d *Disk) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore/disk: marshal %s: %w", key, err)
	}

	final := d.path(key)
	tmp, err := os.CreateTemp(d.root, ".kv-*")
	if err != nil {
		return fmt.Errorf("kvstore/disk: temp file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("kvstore/disk: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("kvstore/disk: close %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("kvstore/disk: rename %s: %w", key, err)
	}
	return nil
}

func (d *Disk) Delete(_ context.Context, key string) error {
	err := os.Remove(d.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("kvstore/disk: delete %s: %w", key, err)
	}
	return nil
}

func (d *Disk) Close() error { return nil }
