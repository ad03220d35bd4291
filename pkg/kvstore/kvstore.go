// Package kvstore provides the durable key-value layer that backs every
// per-user collection (orders, wishlist, saved address, cart) plus a handful
// of global keys. Values are JSON-encoded; keys are structured
// "<collection>:<escaped owner>" so unusual owner strings can never collide
// with another collection.
//
// Five drivers are available, selected by KV_DRIVER:
//   - "memory"   — in-process map (tests, dev)
//   - "redis"    — Redis, no TTL
//   - "database" — single kv_records table via GORM (sqlite default)
//   - "disk"     — one file per key with atomic rename
//   - "s3"       — one object per key on S3-compatible storage
//
// Quick start:
//
//	kv, err := kvstore.Open()
//	err = kv.Set(ctx, kvstore.UserKey("wishlist", email), items)
//	found, err := kv.Get(ctx, kvstore.UserKey("wishlist", email), &items)
package kvstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Aleksandergreg/storefront/config"
)

// Store is the driver interface. Get reports (found, error); a missing key is
// not an error. Set replaces the value wholesale. Delete of an absent key is
// a no-op.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// UserKey builds the namespaced key for one user's collection. The owner is
// query-escaped so emails containing ':' or '/' cannot break out of their
// namespace.
func UserKey(collection, owner string) string {
	return collection + ":" + url.QueryEscape(strings.ToLower(strings.TrimSpace(owner)))
}

// GlobalKey builds a key for app-wide state (biometrics flag, last email).
func GlobalKey(name string) string {
	return "global:" + name
}

// Open builds the Store selected by KV_DRIVER.
func Open() (Store, error) {
	driver := config.KVDriver()

	var (
		s   Store
		err error
	)
	switch driver {
	case "memory":
		s = NewMemory()
	case "redis":
		s, err = NewRedis()
	case "database":
		s, err = NewDatabase()
	case "disk":
		s, err = NewDisk(config.KVDiskRoot())
	case "s3":
		s, err = NewS3()
	default:
		return nil, fmt.Errorf("kvstore: unsupported KV_DRIVER %q", driver)
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}
