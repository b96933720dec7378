// Package assetcache is an outer, optional loader convenience: a bbolt-
// backed on-disk index mapping archive names to BINARC byte blobs, so a
// process that opens the same named archive more than once reads it
// from disk exactly once. It sits entirely outside the reservoir,
// archive, flyweight, and message core, which stay in-memory with no
// hidden persistence. Grounded on
// _examples/2tbmz9y2xt-lang-rubin-protocol/clients/go/node/store/db.go's
// bbolt-backed store shape.
package assetcache

import (
	"fmt"
	"time"

	"github.com/golang/snappy"
	bolt "go.etcd.io/bbolt"
)

var bucketBlobs = []byte("archive_blobs_by_name")

// Cache is a single bbolt database file holding snappy-compressed
// archive blobs keyed by name.
type Cache struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt database at path and
// ensures its blob bucket exists.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("assetcache: open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBlobs)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("assetcache: create bucket: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying bbolt database file.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put stores blob under name, snappy-compressed at rest.
func (c *Cache) Put(name string, blob []byte) error {
	compressed := snappy.Encode(nil, blob)
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlobs).Put([]byte(name), compressed)
	})
}

// Get returns the decompressed blob stored under name, or (nil, false)
// if no such entry exists.
func (c *Cache) Get(name string) ([]byte, bool, error) {
	var compressed []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlobs).Get([]byte(name))
		if v == nil {
			return nil
		}
		compressed = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if compressed == nil {
		return nil, false, nil
	}
	blob, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, false, fmt.Errorf("assetcache: decompress %q: %w", name, err)
	}
	return blob, true, nil
}

// Delete removes the entry stored under name, if any.
func (c *Cache) Delete(name string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlobs).Delete([]byte(name))
	})
}
