// Package cache provides file-based memoization of digest results, so
// repeated scan/verify/dedup runs over an unchanged tree skip re-reading
// file content.
//
// Adapted from the teacher's internal/cache/cache.go: the same
// self-cleaning generational BoltDB scheme (a read-only snapshot of the
// previous run plus a freshly written "next" database, atomically swapped
// in on Close), generalized from the verifier's single fixed probe-range
// key to an arbitrary (algorithm, fast-mode) key so scan, verify, and
// dedup can all share one cache file.
package cache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ivoronin/hashkeep/internal/types"
)

const bucketName = "digests"

const keyVersion byte = 1

// Cache memoizes hex digest strings for a (file identity, algorithm, fast mode)
// key. A disabled cache (created with an empty path) is always a miss and
// a no-op store, so callers never need to branch on whether caching is on.
type Cache struct {
	readDB  *bolt.DB
	writeDB *bolt.DB
	path    string
	enabled bool
}

// Open opens the existing cache generation for reading (if present) and
// creates a new generation for writing. Returns a disabled Cache if path
// is empty.
func Open(path string) (*Cache, error) {
	if path == "" {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	c := &Cache{path: path, enabled: true}

	if _, statErr := os.Stat(path); statErr == nil {
		readDB, err := bolt.Open(path, 0o600, &bolt.Options{ReadOnly: true, Timeout: time.Second})
		if err == nil {
			c.readDB = readDB
		}
	}

	newPath := path + ".new"
	writeDB, err := bolt.Open(newPath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("create new cache generation (locked by another instance?): %w", err)
	}
	c.writeDB = writeDB

	if err := c.writeDB.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// Close closes both database handles and, if the write generation closed
// cleanly, atomically promotes it to the final path.
func (c *Cache) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c.readDB != nil {
		record(c.readDB.Close())
	}
	if c.writeDB != nil {
		if err := c.writeDB.Close(); err != nil {
			record(err)
		} else {
			record(os.Rename(c.path+".new", c.path))
		}
	}
	return firstErr
}

// Key identifies a memoized digest: a file, the algorithm and mode used,
// and the byte region it covered (region is the whole file when fast mode
// is off).
type Key struct {
	File      *types.FileInfo
	Algorithm string
	Fast      bool
	Start     int64
	Length    int64
}

func makeKey(k Key) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(keyVersion)
	buf.WriteString(k.File.Path)
	buf.WriteByte(0)
	buf.WriteString(k.Algorithm)
	buf.WriteByte(0)
	if k.Fast {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	_ = binary.Write(buf, binary.BigEndian, k.File.Size)
	_ = binary.Write(buf, binary.BigEndian, k.File.Ino)
	_ = binary.Write(buf, binary.BigEndian, k.File.ModTime.UnixNano())
	_ = binary.Write(buf, binary.BigEndian, k.Start)
	_ = binary.Write(buf, binary.BigEndian, k.Length)
	return buf.Bytes()
}

// Lookup returns a memoized hex digest for key, or "" if absent. On a hit
// it copies the entry into the new generation (self-cleaning: only entries
// actually used survive into the next cache file).
func (c *Cache) Lookup(key Key) (string, error) {
	if !c.enabled || c.readDB == nil {
		return "", nil
	}

	k := makeKey(key)
	var digest string
	err := c.readDB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		if v := b.Get(k); v != nil {
			digest = string(v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("cache lookup: %w", err)
	}
	if digest == "" {
		return "", nil
	}
	_ = c.Store(key, digest)
	return digest, nil
}

// Store records digest (lowercase hex) for key in the new generation.
func (c *Cache) Store(key Key, digest string) error {
	if !c.enabled || c.writeDB == nil || digest == "" {
		return nil
	}
	err := c.writeDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.Put(makeKey(key), []byte(digest))
	})
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}
