package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivoronin/hashkeep/internal/types"
)

const testDigest = "abcdefghijklmnopqrstuvwxyz012345"

func TestCacheDisabled(t *testing.T) {
	c, err := Open("")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer func() { _ = c.Close() }()

	fi := &types.FileInfo{Path: "/test/file", Size: 100, Ino: 1234, ModTime: time.Now()}
	key := Key{File: fi, Algorithm: "blake3", Length: 100}

	if err := c.Store(key, testDigest); err != nil {
		t.Errorf("Store() on disabled cache: %v", err)
	}

	digest, err := c.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if digest != "" {
		t.Errorf("Lookup() on disabled cache = %q, want empty", digest)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "cache.db")

	c1, err := Open(cachePath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	fi := &types.FileInfo{
		Path:    "/test/file.txt",
		Size:    1024,
		Ino:     12345,
		ModTime: time.Unix(1609459200, 0),
	}

	keys := []Key{
		{File: fi, Algorithm: "blake3", Length: 1024},
		{File: fi, Algorithm: "blake3", Fast: true, Length: 512},
		{File: fi, Algorithm: "sha256", Length: 1024},
		{File: fi, Algorithm: "blake3", Start: 1 << 30, Length: 1 << 30},
	}
	for _, k := range keys {
		if err := c1.Store(k, testDigest); err != nil {
			t.Fatalf("Store(%+v) failed: %v", k, err)
		}
	}

	if err := c1.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	c2, err := Open(cachePath)
	if err != nil {
		t.Fatalf("Open() second time failed: %v", err)
	}
	defer func() { _ = c2.Close() }()

	for _, k := range keys {
		digest, err := c2.Lookup(k)
		if err != nil {
			t.Fatalf("Lookup(%+v) failed: %v", k, err)
		}
		if digest != testDigest {
			t.Errorf("Lookup(%+v) = %q, want %q", k, digest, testDigest)
		}
	}
}

func TestCacheMissOnMtimeChange(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "cache.db")

	c1, _ := Open(cachePath)
	fi := &types.FileInfo{
		Path:    "/test/file.txt",
		Size:    1024,
		Ino:     12345,
		ModTime: time.Unix(1609459200, 0),
	}
	key := Key{File: fi, Algorithm: "blake3", Length: 1024}
	_ = c1.Store(key, testDigest)
	_ = c1.Close()

	c2, _ := Open(cachePath)
	defer func() { _ = c2.Close() }()

	fiModified := &types.FileInfo{
		Path:    fi.Path,
		Size:    fi.Size,
		Ino:     fi.Ino,
		ModTime: time.Unix(1609459201, 0),
	}
	digest, err := c2.Lookup(Key{File: fiModified, Algorithm: "blake3", Length: 1024})
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if digest != "" {
		t.Errorf("Lookup() with different mtime = %q, want empty", digest)
	}
}

func TestCacheMissOnSizeChange(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "cache.db")

	c1, _ := Open(cachePath)
	fi := &types.FileInfo{Path: "/test/file.txt", Size: 1024, Ino: 12345, ModTime: time.Now()}
	key := Key{File: fi, Algorithm: "blake3", Length: 1024}
	_ = c1.Store(key, testDigest)
	_ = c1.Close()

	c2, _ := Open(cachePath)
	defer func() { _ = c2.Close() }()

	fiDifferentSize := &types.FileInfo{Path: fi.Path, Size: 2048, Ino: fi.Ino, ModTime: fi.ModTime}
	digest, _ := c2.Lookup(Key{File: fiDifferentSize, Algorithm: "blake3", Length: 1024})
	if digest != "" {
		t.Errorf("Lookup() with different file size = %q, want empty", digest)
	}
}

func TestCacheMissOnInodeChange(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "cache.db")

	c1, _ := Open(cachePath)
	fi := &types.FileInfo{Path: "/test/file.txt", Size: 1024, Ino: 12345, ModTime: time.Now()}
	key := Key{File: fi, Algorithm: "blake3", Length: 1024}
	_ = c1.Store(key, testDigest)
	_ = c1.Close()

	c2, _ := Open(cachePath)
	defer func() { _ = c2.Close() }()

	// Simulates: file deleted, new file created with same path (different inode)
	fiDifferentIno := &types.FileInfo{Path: fi.Path, Size: fi.Size, Ino: 99999, ModTime: fi.ModTime}
	digest, _ := c2.Lookup(Key{File: fiDifferentIno, Algorithm: "blake3", Length: 1024})
	if digest != "" {
		t.Errorf("Lookup() with different inode = %q, want empty", digest)
	}
}

func TestCacheMissOnAlgorithmChange(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "cache.db")

	c1, _ := Open(cachePath)
	fi := &types.FileInfo{Path: "/test/file.txt", Size: 1024, Ino: 12345, ModTime: time.Now()}
	_ = c1.Store(Key{File: fi, Algorithm: "blake3", Length: 1024}, testDigest)
	_ = c1.Close()

	c2, _ := Open(cachePath)
	defer func() { _ = c2.Close() }()

	digest, _ := c2.Lookup(Key{File: fi, Algorithm: "sha256", Length: 1024})
	if digest != "" {
		t.Errorf("Lookup() with different algorithm = %q, want empty", digest)
	}
}

func TestCacheMissOnFastModeChange(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "cache.db")

	c1, _ := Open(cachePath)
	fi := &types.FileInfo{Path: "/test/file.txt", Size: 1024, Ino: 12345, ModTime: time.Now()}
	_ = c1.Store(Key{File: fi, Algorithm: "blake3", Length: 1024}, testDigest)
	_ = c1.Close()

	c2, _ := Open(cachePath)
	defer func() { _ = c2.Close() }()

	digest, _ := c2.Lookup(Key{File: fi, Algorithm: "blake3", Fast: true, Length: 1024})
	if digest != "" {
		t.Errorf("Lookup() with fast mode on = %q, want empty", digest)
	}
}

func TestSelfCleaning(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "cache.db")

	c1, _ := Open(cachePath)
	fiA := &types.FileInfo{Path: "/a.txt", Size: 100, Ino: 1, ModTime: time.Now()}
	fiB := &types.FileInfo{Path: "/b.txt", Size: 200, Ino: 2, ModTime: time.Now()}
	keyA := Key{File: fiA, Algorithm: "blake3", Length: 100}
	keyB := Key{File: fiB, Algorithm: "blake3", Length: 200}
	_ = c1.Store(keyA, testDigest)
	_ = c1.Store(keyB, testDigest)
	_ = c1.Close()

	// Second run: only lookup keyA (keyB becomes orphan)
	c2, _ := Open(cachePath)
	_, _ = c2.Lookup(keyA) // Hit - copied into the next generation
	_ = c2.Close()

	// Third run: keyB should be gone (self-cleaned)
	c3, _ := Open(cachePath)
	defer func() { _ = c3.Close() }()

	if digest, _ := c3.Lookup(keyA); digest == "" {
		t.Error("keyA should exist after self-cleaning")
	}
	if digest, _ := c3.Lookup(keyB); digest != "" {
		t.Error("keyB should have been cleaned")
	}
}

func TestMakeKeyDeterministic(t *testing.T) {
	fi := &types.FileInfo{
		Path:    "/test/file.txt",
		Size:    1024,
		Ino:     12345,
		ModTime: time.Unix(1609459200, 123456789),
	}
	key := Key{File: fi, Algorithm: "blake3", Length: 512}

	if k1, k2 := makeKey(key), makeKey(key); string(k1) != string(k2) {
		t.Error("makeKey() not deterministic")
	}
}

func TestCacheDirCreation(t *testing.T) {
	tmpDir := t.TempDir()
	nestedPath := filepath.Join(tmpDir, "a", "b", "c", "cache.db")

	c, err := Open(nestedPath)
	if err != nil {
		t.Fatalf("Open() failed with nested path: %v", err)
	}
	_ = c.Close()

	if _, err := os.Stat(filepath.Dir(nestedPath)); os.IsNotExist(err) {
		t.Error("cache directory was not created")
	}
}
