package scanpipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivoronin/hashkeep/internal/cache"
)

func TestRunProducesDatabase(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.txt"), "A")
	mustWrite(t, filepath.Join(dir, "b.txt"), "B")

	c, err := cache.Open("")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	res, err := Run(context.Background(), Config{
		Root:       dir,
		Algorithms: []string{"sha256"},
		Workers:    2,
		Cache:      c,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Database.Len() != 2 {
		t.Fatalf("got %d entries, want 2", res.Database.Len())
	}
	if res.Stats.FilesProcessed.Load() != 2 {
		t.Errorf("FilesProcessed = %d, want 2", res.Stats.FilesProcessed.Load())
	}
}

func TestRunSequentialMatchesParallel(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.txt"), "A")

	c, _ := cache.Open("")
	defer c.Close()

	seq, err := Run(context.Background(), Config{Root: dir, Algorithms: []string{"sha256"}, Sequential: true, Cache: c})
	if err != nil {
		t.Fatal(err)
	}
	par, err := Run(context.Background(), Config{Root: dir, Algorithms: []string{"sha256"}, Workers: 4, Cache: c})
	if err != nil {
		t.Fatal(err)
	}
	if seq.Database.Entries["a.txt"].Hash != par.Database.Entries["a.txt"].Hash {
		t.Errorf("sequential and parallel digests diverged")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
