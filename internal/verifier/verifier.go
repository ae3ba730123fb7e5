// Package verifier implements the verify engine (spec component C7):
// re-hashing the files named in a database and classifying each as a
// match, a mismatch, missing, or — for files present on disk but absent
// from the database — new.
//
// Adapted from the teacher's internal/verifier/verifier.go worker-pool
// shape (a bounded job channel drained by a fixed goroutine pool, each
// worker adding to a shared report under a mutex), generalized from the
// teacher's fixed sha256 progressive-probe confirmation to a full-file
// digest computed with each entry's own recorded algorithm and fast-mode
// flag.
package verifier

import (
	"context"
	"os"
	"sync"

	"github.com/ivoronin/hashkeep/internal/cache"
	"github.com/ivoronin/hashkeep/internal/dbformat"
	"github.com/ivoronin/hashkeep/internal/hashalgo"
	"github.com/ivoronin/hashkeep/internal/herrors"
	"github.com/ivoronin/hashkeep/internal/pathutil"
	"github.com/ivoronin/hashkeep/internal/types"
	"github.com/ivoronin/hashkeep/internal/walker"
)

// Mismatch records a file whose recomputed digest disagrees with the
// database.
type Mismatch struct {
	Path     string
	Expected string
	Actual   string
}

// Report is the outcome of one verify run.
type Report struct {
	Matches    int64
	Mismatches []Mismatch
	Missing    []string
	New        []string
}

// Config configures one verify run.
type Config struct {
	DatabasePath string
	Root         string
	Workers      int
	Cache        *cache.Cache
}

// Verify loads cfg.DatabasePath, re-hashes each entry's file under
// cfg.Root using that entry's own algorithm and fast-mode flag, and
// returns the match/mismatch/missing classification plus any file present
// on disk but absent from the database.
func Verify(ctx context.Context, cfg Config) (*Report, error) {
	db, err := dbformat.Read(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if db.Len() == 0 {
		return nil, herrors.New(herrors.EmptyDatabase, "verify", cfg.DatabasePath, nil)
	}

	dbAbsPath, _ := pathutil.TryCanonicalize(cfg.DatabasePath)

	w := &walker.Walker{Root: cfg.Root, Exclude: dbAbsPath, ListWorkers: max(1, cfg.Workers)}
	filesCh, _ := w.Walk(ctx)

	onDisk := make(map[string]bool)
	for fi := range filesCh {
		onDisk[fi.Path] = true
	}

	report := &Report{}
	var mu sync.Mutex
	paths := db.Paths()
	jobCh := make(chan string, len(paths))
	for _, p := range paths {
		jobCh <- p
	}
	close(jobCh)

	var wg sync.WaitGroup
	workers := max(1, cfg.Workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for p := range jobCh {
				verifyOne(cfg, db, p, onDisk, report, &mu)
			}
		}()
	}
	wg.Wait()

	checked := make(map[string]bool, len(paths))
	for _, p := range paths {
		checked[p] = true
	}
	for p := range onDisk {
		if !checked[p] {
			report.New = append(report.New, p)
		}
	}

	return report, nil
}

func verifyOne(cfg Config, db *dbformat.Database, relPath string, onDisk map[string]bool, report *Report, mu *sync.Mutex) {
	entry := db.Entries[relPath]

	if !onDisk[relPath] {
		mu.Lock()
		report.Missing = append(report.Missing, relPath)
		mu.Unlock()
		return
	}

	absPath := relPath
	if cfg.Root != "" {
		absPath = pathutil.ResolveUnder(cfg.Root, relPath)
	}

	canon, ok := hashalgo.Canonical(entry.Algorithm)
	if !ok {
		canon = entry.Algorithm
	}

	// Stat so the cache key carries the same identity fields
	// (size/inode/mtime) that a scan run would have populated, letting
	// verify reuse digests a prior scan already cached.
	fi := &types.FileInfo{Path: relPath}
	if info, statErr := os.Stat(absPath); statErr == nil {
		fi.Size = info.Size()
		fi.ModTime = info.ModTime()
		walker.FillIdentity(fi, info)
	}

	var cacheKey cache.Key
	var actual string
	if cfg.Cache != nil {
		cacheKey = cache.Key{File: fi, Algorithm: canon, Fast: entry.FastMode, Length: fi.Size}
		if cached, err := cfg.Cache.Lookup(cacheKey); err == nil && cached != "" {
			actual = cached
		}
	}
	if actual == "" {
		res, err := hashalgo.Compute(absPath, []string{canon}, entry.FastMode)
		if err != nil {
			return
		}
		actual = res.Digests[canon]
		if cfg.Cache != nil {
			_ = cfg.Cache.Store(cacheKey, actual)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if actual == entry.Hash {
		report.Matches++
	} else {
		report.Mismatches = append(report.Mismatches, Mismatch{Path: relPath, Expected: entry.Hash, Actual: actual})
	}
}
