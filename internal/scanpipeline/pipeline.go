// Package scanpipeline implements the scan pipeline (spec component C6):
// the walker feeds a bounded queue, and a worker pool digests each file and
// inserts the entry into an in-memory database under a mutex; the caller
// writes that database out once Run returns.
//
// Adapted from the teacher's internal/scanner/scanner.go (fan-out walker)
// and internal/verifier/verifier.go (worker pool + pending-WaitGroup
// shutdown, stats Stringer, progress bar wiring), generalized from a fixed
// sha256 dedup-confirmation hash to the spec's arbitrary algorithm set and
// fast-mode toggle, and from an in-memory result slice to a database
// writer.
package scanpipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ivoronin/hashkeep/internal/cache"
	"github.com/ivoronin/hashkeep/internal/dbformat"
	"github.com/ivoronin/hashkeep/internal/hashalgo"
	"github.com/ivoronin/hashkeep/internal/ignore"
	"github.com/ivoronin/hashkeep/internal/pathutil"
	"github.com/ivoronin/hashkeep/internal/progress"
	"github.com/ivoronin/hashkeep/internal/types"
	"github.com/ivoronin/hashkeep/internal/walker"
)

// Stats tracks scan progress with atomic counters so walker and worker
// goroutines can update them lock-free; see spec §5 "Shared state".
type Stats struct {
	FilesProcessed atomic.Int64
	FilesFailed    atomic.Int64
	FilesSkipped   atomic.Int64
	TotalBytes     atomic.Int64
	startTime      time.Time
}

func (s *Stats) String() string {
	return fmt.Sprintf("processed %d (%s), failed %d, skipped %d, in %s",
		s.FilesProcessed.Load(), humanize.IBytes(uint64(s.TotalBytes.Load())),
		s.FilesFailed.Load(), s.FilesSkipped.Load(),
		time.Since(s.startTime).Truncate(10*time.Millisecond))
}

// Duration returns elapsed wall-clock time since the pipeline started.
func (s *Stats) Duration() time.Duration { return time.Since(s.startTime) }

// Config configures one scan run.
type Config struct {
	Root          string
	Algorithms    []string
	Fast          bool
	Sequential    bool // spec §4.5: --hdd mode, walk+hash+write in lockstep
	Workers       int
	ShowProgress  bool
	Ignore        *ignore.Matcher
	ExcludePath   string // absolute path of the output database, never scanned
	Cache         *cache.Cache
	QueueCapacity int
}

// Result is the outcome of one scan: the populated database plus stats and
// non-fatal per-file warnings.
type Result struct {
	Database *dbformat.Database
	Stats    *Stats
	Warnings []string
}

// Run walks Root, digests every matched file, and returns a populated
// Database. Per-file errors are recorded as warnings and counted; they
// never abort the scan (spec §7 propagation policy).
func Run(ctx context.Context, cfg Config) (*Result, error) {
	db := dbformat.New()
	stats := &Stats{startTime: time.Now()}
	bar := progress.New(cfg.ShowProgress, -1)
	bar.Describe(stats)

	w := &walker.Walker{
		Root:          cfg.Root,
		Ignore:        cfg.Ignore,
		Exclude:       cfg.ExcludePath,
		ListWorkers:   max(1, cfg.Workers),
		QueueCapacity: cfg.QueueCapacity,
	}
	filesCh, walkErrCh := w.Walk(ctx)

	var warnings []string
	var warnMu sync.Mutex
	recordWarning := func(format string, args ...any) {
		warnMu.Lock()
		warnings = append(warnings, fmt.Sprintf(format, args...))
		warnMu.Unlock()
	}

	go func() {
		for err := range walkErrCh {
			recordWarning("walk: %v", err)
		}
	}()

	if cfg.Sequential {
		for fi := range filesCh {
			processFile(cfg, db, stats, fi, recordWarning)
			bar.Describe(stats)
		}
		bar.Finish(stats)
		return &Result{Database: db, Stats: stats, Warnings: warnings}, nil
	}

	workers := max(1, cfg.Workers)
	var dbMu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for fi := range filesCh {
				entry, relPath, ok := digestFile(cfg, fi, recordWarning, stats)
				if ok {
					dbMu.Lock()
					db.Put(relPath, entry)
					dbMu.Unlock()
				}
				bar.Describe(stats)
			}
		}()
	}
	wg.Wait()

	bar.Finish(stats)
	return &Result{Database: db, Stats: stats, Warnings: warnings}, nil
}

func processFile(cfg Config, db *dbformat.Database, stats *Stats, fi *types.FileInfo, warn func(string, ...any)) {
	entry, relPath, ok := digestFile(cfg, fi, warn, stats)
	if ok {
		db.Put(relPath, entry)
	}
}

// digestFile computes one file's digest (consulting the cache first) and
// returns the database entry to record. ok is false when the file should
// be skipped or failed.
func digestFile(cfg Config, fi *types.FileInfo, warn func(string, ...any), stats *Stats) (dbformat.Entry, string, bool) {
	alg := cfg.Algorithms[0]
	canon, ok := hashalgo.Canonical(alg)
	if !ok {
		warn("unsupported algorithm %q for %s", alg, fi.Path)
		stats.FilesFailed.Add(1)
		return dbformat.Entry{}, "", false
	}

	var cacheKey cache.Key
	if cfg.Cache != nil {
		cacheKey = cache.Key{File: fi, Algorithm: canon, Fast: cfg.Fast, Start: 0, Length: fi.Size}
		if digest, err := cfg.Cache.Lookup(cacheKey); err == nil && digest != "" {
			stats.FilesProcessed.Add(1)
			stats.TotalBytes.Add(fi.Size)
			return dbformat.Entry{Hash: digest, Algorithm: canon, FastMode: cfg.Fast, Size: fi.Size}, fi.Path, true
		}
	}

	absPath := fi.Path
	if cfg.Root != "" {
		absPath = pathutil.ResolveUnder(cfg.Root, fi.Path)
	}

	res, err := hashalgo.Compute(absPath, []string{canon}, cfg.Fast)
	if err != nil {
		warn("hash %s: %v", fi.Path, err)
		stats.FilesFailed.Add(1)
		return dbformat.Entry{}, "", false
	}

	stats.FilesProcessed.Add(1)
	stats.TotalBytes.Add(res.Size)

	digest := res.Digests[canon]
	if cfg.Cache != nil {
		_ = cfg.Cache.Store(cacheKey, digest)
	}

	return dbformat.Entry{Hash: digest, Algorithm: canon, FastMode: res.Fast, Size: fi.Size}, fi.Path, true
}
