// Package walker implements the directory walker (spec component C5): a
// symlink-free enumeration of regular files under a root, filtered by an
// ignore matcher, and delivered through a bounded channel so a slow
// consumer naturally throttles the walk. Directories are read
// concurrently, so files are emitted in no defined order.
//
// The concurrency shape is adapted from the teacher's
// internal/scanner/scanner.go: one goroutine per directory, fanning out
// recursively, with concurrent directory reads bounded by a semaphore.
// Where the teacher collected every result into an in-memory slice behind
// a buffered channel, the walker here hands results straight to its
// output channel — that channel IS the bounded work queue described in
// the scan pipeline's design, so a stalled consumer stalls the walk
// directly instead of via an intermediate collector.
package walker

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ivoronin/hashkeep/internal/ignore"
	"github.com/ivoronin/hashkeep/internal/pathutil"
	"github.com/ivoronin/hashkeep/internal/types"
)

// DefaultQueueCapacity is the bounded channel capacity the scan pipeline
// uses by default; spec §4.5 fixes it at 10,000 but notes the exact number
// is not load-bearing.
const DefaultQueueCapacity = 10000

// Walker enumerates regular files under Root, skipping symlinks and
// special files, paths the Ignore matcher rejects, and Exclude (normally
// the output database's own path).
type Walker struct {
	Root          string
	Ignore        *ignore.Matcher
	Exclude       string // absolute path never to emit, e.g. the output database
	ListWorkers   int    // max concurrent directory reads
	QueueCapacity int
}

// Walk starts the walker and returns a channel of discovered files and a
// channel of non-fatal per-directory errors (permission denied, etc).
// Both channels close once the walk completes. Canceling ctx makes the
// walker terminate cleanly without retrying any directory.
func (w *Walker) Walk(ctx context.Context) (<-chan *types.FileInfo, <-chan error) {
	cap := w.QueueCapacity
	if cap <= 0 {
		cap = DefaultQueueCapacity
	}
	workers := w.ListWorkers
	if workers <= 0 {
		workers = 1
	}

	out := make(chan *types.FileInfo, cap)
	errCh := make(chan error, 64)
	sem := types.NewSemaphore(workers)

	// Exclude is matched in canonical form, so a relative Root (or one
	// reached through a symlinked parent) still recognizes it.
	canonRoot, exclude := w.Root, w.Exclude
	if c, err := pathutil.TryCanonicalize(w.Root); err == nil {
		canonRoot = c
	}
	if exclude != "" {
		if c, err := pathutil.TryCanonicalize(exclude); err == nil {
			exclude = c
		}
	}

	var wg sync.WaitGroup

	var walkDir func(dir string)
	walkDir = func(dir string) {
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			default:
			}

			sem.Acquire()
			files, subdirs, err := listDirectory(dir)
			sem.Release()
			if err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
				}
				return
			}

			for _, f := range files {
				rel, relErr := filepath.Rel(w.Root, filepath.Join(dir, f.name))
				if relErr != nil {
					continue
				}
				rel = filepath.ToSlash(rel)
				if exclude != "" && filepath.Join(canonRoot, filepath.FromSlash(rel)) == exclude {
					continue
				}
				if w.Ignore != nil && w.Ignore.ShouldIgnore(rel, false) {
					continue
				}
				fi := toFileInfo(rel, f)
				select {
				case out <- fi:
				case <-ctx.Done():
					return
				}
			}

			for _, sub := range subdirs {
				rel, relErr := filepath.Rel(w.Root, sub)
				if relErr == nil && w.Ignore != nil && w.Ignore.ShouldIgnore(filepath.ToSlash(rel), true) {
					continue
				}
				walkDir(sub)
			}
		}()
	}

	walkDir(w.Root)

	go func() {
		wg.Wait()
		close(out)
		close(errCh)
	}()

	return out, errCh
}

type dirEntry struct {
	name  string
	isDir bool
	info  os.FileInfo
}

// listDirectory reads one directory using batched ReadDir calls, returning
// regular files (with stat info) and subdirectory paths; symlinks and
// other special files are skipped.
func listDirectory(dir string) (files []dirEntry, subdirs []string, err error) {
	d, err := os.Open(dir)
	if err != nil {
		return nil, nil, err
	}
	defer d.Close()

	const batchSize = 1000
	for {
		entries, readErr := d.ReadDir(batchSize)
		if len(entries) == 0 {
			if readErr != nil && readErr != io.EOF {
				return files, subdirs, readErr
			}
			break
		}
		for _, e := range entries {
			if e.IsDir() {
				subdirs = append(subdirs, filepath.Join(dir, e.Name()))
				continue
			}
			if e.Type()&os.ModeSymlink != 0 || !e.Type().IsRegular() {
				continue
			}
			info, statErr := e.Info()
			if statErr != nil {
				continue
			}
			files = append(files, dirEntry{name: e.Name(), info: info})
		}
	}
	return files, subdirs, nil
}

func toFileInfo(relPath string, e dirEntry) *types.FileInfo {
	fi := &types.FileInfo{
		Path:    relPath,
		Size:    e.info.Size(),
		ModTime: e.info.ModTime(),
	}
	fillPlatformIdentity(fi, e.info)
	return fi
}

// FillIdentity populates fi's platform identity fields (device, inode, link
// count) from info. Exported so callers outside the walker — the verifier
// re-statting a file named in a database, for instance — can build a
// types.FileInfo with the same identity fields a walk would have produced,
// keeping cache keys consistent across scan and verify runs.
func FillIdentity(fi *types.FileInfo, info os.FileInfo) {
	fillPlatformIdentity(fi, info)
}
