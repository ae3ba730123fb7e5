// Package types provides shared value types used across hashkeep's engines.
package types

import "time"

// FileInfo holds filesystem identity and metadata for one scanned file.
// The walker fills Dev/Ino/Nlink so the dedup engine can recognize
// hardlinked siblings and hash them once instead of once per link.
type FileInfo struct {
	Path    string // path relative to the scan root, forward-slash separated
	Size    int64
	ModTime time.Time
	Dev     uint64
	Ino     uint64
	Nlink   uint32
}

// Semaphore implements a counting semaphore using a buffered channel. It
// bounds concurrent directory reads in the walker.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore allowing up to n concurrent acquisitions.
func NewSemaphore(n int) Semaphore { return make(chan struct{}, n) }

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }
