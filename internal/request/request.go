// Package request defines one typed Request struct per CLI subcommand
// (spec component C12) plus the flag-level validation each performs
// before dispatching into an engine: size parsing, glob expansion, and
// algorithm-name resolution against the hash registry.
//
// Adapted from the teacher's cmd/dupedog flag-validation helpers
// (parseSize backed by humanize.ParseBytes, validateGlobPatterns backed
// by filepath.Match) and its dedupeOptions-struct-per-command shape,
// generalized from dupedog's single dedupe command to hashkeep's
// hash/scan/verify/compare/dedup/benchmark/list surface.
package request

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/dustin/go-humanize"

	"github.com/ivoronin/hashkeep/internal/hashalgo"
	"github.com/ivoronin/hashkeep/internal/herrors"
)

// DefaultWorkers is the worker-pool size used when a request does not
// set one explicitly: spec §5's "worker pool sized to logical CPU
// count".
func DefaultWorkers() int { return runtime.NumCPU() }

// ParseSize parses a human-readable size string ("100", "1K", "10MiB")
// into bytes.
func ParseSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	bytes, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, herrors.New(herrors.InvalidArguments, "parse size", s, err)
	}
	return int64(bytes), nil
}

// ValidateGlobPatterns rejects any pattern filepath.Match would reject
// outright, before a command spends time walking a tree against it.
func ValidateGlobPatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return herrors.New(herrors.InvalidArguments, "validate pattern", p, err)
		}
	}
	return nil
}

// ExpandGlobs expands each shell-like pattern against the filesystem
// per spec §6 ("Verify/scan accept glob patterns ... and expand them
// before execution"). A pattern matching nothing is kept as a literal
// path so a plain, non-glob path argument still reaches the caller
// unchanged.
func ExpandGlobs(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, herrors.New(herrors.InvalidArguments, "expand pattern", p, err)
		}
		if len(matches) == 0 {
			out = append(out, p)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

// ResolveAlgorithms canonicalizes and validates a list of algorithm
// names, defaulting to blake3 when none are given.
func ResolveAlgorithms(names []string) ([]string, error) {
	if len(names) == 0 {
		names = []string{"blake3"}
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		canon, ok := hashalgo.Canonical(n)
		if !ok {
			return nil, herrors.New(herrors.UnsupportedAlgorithm, "resolve algorithm", n, nil)
		}
		out = append(out, canon)
	}
	return out, nil
}

// Output selects how a report is rendered: spec §6's "JSON output
// toggle" generalized to the third hashdeep-audit form compare also
// supports.
type Output int

const (
	OutputPlainText Output = iota
	OutputJSON
	OutputHashdeepAudit
)

// HashRequest is the request for the "hash" subcommand: digest one or
// more literal files. NewHashRequest rejects an empty path list.
type HashRequest struct {
	Paths      []string
	Algorithms []string
	Output     Output
}

// NewHashRequest validates raw flag values into a HashRequest.
func NewHashRequest(paths, algorithms []string, jsonOut bool) (*HashRequest, error) {
	if len(paths) == 0 {
		return nil, herrors.New(herrors.MissingRequiredArgument, "hash", "", nil)
	}
	algs, err := ResolveAlgorithms(algorithms)
	if err != nil {
		return nil, err
	}
	out := OutputPlainText
	if jsonOut {
		out = OutputJSON
	}
	return &HashRequest{Paths: paths, Algorithms: algs, Output: out}, nil
}

// ScanRequest is the request for the "scan" subcommand.
type ScanRequest struct {
	Root          string
	DatabasePath  string
	Algorithms    []string
	Fast          bool
	Format        string // "standard" | "hashdeep"
	Compress      bool
	Sequential    bool
	Workers       int
	ShowProgress  bool
	ExcludeGlobs  []string
	CacheFile     string
	Output        Output
}

// NewScanRequest validates raw flag values into a ScanRequest. roots is
// glob-expanded per spec §6; only the first match is used as the scan
// root since scan takes a single directory argument.
func NewScanRequest(rootPattern, dbPath string, algorithms []string, fast, sequential, compress bool,
	format string, workers int, showProgress bool, excludes []string, cacheFile string, jsonOut bool) (*ScanRequest, error) {
	if rootPattern == "" {
		return nil, herrors.New(herrors.MissingRequiredArgument, "scan", "", nil)
	}
	if dbPath == "" {
		return nil, herrors.New(herrors.MissingRequiredArgument, "scan", "database path", nil)
	}
	if err := ValidateGlobPatterns(excludes); err != nil {
		return nil, err
	}
	roots, err := ExpandGlobs([]string{rootPattern})
	if err != nil {
		return nil, err
	}
	algs, err := ResolveAlgorithms(algorithms)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = "standard"
	}
	if format != "standard" && format != "hashdeep" {
		return nil, herrors.New(herrors.InvalidArguments, "scan", fmt.Sprintf("format %q", format), nil)
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	out := OutputPlainText
	if jsonOut {
		out = OutputJSON
	}

	return &ScanRequest{
		Root: roots[0], DatabasePath: dbPath, Algorithms: algs, Fast: fast,
		Format: format, Compress: compress, Sequential: sequential, Workers: workers,
		ShowProgress: showProgress, ExcludeGlobs: excludes, CacheFile: cacheFile, Output: out,
	}, nil
}

// VerifyRequest is the request for the "verify" subcommand.
type VerifyRequest struct {
	DatabasePath string
	Root         string
	Workers      int
	ShowProgress bool
	CacheFile    string
	Output       Output
}

// NewVerifyRequest validates raw flag values into a VerifyRequest.
// dbPattern is glob-expanded per spec §6.
func NewVerifyRequest(dbPattern, root string, workers int, showProgress bool, cacheFile string, jsonOut, auditOut bool) (*VerifyRequest, error) {
	if dbPattern == "" {
		return nil, herrors.New(herrors.MissingRequiredArgument, "verify", "", nil)
	}
	dbs, err := ExpandGlobs([]string{dbPattern})
	if err != nil {
		return nil, err
	}
	if len(dbs) != 1 {
		return nil, herrors.New(herrors.InvalidArguments, "verify", "pattern must match exactly one database", nil)
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if root == "" {
		root = filepath.Dir(dbs[0])
	}

	out := OutputPlainText
	switch {
	case auditOut:
		out = OutputHashdeepAudit
	case jsonOut:
		out = OutputJSON
	}

	return &VerifyRequest{
		DatabasePath: dbs[0], Root: root, Workers: workers,
		ShowProgress: showProgress, CacheFile: cacheFile, Output: out,
	}, nil
}

// CompareRequest is the request for the "compare" subcommand.
type CompareRequest struct {
	DB1, DB2 string
	Output   Output
}

// NewCompareRequest validates raw flag values into a CompareRequest.
func NewCompareRequest(db1, db2 string, jsonOut, auditOut bool) (*CompareRequest, error) {
	if db1 == "" || db2 == "" {
		return nil, herrors.New(herrors.MissingRequiredArgument, "compare", "", nil)
	}
	out := OutputPlainText
	switch {
	case auditOut:
		out = OutputHashdeepAudit
	case jsonOut:
		out = OutputJSON
	}
	return &CompareRequest{DB1: db1, DB2: db2, Output: out}, nil
}

// DedupRequest is the request for the "dedup" subcommand.
type DedupRequest struct {
	Root                  string
	Algorithm             string
	Fast                  bool
	Workers               int
	ShowProgress          bool
	ExcludeGlobs          []string
	CacheFile             string
	TrustDeviceBoundaries bool
	Output                Output
}

// NewDedupRequest validates raw flag values into a DedupRequest.
func NewDedupRequest(root, algorithm string, fast bool, workers int, showProgress bool,
	excludes []string, cacheFile string, trustDeviceBoundaries, jsonOut bool) (*DedupRequest, error) {
	if root == "" {
		return nil, herrors.New(herrors.MissingRequiredArgument, "dedup", "", nil)
	}
	if err := ValidateGlobPatterns(excludes); err != nil {
		return nil, err
	}
	if algorithm != "" {
		if _, ok := hashalgo.Canonical(algorithm); !ok {
			return nil, herrors.New(herrors.UnsupportedAlgorithm, "dedup", algorithm, nil)
		}
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	out := OutputPlainText
	if jsonOut {
		out = OutputJSON
	}
	return &DedupRequest{
		Root: root, Algorithm: algorithm, Fast: fast, Workers: workers,
		ShowProgress: showProgress, ExcludeGlobs: excludes, CacheFile: cacheFile,
		TrustDeviceBoundaries: trustDeviceBoundaries, Output: out,
	}, nil
}

// BenchmarkRequest is the request for the "benchmark" subcommand: the
// benchmark engine hashes a synthetic in-memory payload of SizeBytes
// through every registered algorithm. Algorithms is validated here but
// not consulted by the engine.
type BenchmarkRequest struct {
	Algorithms []string
	SizeBytes  int64
}

// NewBenchmarkRequest validates raw flag values into a BenchmarkRequest.
func NewBenchmarkRequest(algorithms []string, sizeStr string) (*BenchmarkRequest, error) {
	algs, err := ResolveAlgorithms(algorithms)
	if err != nil {
		return nil, err
	}
	size, err := ParseSize(sizeStr)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 64 * 1024 * 1024
	}
	return &BenchmarkRequest{Algorithms: algs, SizeBytes: size}, nil
}

// ListRequest is the request for the "list" subcommand: print the hash
// registry's supported algorithm names.
type ListRequest struct {
	Output Output
}

// NewListRequest validates raw flag values into a ListRequest.
func NewListRequest(jsonOut bool) *ListRequest {
	out := OutputPlainText
	if jsonOut {
		out = OutputJSON
	}
	return &ListRequest{Output: out}
}
