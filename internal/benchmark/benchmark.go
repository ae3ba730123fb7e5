// Package benchmark implements the algorithm throughput benchmark (spec
// component C15): hash a fixed synthetic payload once per registered
// algorithm and report bytes-per-second throughput, sorted fastest first.
//
// Grounded on original_source/src/benchmark.rs's BenchmarkEngine: the same
// generate-pattern-fill-buffer-then-hash-once-per-algorithm shape, and the
// same descending-by-throughput sort for display.
package benchmark

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ivoronin/hashkeep/internal/hashalgo"
)

const testPattern = "The quick brown fox jumps over the lazy dog. "

// Result is one algorithm's measured throughput.
type Result struct {
	Algorithm     string
	ThroughputMBs float64
}

// Run hashes sizeBytes of synthetic data with every registered algorithm
// and returns one Result per algorithm that hashed successfully.
func Run(sizeBytes int64) ([]Result, error) {
	data := generateTestData(sizeBytes)

	var results []Result
	for _, name := range hashalgo.Names() {
		h, err := hashalgo.New(name)
		if err != nil {
			continue
		}
		start := time.Now()
		h.Write(data)
		_ = h.Sum(nil)
		elapsed := time.Since(start)

		results = append(results, Result{
			Algorithm:     name,
			ThroughputMBs: throughputMBs(sizeBytes, elapsed),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ThroughputMBs > results[j].ThroughputMBs })
	return results, nil
}

func throughputMBs(sizeBytes int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	mb := float64(sizeBytes) / (1024 * 1024)
	return mb / elapsed.Seconds()
}

// generateTestData fills a buffer of the requested size by repeating a
// fixed pattern — faster to produce than random data and sufficient for
// comparing algorithms against each other.
func generateTestData(size int64) []byte {
	data := make([]byte, size)
	pattern := []byte(testPattern)
	for i := int64(0); i < size; i += int64(len(pattern)) {
		n := copy(data[i:], pattern)
		_ = n
	}
	return data
}

// DisplayResults renders results as the fixed-width table the original
// benchmark engine prints.
func DisplayResults(results []Result) string {
	if len(results) == 0 {
		return "No benchmark results to display.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%-20s %15s\n", "Algorithm", "Throughput (MB/s)")
	b.WriteString(strings.Repeat("-", 37) + "\n")
	for _, r := range results {
		fmt.Fprintf(&b, "%-20s %15.2f\n", r.Algorithm, r.ThroughputMBs)
	}
	b.WriteString("\n")
	return b.String()
}
