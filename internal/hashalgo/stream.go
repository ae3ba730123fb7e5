package hashalgo

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/ivoronin/hashkeep/internal/herrors"
)

const (
	blockSize = 64 * 1024 // read block size for streaming digests

	// DefaultRegionSize is S, the sampled region size for fast mode; T = 3S
	// is the size at which a file switches from a full digest to sampling.
	DefaultRegionSize = 100 * 1024 * 1024
)

// regionSize and fastModeSize are package-level variables rather than
// constants so tests can shrink them instead of materializing
// hundred-megabyte fixtures; production code never changes them.
var (
	regionSize   int64 = DefaultRegionSize
	fastModeSize       = 3 * regionSize
)

// Result is the outcome of computing one or more digests over one input.
type Result struct {
	Digests map[string]string // canonical algorithm name -> lowercase hex digest
	Size    int64             // bytes actually presented to the hasher(s)
	Fast    bool
}

// Compute streams path through one hasher per requested algorithm, reading
// the file once and broadcasting every block to each hasher. fast enables
// the region-sampling mode for files at or above fastModeSize.
func Compute(path string, algorithms []string, fast bool) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, herrors.FromOSError("open file", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{}, herrors.FromOSError("stat file", path, err)
	}

	hashers := make(map[string]Hasher, len(algorithms))
	for _, alg := range algorithms {
		h, err := New(alg)
		if err != nil {
			return Result{}, err
		}
		canon, _ := Canonical(alg)
		hashers[canon] = h
	}

	size := info.Size()
	useFast := fast && size >= fastModeSize

	var fed int64
	if useFast {
		fed, err = feedFastRegions(f, size, hashers)
	} else {
		fed, err = feedAll(f, hashers)
	}
	if err != nil {
		return Result{}, herrors.New(herrors.HashComputationFailed, "hash file", path, err)
	}

	return Result{Digests: finalize(hashers), Size: fed, Fast: useFast}, nil
}

// ComputeStdin mirrors Compute but reads r to completion (no seeking, so
// fast mode never applies). A read error names the input "-".
func ComputeStdin(r io.Reader, algorithms []string) (Result, error) {
	hashers := make(map[string]Hasher, len(algorithms))
	for _, alg := range algorithms {
		h, err := New(alg)
		if err != nil {
			return Result{}, err
		}
		canon, _ := Canonical(alg)
		hashers[canon] = h
	}
	fed, err := feedAll(r, hashers)
	if err != nil {
		return Result{}, herrors.New(herrors.HashComputationFailed, "hash stdin", "-", err)
	}
	return Result{Digests: finalize(hashers), Size: fed}, nil
}

// ComputeText hashes an in-memory string. The returned Result carries no
// name; callers label it (the hash command uses "<text>").
func ComputeText(text string, algorithms []string) (Result, error) {
	hashers := make(map[string]Hasher, len(algorithms))
	for _, alg := range algorithms {
		h, err := New(alg)
		if err != nil {
			return Result{}, err
		}
		canon, _ := Canonical(alg)
		hashers[canon] = h
	}
	for _, h := range hashers {
		h.Write([]byte(text))
	}
	return Result{Digests: finalize(hashers), Size: int64(len(text))}, nil
}

func finalize(hashers map[string]Hasher) map[string]string {
	out := make(map[string]string, len(hashers))
	for name, h := range hashers {
		out[name] = hex.EncodeToString(h.Sum(nil))
	}
	return out
}

func feedAll(r io.Reader, hashers map[string]Hasher) (int64, error) {
	buf := make([]byte, blockSize)
	var total int64
	writers := make([]io.Writer, 0, len(hashers))
	for _, h := range hashers {
		writers = append(writers, h)
	}
	mw := io.MultiWriter(writers...)
	n, err := io.CopyBuffer(mw, r, buf)
	total += n
	if err != nil {
		return total, err
	}
	return total, nil
}

// fastRegions returns the three disjoint byte ranges sampled for a file of
// the given size, in the order they must be fed to the hasher.
func fastRegions(size int64) [3][2]int64 {
	mid := size / 2
	return [3][2]int64{
		{0, regionSize},
		{mid - regionSize/2, regionSize},
		{size - regionSize, regionSize},
	}
}

func feedFastRegions(f *os.File, size int64, hashers map[string]Hasher) (int64, error) {
	var total int64
	buf := make([]byte, blockSize)
	writers := make([]io.Writer, 0, len(hashers))
	for _, h := range hashers {
		writers = append(writers, h)
	}
	mw := io.MultiWriter(writers...)

	for _, region := range fastRegions(size) {
		start, length := region[0], region[1]
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			return total, err
		}
		n, err := io.CopyBuffer(mw, io.LimitReader(f, length), buf)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
