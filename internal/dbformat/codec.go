package dbformat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/ivoronin/hashkeep/internal/hashalgo"
	"github.com/ivoronin/hashkeep/internal/herrors"
	"github.com/ivoronin/hashkeep/internal/pathutil"
)

// Format identifies which of the two supported text formats a database
// uses.
type Format int

const (
	Native Format = iota
	Hashdeep
)

const (
	hashdeepBanner = "%%%% HASHDEEP-1.0"
	xzCompressionLevel = 6
)

// IsCompressed reports whether path names an xz-compressed database.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xz")
}

// openReader opens path for reading, transparently decompressing it if it
// has an .xz extension.
func openReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, herrors.FromOSError("open database", path, err)
	}
	if !IsCompressed(path) {
		return f, nil
	}
	zr, err := xz.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, herrors.New(herrors.DatabaseParseError, "decompress database", path, err)
	}
	return struct {
		io.Reader
		io.Closer
	}{zr, f}, nil
}

// CompressDatabase reads an existing native database at inputPath and
// writes an xz-compressed copy at inputPath+".xz", preserving the original.
func CompressDatabase(inputPath string) (string, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return "", herrors.FromOSError("open database for compression", inputPath, err)
	}
	defer in.Close()

	outPath := inputPath + ".xz"
	out, err := os.Create(outPath)
	if err != nil {
		return "", herrors.New(herrors.DatabaseWriteError, "create compressed database", outPath, err)
	}
	defer out.Close()

	// ulikunitz/xz exposes dictionary size rather than a numeric preset
	// level; its default writer config is the closest equivalent to the
	// original's "preset 6".
	zw, err := xz.NewWriter(out)
	if err != nil {
		return "", herrors.New(herrors.DatabaseWriteError, "compress database", outPath, err)
	}
	if _, err := io.Copy(zw, in); err != nil {
		return "", herrors.New(herrors.DatabaseWriteError, "compress database", outPath, err)
	}
	if err := zw.Close(); err != nil {
		return "", herrors.New(herrors.DatabaseWriteError, "finalize compressed database", outPath, err)
	}
	return outPath, nil
}

// DetectFormat inspects up to the first 10 non-empty lines of the
// (possibly decompressed) database to decide its format.
func DetectFormat(path string) (Format, error) {
	r, err := openReader(path)
	if err != nil {
		return Native, err
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	seen := 0
	for scanner.Scan() && seen < 10 {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		seen++
		switch {
		case strings.HasPrefix(line, "%"):
			return Hashdeep, nil
		case strings.Contains(line, ","):
			return Hashdeep, nil
		case strings.Contains(line, "  "):
			return Native, nil
		}
	}
	return Native, nil
}

// Read loads a database file, auto-detecting its format and transparently
// decompressing .xz input.
func Read(path string) (*Database, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, herrors.New(herrors.DatabaseNotFound, "read database", path, err)
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	r, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	switch format {
	case Hashdeep:
		return readHashdeep(r, path)
	default:
		return readNative(r, path)
	}
}

func readNative(r io.Reader, path string) (*Database, error) {
	db := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, relPath, ok := parseNativeLine(line)
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: skipping malformed line %d in database %s: %s\n", lineNum, path, line)
			continue
		}
		db.Put(relPath, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, herrors.New(herrors.DatabaseParseError, "read database", path, err)
	}
	return db, nil
}

// parseNativeLine splits HEX  ALG  {fast|normal}  PATH on the two-space
// separator. Any other shape is malformed.
func parseNativeLine(line string) (Entry, string, bool) {
	parts := strings.SplitN(line, "  ", 4)
	if len(parts) != 4 {
		return Entry{}, "", false
	}
	hash := strings.TrimSpace(parts[0])
	alg := strings.TrimSpace(parts[1])
	modeStr := strings.TrimSpace(parts[2])
	path := strings.TrimSpace(parts[3])

	var fast bool
	switch modeStr {
	case "fast":
		fast = true
	case "normal":
		fast = false
	default:
		return Entry{}, "", false
	}

	if hash == "" || alg == "" || path == "" {
		return Entry{}, "", false
	}

	return Entry{Hash: hash, Algorithm: alg, FastMode: fast}, pathutil.ToSlash(pathutil.ParseDBPath(path)), true
}

func readHashdeep(r io.Reader, path string) (*Database, error) {
	db := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var schemaAlgos []string
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "%%%%") {
			schemaAlgos = parseHashdeepSchema(trimmed)
			continue
		}
		if strings.HasPrefix(trimmed, "%") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.Split(trimmed, ",")
		if len(fields) < 3 {
			continue
		}
		size, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		numHashCols := len(fields) - 2 // size + filename bracket the hash columns
		if numHashCols < 1 {
			continue
		}
		firstHash := fields[1]
		relPath := strings.Join(fields[1+numHashCols:], ",")

		alg := "unknown"
		if len(schemaAlgos) > 0 && numHashCols == len(schemaAlgos) {
			alg = schemaAlgos[0]
		} else {
			alg = hashalgo.InferFromHashLength(len(firstHash))
		}

		db.Put(pathutil.ToSlash(pathutil.ParseDBPath(relPath)), Entry{
			Hash:      firstHash,
			Algorithm: alg,
			Size:      size,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, herrors.New(herrors.DatabaseParseError, "read database", path, err)
	}
	return db, nil
}

// parseHashdeepSchema extracts the algorithm list from a
// "%%%% size,alg1[,alg2...],filename" schema line.
func parseHashdeepSchema(line string) []string {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "%%%%"))
	fields := strings.Split(rest, ",")
	if len(fields) < 3 {
		return nil
	}
	return fields[1 : len(fields)-1]
}

// Write serializes db in native format to path, transparently compressing
// if path ends in .xz.
func Write(path string, db *Database) error {
	return write(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, p := range db.Paths() {
			e := db.Entries[p]
			mode := "normal"
			if e.FastMode {
				mode = "fast"
			}
			if _, err := fmt.Fprintf(bw, "%s  %s  %s  %s\n", e.Hash, e.Algorithm, mode, p); err != nil {
				return err
			}
		}
		return bw.Flush()
	}, path)
}

// WriteHashdeep serializes db in hashdeep format to path, using algorithms
// as the schema's algorithm list (only the first is persisted per entry,
// matching the data model's single-hash Entry).
func WriteHashdeep(path string, db *Database, algorithms []string) error {
	return write(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		fmt.Fprintln(bw, hashdeepBanner)
		fmt.Fprintf(bw, "%%%%%%%% size,%s,filename\n", strings.Join(algorithms, ","))
		for _, p := range db.Paths() {
			e := db.Entries[p]
			if _, err := fmt.Fprintf(bw, "%d,%s,%s\n", e.Size, e.Hash, p); err != nil {
				return err
			}
		}
		return bw.Flush()
	}, path)
}

func write(path string, body func(io.Writer) error, errPath string) error {
	f, err := os.Create(path)
	if err != nil {
		return herrors.New(herrors.DatabaseWriteError, "create database", errPath, err)
	}
	defer f.Close()

	if !IsCompressed(path) {
		if err := body(f); err != nil {
			return herrors.New(herrors.DatabaseWriteError, "write database", errPath, err)
		}
		return nil
	}

	zw, err := xz.NewWriter(f)
	if err != nil {
		return herrors.New(herrors.DatabaseWriteError, "compress database", errPath, err)
	}
	if err := body(zw); err != nil {
		return herrors.New(herrors.DatabaseWriteError, "write database", errPath, err)
	}
	if err := zw.Close(); err != nil {
		return herrors.New(herrors.DatabaseWriteError, "finalize compressed database", errPath, err)
	}
	return nil
}
