// Package herrors defines the error-kind taxonomy shared by every hashkeep
// engine, and the classification rule that turns an OS error into one of
// them.
package herrors

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind identifies the category of a hashkeep error, independent of its
// message text. Per-file errors inside scan/verify/dedup are never
// propagated as fatal. Kind does not affect the process exit status: any
// error that reaches the CLI exits with status 1.
type Kind int

const (
	// Other is the zero value: an error with no specific classification.
	Other Kind = iota
	FileNotFound
	DirectoryNotFound
	PermissionDenied
	IoError
	UnsupportedAlgorithm
	HashComputationFailed
	DatabaseNotFound
	DatabaseParseError
	DatabaseWriteError
	EmptyDatabase
	VerificationFailed
	InvalidArguments
	MissingRequiredArgument
	BenchmarkFailed
)

func (k Kind) String() string {
	switch k {
	case FileNotFound:
		return "file not found"
	case DirectoryNotFound:
		return "directory not found"
	case PermissionDenied:
		return "permission denied"
	case IoError:
		return "I/O error"
	case UnsupportedAlgorithm:
		return "unsupported algorithm"
	case HashComputationFailed:
		return "hash computation failed"
	case DatabaseNotFound:
		return "database not found"
	case DatabaseParseError:
		return "database parse error"
	case DatabaseWriteError:
		return "database write error"
	case EmptyDatabase:
		return "empty database"
	case VerificationFailed:
		return "verification failed"
	case InvalidArguments:
		return "invalid arguments"
	case MissingRequiredArgument:
		return "missing required argument"
	case BenchmarkFailed:
		return "benchmark failed"
	default:
		return "error"
	}
}

// Error wraps an underlying cause with a Kind and an operation/path hint.
type Error struct {
	Kind Kind
	Op   string // operation being attempted, e.g. "scan", "open database"
	Path string // path involved, if any
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		fmt.Fprintf(&b, " (%s)", e.Op)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, ": %s", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with the given kind.
func New(kind Kind, op, path string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: cause}
}

// KindOf returns the Kind carried by err, or Other if err is not (or does
// not wrap) a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// FromOSError classifies a raw OS error into a hashkeep Error. op is used
// both as the human-readable hint and, via its wording, to disambiguate
// FileNotFound from DirectoryNotFound: an op mentioning "directory" or
// "scan" maps a NotFound error to DirectoryNotFound rather than
// FileNotFound.
func FromOSError(op, path string, err error) *Error {
	if err == nil {
		return nil
	}
	switch {
	case os.IsNotExist(err):
		if strings.Contains(op, "directory") || strings.Contains(op, "scan") {
			return New(DirectoryNotFound, op, path, err)
		}
		return New(FileNotFound, op, path, err)
	case os.IsPermission(err):
		return New(PermissionDenied, op, path, err)
	default:
		return New(IoError, op, path, err)
	}
}
