// Package pathutil implements the path normalization and canonicalization
// rules shared by the database codec, walker, and differential engines.
package pathutil

import (
	"path/filepath"
	"strings"
)

// NormalizeString rewrites path separators to the platform separator. On
// Unix this means backslashes become forward slashes; database entries
// written on Windows are read correctly on Unix and vice versa.
func NormalizeString(s string) string {
	if filepath.Separator == '\\' {
		return strings.ReplaceAll(s, "/", "\\")
	}
	return strings.ReplaceAll(s, "\\", "/")
}

// ParseDBPath parses a path as stored in a database entry, accepting either
// separator, and returns a platform-native path.
func ParseDBPath(s string) string {
	return filepath.FromSlash(NormalizeString(s))
}

// TryCanonicalize resolves symlinks and makes p absolute if it exists.
// If p does not exist, it returns an absolute form of p without resolving
// it, so database entries referring to deleted files can still be
// classified by their original path.
func TryCanonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Path does not exist, or a component along the way doesn't;
		// degrade gracefully to the unresolved absolute form.
		return abs, nil
	}
	return resolved, nil
}

// RelativeTo canonicalizes both base and p, then strips base as a prefix of
// p. If p does not live under base, it returns p's canonical absolute form
// instead of failing.
func RelativeTo(base, p string) (string, error) {
	canonBase, err := TryCanonicalize(base)
	if err != nil {
		return "", err
	}
	canonPath, err := TryCanonicalize(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(canonBase, canonPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return canonPath, nil
	}
	return rel, nil
}

// Clean removes "." components and collapses ".." against the preceding
// normal component, without touching the filesystem. An empty result
// becomes ".".
func Clean(p string) string {
	sep := string(filepath.Separator)
	parts := strings.Split(filepath.FromSlash(p), sep)

	var out []string
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if n := len(out); n > 0 && out[n-1] != ".." {
				out = out[:n-1]
				continue
			}
			out = append(out, part)
		default:
			out = append(out, part)
		}
	}

	result := strings.Join(out, sep)
	if result == "" {
		return "."
	}
	if strings.HasPrefix(p, sep) || strings.HasPrefix(filepath.FromSlash(p), sep) {
		result = sep + result
	}
	return result
}

// ToSlash converts a platform path to its forward-slash database form.
func ToSlash(p string) string {
	return filepath.ToSlash(p)
}

// ResolveUnder joins a database-relative, forward-slash path onto root,
// producing a platform-native absolute-ish path for filesystem access.
func ResolveUnder(root, relPath string) string {
	return filepath.Join(root, filepath.FromSlash(relPath))
}
