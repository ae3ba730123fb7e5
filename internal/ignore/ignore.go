// Package ignore loads gitignore-style .hashignore chains and decides
// whether a scanned path should be excluded from a database.
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/ivoronin/hashkeep/internal/herrors"
)

const ignoreFileName = ".hashignore"

// layer is one loaded .hashignore file, paired with the directory it was
// found in so matches can be tested relative to that directory.
type layer struct {
	dir     string
	matcher *gitignore.GitIgnore
}

// Matcher combines every .hashignore found from the scan root up through
// its parent directories. A path is ignored as soon as any layer matches
// it; a negation pattern only overrides patterns in its own file, not
// those of other layers.
type Matcher struct {
	root   string
	layers []layer // ordered closest (root) first, ancestors after
}

// Load walks from root upward to the filesystem root, combining every
// .hashignore file it finds along the way. Malformed patterns are logged
// and skipped rather than treated as fatal, per the ignore matcher's
// contract.
func Load(root string) (*Matcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, herrors.FromOSError("scan directory", root, err)
	}

	m := &Matcher{root: absRoot}

	// Self-exclusion: .hashignore files are never digested, regardless of
	// any other rule.
	self, _ := gitignore.CompileIgnoreLines(ignoreFileName)
	m.layers = append(m.layers, layer{dir: absRoot, matcher: self})

	dir := absRoot
	for {
		candidate := filepath.Join(dir, ignoreFileName)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			gi, parseErr := gitignore.CompileIgnoreFile(candidate)
			if parseErr != nil {
				// Malformed .hashignore: warn and continue without it.
				os.Stderr.WriteString("warning: failed to parse " + candidate + ": " + parseErr.Error() + "\n")
			} else {
				m.layers = append(m.layers, layer{dir: dir, matcher: gi})
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return m, nil
}

// ShouldIgnore reports whether relPath (relative to the scan root) should
// be excluded. isDir marks directory-only patterns (trailing "/").
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	absPath := filepath.Join(m.root, relPath)

	for _, l := range m.layers {
		testPath, err := filepath.Rel(l.dir, absPath)
		if err != nil || strings.HasPrefix(testPath, "..") {
			continue
		}
		testPath = filepath.ToSlash(testPath)
		if isDir {
			testPath += "/"
		}
		if l.matcher.MatchesPath(testPath) {
			return true
		}
	}
	return false
}

// AddPatterns adds ad hoc gitignore-style patterns (e.g. CLI --exclude
// flags) to whatever .hashignore chain Load already found, as one more
// layer matched relative to the scan root. As with every layer, a match
// excludes the path regardless of the other layers.
func (m *Matcher) AddPatterns(patterns []string) error {
	if len(patterns) == 0 {
		return nil
	}
	gi, err := gitignore.CompileIgnoreLines(patterns...)
	if err != nil {
		return herrors.New(herrors.InvalidArguments, "compile exclude patterns", "", err)
	}
	m.layers = append([]layer{{dir: m.root, matcher: gi}}, m.layers...)
	return nil
}
