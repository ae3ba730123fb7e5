// Package hashalgo implements the algorithm registry and streaming hasher
// described for hashkeep's hash engine: a uniform interface over roughly a
// dozen digest algorithms, canonical-name resolution, and the deterministic
// fast-mode sampling scheme used for very large files.
package hashalgo

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"

	"github.com/ivoronin/hashkeep/internal/herrors"
)

// Hasher is a one-shot digest sink: Write feeds bytes (any number of times,
// any chunk size), Sum finalizes without mutating further state. The
// standard library's hash.Hash already has exactly this shape, so every
// algorithm below is wired in as one.
type Hasher = hash.Hash

// Descriptor describes one registered algorithm.
type Descriptor struct {
	Name          string // canonical, lowercased, hyphenated name
	OutputBits    int
	PostQuantum   bool // true only for the sha3-* family
	Cryptographic bool // false only for the xxh* family
}

type entry struct {
	desc    Descriptor
	factory func() Hasher
}

var registry = map[string]entry{
	"md5":       {Descriptor{"md5", 128, false, true}, func() Hasher { return md5.New() }},
	"sha1":      {Descriptor{"sha1", 160, false, true}, func() Hasher { return sha1.New() }},
	"sha224":    {Descriptor{"sha224", 224, false, true}, func() Hasher { return sha256.New224() }},
	"sha256":    {Descriptor{"sha256", 256, false, true}, func() Hasher { return sha256.New() }},
	"sha384":    {Descriptor{"sha384", 384, false, true}, func() Hasher { return sha512.New384() }},
	"sha512":    {Descriptor{"sha512", 512, false, true}, func() Hasher { return sha512.New() }},
	"sha3-224":  {Descriptor{"sha3-224", 224, true, true}, func() Hasher { return sha3.New224() }},
	"sha3-256":  {Descriptor{"sha3-256", 256, true, true}, func() Hasher { return sha3.New256() }},
	"sha3-384":  {Descriptor{"sha3-384", 384, true, true}, func() Hasher { return sha3.New384() }},
	"sha3-512":  {Descriptor{"sha3-512", 512, true, true}, func() Hasher { return sha3.New512() }},
	"blake2b":   {Descriptor{"blake2b", 512, false, true}, newBlake2b},
	"blake2s":   {Descriptor{"blake2s", 256, false, true}, newBlake2s},
	"blake3":    {Descriptor{"blake3", 256, false, true}, func() Hasher { return blake3.New() }},
	"xxh3":      {Descriptor{"xxh3", 64, false, false}, func() Hasher { return xxh3.New() }},
	"xxh128":    {Descriptor{"xxh128", 128, false, false}, func() Hasher { return xxh3.New128() }},
}

func newBlake2b() Hasher {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err) // nil key is always valid per blake2b.New512's contract
	}
	return h
}

func newBlake2s() Hasher {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

// aliases maps alternate spellings to their canonical registry key.
var aliases = map[string]string{
	"sha-1":       "sha1",
	"sha-224":     "sha224",
	"sha-256":     "sha256",
	"sha-384":     "sha384",
	"sha-512":     "sha512",
	"blake2b-512": "blake2b",
	"blake2s-256": "blake2s",
	"xxhash3":     "xxh3",
	"xxh3-64":     "xxh3",
	"xxh3-128":    "xxh128",
}

// Canonical resolves an algorithm name (including known aliases) to its
// canonical registry key.
func Canonical(name string) (string, bool) {
	if _, ok := registry[name]; ok {
		return name, true
	}
	if canon, ok := aliases[name]; ok {
		return canon, true
	}
	return "", false
}

// Describe returns the AlgorithmDescriptor for a canonical or aliased name.
func Describe(name string) (Descriptor, error) {
	canon, ok := Canonical(name)
	if !ok {
		return Descriptor{}, herrors.New(herrors.UnsupportedAlgorithm, "describe algorithm", name, nil)
	}
	return registry[canon].desc, nil
}

// New constructs a fresh Hasher for the named algorithm.
func New(name string) (Hasher, error) {
	canon, ok := Canonical(name)
	if !ok {
		return nil, herrors.New(herrors.UnsupportedAlgorithm, "new hasher", name, nil)
	}
	return registry[canon].factory(), nil
}

// Names returns every canonical algorithm name, for the `list` command.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// InferFromHashLength guesses an algorithm from a hex digest's length, used
// when a hashdeep database omits or mismatches its schema line. Ambiguous
// lengths (64 hex chars) resolve to sha256 as the single canonical choice.
func InferFromHashLength(hexLen int) string {
	switch hexLen {
	case 32:
		return "md5"
	case 40:
		return "sha1"
	case 56:
		return "sha224"
	case 64:
		return "sha256"
	case 96:
		return "sha384"
	case 128:
		return "sha512"
	default:
		return "unknown"
	}
}

func init() {
	// Guard against an alias pointing at an algorithm the registry lacks.
	for alias, canon := range aliases {
		if _, ok := registry[canon]; !ok {
			panic(fmt.Sprintf("hashalgo: alias %q points at unknown algorithm %q", alias, canon))
		}
	}
}
