package hashalgo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComputeTextSHA256Vectors(t *testing.T) {
	cases := map[string]string{
		"":            "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		"hello world": "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
	}
	for text, want := range cases {
		res, err := ComputeText(text, []string{"sha256"})
		if err != nil {
			t.Fatalf("ComputeText(%q): %v", text, err)
		}
		if got := res.Digests["sha256"]; got != want {
			t.Errorf("ComputeText(%q) sha256 = %s, want %s", text, got, want)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")
	data := make([]byte, 5*1024*1024)
	for i := range data {
		data[i] = byte(i)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	r1, err := Compute(path, []string{"sha256"}, false)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Compute(path, []string{"sha256"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Digests["sha256"] != r2.Digests["sha256"] {
		t.Errorf("digest not deterministic across runs")
	}
}

func TestFastModeCutover(t *testing.T) {
	// Shrink the sampling region so the test doesn't materialize
	// hundred-megabyte fixtures; the cutover logic is size-relative.
	origRegion, origThreshold := regionSize, fastModeSize
	regionSize = 1024
	fastModeSize = 3 * regionSize
	t.Cleanup(func() { regionSize, fastModeSize = origRegion, origThreshold })

	dir := t.TempDir()

	below := filepath.Join(dir, "below.bin")
	belowData := make([]byte, regionSize) // well under fastModeSize
	for i := range belowData {
		belowData[i] = byte(i % 251)
	}
	if err := os.WriteFile(below, belowData, 0o644); err != nil {
		t.Fatal(err)
	}

	normal, err := Compute(below, []string{"sha256"}, false)
	if err != nil {
		t.Fatal(err)
	}
	fast, err := Compute(below, []string{"sha256"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if normal.Digests["sha256"] != fast.Digests["sha256"] {
		t.Errorf("fast digest should equal normal digest below the fast-mode threshold")
	}
	if fast.Fast {
		t.Errorf("Fast should be false for a file under the threshold")
	}

	above := filepath.Join(dir, "above.bin")
	aboveData := make([]byte, fastModeSize+10)
	for i := range aboveData {
		aboveData[i] = byte(i % 251)
	}
	if err := os.WriteFile(above, aboveData, 0o644); err != nil {
		t.Fatal(err)
	}
	normalAbove, err := Compute(above, []string{"sha256"}, false)
	if err != nil {
		t.Fatal(err)
	}
	fastAbove, err := Compute(above, []string{"sha256"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if normalAbove.Digests["sha256"] == fastAbove.Digests["sha256"] {
		t.Errorf("fast and normal digests should differ at/above the fast-mode threshold")
	}
	if !fastAbove.Fast {
		t.Errorf("Fast should be true at/above the threshold")
	}
}

func TestCanonicalAliases(t *testing.T) {
	cases := map[string]string{
		"sha-256":     "sha256",
		"blake2b-512": "blake2b",
		"xxh3-128":    "xxh128",
	}
	for alias, want := range cases {
		got, ok := Canonical(alias)
		if !ok || got != want {
			t.Errorf("Canonical(%q) = %q, %v; want %q, true", alias, got, ok, want)
		}
	}
}

func TestDescribePostQuantumAndCryptographic(t *testing.T) {
	d, err := Describe("sha3-256")
	if err != nil {
		t.Fatal(err)
	}
	if !d.PostQuantum || !d.Cryptographic {
		t.Errorf("sha3-256 should be post-quantum and cryptographic, got %+v", d)
	}

	d, err = Describe("xxh3")
	if err != nil {
		t.Fatal(err)
	}
	if d.PostQuantum || d.Cryptographic {
		t.Errorf("xxh3 should be neither post-quantum nor cryptographic, got %+v", d)
	}

	d, err = Describe("blake3")
	if err != nil {
		t.Fatal(err)
	}
	if d.PostQuantum || !d.Cryptographic {
		t.Errorf("blake3 should be cryptographic, not post-quantum, got %+v", d)
	}
}

func TestNewUnsupportedAlgorithm(t *testing.T) {
	if _, err := New("not-a-real-algorithm"); err == nil {
		t.Errorf("expected error for unsupported algorithm")
	}
}
