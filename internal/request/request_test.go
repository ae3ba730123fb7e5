package request

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ivoronin/hashkeep/internal/herrors"
)

func TestParseSize(t *testing.T) {
	got, err := ParseSize("10MiB")
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(10 * 1024 * 1024); got != want {
		t.Errorf("ParseSize(10MiB) = %d, want %d", got, want)
	}
}

func TestParseSizeRejectsGarbage(t *testing.T) {
	if _, err := ParseSize("not-a-size"); err == nil {
		t.Fatal("expected error for invalid size")
	} else if herrors.KindOf(err) != herrors.InvalidArguments {
		t.Errorf("Kind = %v, want InvalidArguments", herrors.KindOf(err))
	}
}

func TestValidateGlobPatternsRejectsMalformed(t *testing.T) {
	if err := ValidateGlobPatterns([]string{"[unterminated"}); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestResolveAlgorithmsDefaultsToBlake3(t *testing.T) {
	algs, err := ResolveAlgorithms(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(algs) != 1 || algs[0] != "blake3" {
		t.Errorf("algs = %v, want [blake3]", algs)
	}
}

func TestResolveAlgorithmsRejectsUnknown(t *testing.T) {
	if _, err := ResolveAlgorithms([]string{"not-a-real-algorithm"}); err == nil {
		t.Fatal("expected error for unknown algorithm")
	} else if herrors.KindOf(err) != herrors.UnsupportedAlgorithm {
		t.Errorf("Kind = %v, want UnsupportedAlgorithm", herrors.KindOf(err))
	}
}

func TestNewHashRequestRequiresPaths(t *testing.T) {
	if _, err := NewHashRequest(nil, nil, false); err == nil {
		t.Fatal("expected error for missing paths")
	} else if herrors.KindOf(err) != herrors.MissingRequiredArgument {
		t.Errorf("Kind = %v, want MissingRequiredArgument", herrors.KindOf(err))
	}
}

func TestNewHashRequestJSONOutput(t *testing.T) {
	req, err := NewHashRequest([]string{"a.txt"}, []string{"sha256"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if req.Output != OutputJSON {
		t.Errorf("Output = %v, want OutputJSON", req.Output)
	}
	if req.Algorithms[0] != "sha256" {
		t.Errorf("Algorithms = %v, want [sha256]", req.Algorithms)
	}
}

func TestNewScanRequestRequiresDatabasePath(t *testing.T) {
	if _, err := NewScanRequest(".", "", nil, false, false, false, "", 0, false, nil, "", false); err == nil {
		t.Fatal("expected error for missing database path")
	}
}

func TestNewScanRequestDefaultsWorkersAndFormat(t *testing.T) {
	req, err := NewScanRequest(".", "out.db", nil, false, false, false, "", 0, false, nil, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if req.Workers <= 0 {
		t.Errorf("Workers = %d, want > 0", req.Workers)
	}
	if req.Format != "standard" {
		t.Errorf("Format = %q, want standard", req.Format)
	}
}

func TestNewScanRequestRejectsBadFormat(t *testing.T) {
	if _, err := NewScanRequest(".", "out.db", nil, false, false, false, "weird", 0, false, nil, "", false); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestNewVerifyRequestNonMatchingGlobFallsBackToLiteral(t *testing.T) {
	req, err := NewVerifyRequest("no-such-file-*.db", ".", 0, false, "", false, false)
	if err != nil {
		t.Fatalf("expected a literal fallback, not an error: %v", err)
	}
	if req.DatabasePath != "no-such-file-*.db" {
		t.Errorf("DatabasePath = %q, want literal pattern preserved", req.DatabasePath)
	}
}

func TestNewVerifyRequestDefaultsRootToDatabaseDir(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db.txt")
	if err := os.WriteFile(dbPath, []byte("db"), 0o644); err != nil {
		t.Fatal(err)
	}

	req, err := NewVerifyRequest(dbPath, "", 0, false, "", false, false)
	if err != nil {
		t.Fatal(err)
	}
	if req.Root != dir {
		t.Errorf("Root = %q, want %q (database's directory)", req.Root, dir)
	}
}

func TestNewVerifyRequestAuditOutputWinsOverJSON(t *testing.T) {
	req, err := NewVerifyRequest("db.txt", ".", 0, false, "", true, true)
	if err != nil {
		t.Fatal(err)
	}
	if req.Output != OutputHashdeepAudit {
		t.Errorf("Output = %v, want OutputHashdeepAudit", req.Output)
	}
}

func TestNewCompareRequestRequiresBothDatabases(t *testing.T) {
	if _, err := NewCompareRequest("db1.txt", "", false, false); err == nil {
		t.Fatal("expected error for missing db2")
	}
}

func TestNewDedupRequestValidatesAlgorithm(t *testing.T) {
	if _, err := NewDedupRequest(".", "not-real", false, 0, false, nil, "", false, false); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}

func TestNewBenchmarkRequestDefaultsSize(t *testing.T) {
	req, err := NewBenchmarkRequest(nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if req.SizeBytes <= 0 {
		t.Errorf("SizeBytes = %d, want > 0", req.SizeBytes)
	}
}

func TestNewListRequestOutput(t *testing.T) {
	if NewListRequest(true).Output != OutputJSON {
		t.Error("expected JSON output when requested")
	}
	if NewListRequest(false).Output != OutputPlainText {
		t.Error("expected plain-text output by default")
	}
}
