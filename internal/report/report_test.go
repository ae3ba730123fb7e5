package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ivoronin/hashkeep/internal/comparator"
	"github.com/ivoronin/hashkeep/internal/dedup"
	"github.com/ivoronin/hashkeep/internal/verifier"
)

func TestFormatSize(t *testing.T) {
	cases := map[int64]string{
		500:            "500 bytes",
		2048:           "2.00 KiB",
		5 * 1024 * 1024: "5.00 MiB",
	}
	for bytes, want := range cases {
		if got := formatSize(bytes); got != want {
			t.Errorf("formatSize(%d) = %q, want %q", bytes, got, want)
		}
	}
}

func TestVerifyPlainTextListsEachCategory(t *testing.T) {
	rep := &verifier.Report{
		Matches:    3,
		Mismatches: []verifier.Mismatch{{Path: "a.txt", Expected: "aaa", Actual: "bbb"}},
		Missing:    []string{"gone.txt"},
		New:        []string{"extra.txt"},
	}
	out := VerifyPlainText(rep)
	for _, want := range []string{"Matched:  3", "a.txt", "aaa", "bbb", "gone.txt", "extra.txt"} {
		if !strings.Contains(out, want) {
			t.Errorf("plain text missing %q:\n%s", want, out)
		}
	}
}

func TestVerifyJSONRoundTrips(t *testing.T) {
	rep := &verifier.Report{Matches: 2, Missing: []string{"gone.txt"}}
	out, err := VerifyJSON(rep)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("not valid JSON: %v", err)
	}
	meta, ok := decoded["metadata"].(map[string]any)
	if !ok || meta["timestamp"] == "" {
		t.Errorf("missing metadata.timestamp: %v", decoded)
	}
	summary, ok := decoded["summary"].(map[string]any)
	if !ok || summary["matched"] != float64(2) {
		t.Errorf("summary.matched wrong: %v", decoded)
	}
}

func TestVerifyHashdeepAuditPassHeader(t *testing.T) {
	rep := &verifier.Report{Matches: 4}
	out := VerifyHashdeepAudit(rep)
	if !strings.HasPrefix(out, "hashdeep: Audit passed\n") {
		t.Errorf("expected pass header, got:\n%s", out)
	}
}

func TestVerifyHashdeepAuditFailsOnMismatch(t *testing.T) {
	rep := &verifier.Report{
		Matches:    1,
		Mismatches: []verifier.Mismatch{{Path: "a.txt", Expected: "e", Actual: "a"}},
	}
	out := VerifyHashdeepAudit(rep)
	if !strings.HasPrefix(out, "hashdeep: Audit failed\n") {
		t.Errorf("expected fail header, got:\n%s", out)
	}
	if !strings.Contains(out, "a.txt") {
		t.Errorf("missing mismatch listing:\n%s", out)
	}
}

func TestCompareHashdeepAuditPassHeader(t *testing.T) {
	rep := &comparator.Report{Unchanged: 5}
	out := CompareHashdeepAudit(rep)
	if !strings.HasPrefix(out, "hashdeep: Audit passed\n") {
		t.Errorf("expected pass header, got:\n%s", out)
	}
	if !strings.Contains(out, "Files matched: 5") {
		t.Errorf("missing matched count:\n%s", out)
	}
}

func TestCompareHashdeepAuditFailsOnAnyDiff(t *testing.T) {
	rep := &comparator.Report{
		Unchanged: 1,
		Changed:   []comparator.Changed{{Path: "a.txt", Hash1: "h1", Hash2: "h2"}},
	}
	out := CompareHashdeepAudit(rep)
	if !strings.HasPrefix(out, "hashdeep: Audit failed\n") {
		t.Errorf("expected fail header, got:\n%s", out)
	}
	if !strings.Contains(out, "Modified files:") || !strings.Contains(out, "a.txt") {
		t.Errorf("missing modified-files listing:\n%s", out)
	}
}

func TestCompareHashdeepAuditMovedFiles(t *testing.T) {
	rep := &comparator.Report{
		Moved: []comparator.Moved{{From: "old.txt", To: "new.txt", Hash: "h"}},
	}
	out := CompareHashdeepAudit(rep)
	if !strings.Contains(out, "new.txt: Moved from old.txt") {
		t.Errorf("missing move listing:\n%s", out)
	}
}

func TestComparePlainTextSummary(t *testing.T) {
	rep := &comparator.Report{
		DB1Total: 4, DB2Total: 3, Unchanged: 2,
		Removed: []string{"gone.txt"},
	}
	out := ComparePlainText(rep)
	for _, want := range []string{"Database 1: 4 files", "Database 2: 3 files", "Unchanged:  2 files", "gone.txt"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestCompareJSONElidesEmptyOptionalFields(t *testing.T) {
	rep := &comparator.Report{DB1Total: 1, DB2Total: 1, Unchanged: 1}
	out, err := CompareJSON(rep)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("not valid JSON: %v", err)
	}
	// The summary object always carries these names as counts; only the
	// top-level lists are optional.
	for _, absent := range []string{"changed", "moved", "removed", "added"} {
		if _, ok := decoded[absent]; ok {
			t.Errorf("expected %q to be elided when empty:\n%s", absent, out)
		}
	}
}

func TestDedupPlainTextNoDuplicates(t *testing.T) {
	rep := &dedup.Report{Stats: &dedup.Stats{}}
	out := DedupPlainText(rep)
	if !strings.Contains(out, "No duplicates found.") {
		t.Errorf("expected no-duplicates message:\n%s", out)
	}
}

func TestDedupPlainTextListsGroups(t *testing.T) {
	rep := &dedup.Report{
		Stats: &dedup.Stats{},
		Groups: []dedup.Group{
			{Hash: "abc", Paths: []string{"a.txt", "b.txt"}, Count: 2, FileSize: 1024, WastedSpace: 1024},
		},
	}
	out := DedupPlainText(rep)
	for _, want := range []string{"abc", "a.txt", "b.txt", "1.00 KiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestDedupJSONRoundTrips(t *testing.T) {
	rep := &dedup.Report{
		Stats:  &dedup.Stats{},
		Groups: []dedup.Group{{Hash: "abc", Paths: []string{"a.txt", "b.txt"}, Count: 2, FileSize: 10, WastedSpace: 10}},
	}
	out, err := DedupJSON(rep)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("not valid JSON: %v", err)
	}
	groups, ok := decoded["groups"].([]any)
	if !ok || len(groups) != 1 {
		t.Errorf("expected one group, got: %v", decoded["groups"])
	}
}
