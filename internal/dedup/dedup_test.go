package dedup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunFindsDuplicates(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.txt"), "same content")
	mustWrite(t, filepath.Join(dir, "b.txt"), "same content")
	mustWrite(t, filepath.Join(dir, "unique.txt"), "unique content here")

	report, err := Run(context.Background(), Config{Root: dir, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Groups) != 1 {
		t.Fatalf("Groups = %+v, want 1 group", report.Groups)
	}
	g := report.Groups[0]
	if g.Count != 2 {
		t.Errorf("Count = %d, want 2", g.Count)
	}
	if g.WastedSpace != g.FileSize {
		t.Errorf("WastedSpace = %d, want %d", g.WastedSpace, g.FileSize)
	}
	if g.Paths[0] != "a.txt" || g.Paths[1] != "b.txt" {
		t.Errorf("Paths = %v, want [a.txt b.txt]", g.Paths)
	}
}

func TestRunNoDuplicates(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.txt"), "content A")
	mustWrite(t, filepath.Join(dir, "b.txt"), "content B")

	report, err := Run(context.Background(), Config{Root: dir, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Groups) != 0 {
		t.Errorf("Groups = %+v, want none", report.Groups)
	}
}

func TestRunHardlinksHashedOnceButAllPathsReported(t *testing.T) {
	dir := t.TempDir()
	path1 := filepath.Join(dir, "a.txt")
	mustWrite(t, path1, "linked content")
	path2 := filepath.Join(dir, "b.txt")
	if err := os.Link(path1, path2); err != nil {
		t.Skipf("hardlinks unsupported: %v", err)
	}
	path3 := filepath.Join(dir, "c.txt")
	mustWrite(t, path3, "linked content")

	report, err := Run(context.Background(), Config{Root: dir, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Groups) != 1 {
		t.Fatalf("Groups = %+v, want 1 group", report.Groups)
	}
	if report.Groups[0].Count != 3 {
		t.Errorf("Count = %d, want 3 (two hardlinks + one independent copy)", report.Groups[0].Count)
	}
}

func TestRunReportsHardlinkPairWithNoIndependentCopy(t *testing.T) {
	dir := t.TempDir()
	path1 := filepath.Join(dir, "a.txt")
	mustWrite(t, path1, "only linked, never copied")
	path2 := filepath.Join(dir, "b.txt")
	if err := os.Link(path1, path2); err != nil {
		t.Skipf("hardlinks unsupported: %v", err)
	}

	report, err := Run(context.Background(), Config{Root: dir, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Groups) != 1 {
		t.Fatalf("Groups = %+v, want 1 group (a lone hardlinked pair is still a duplicate)", report.Groups)
	}
	if report.Groups[0].Count != 2 {
		t.Errorf("Count = %d, want 2", report.Groups[0].Count)
	}
}

func TestRunGroupsSortedByWastedSpaceDescending(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, 200)
	small := make([]byte, 50)
	mustWrite(t, filepath.Join(dir, "big1.bin"), string(big))
	mustWrite(t, filepath.Join(dir, "big2.bin"), string(big))
	mustWrite(t, filepath.Join(dir, "big3.bin"), string(big))
	mustWrite(t, filepath.Join(dir, "small1.bin"), string(small))
	mustWrite(t, filepath.Join(dir, "small2.bin"), string(small))

	report, err := Run(context.Background(), Config{Root: dir, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Groups) != 2 {
		t.Fatalf("Groups = %+v, want 2 groups", report.Groups)
	}
	if report.Groups[0].WastedSpace < report.Groups[1].WastedSpace {
		t.Errorf("groups not sorted descending by wasted space: %+v", report.Groups)
	}
}
