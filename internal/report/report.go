// Package report implements the report projector (spec component C10):
// three textual projections — plain-text, JSON, and hashdeep-audit —
// over the scan, verify, compare, and dedup engines' result types.
//
// Grounded on original_source/src/compare.rs's CompareReport::display /
// to_plain_text / to_hashdeep / to_json methods, generalized from a
// single report type to the four engines' distinct result shapes, and
// from println!-based formatting to strings.Builder.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ivoronin/hashkeep/internal/comparator"
	"github.com/ivoronin/hashkeep/internal/dedup"
	"github.com/ivoronin/hashkeep/internal/scanpipeline"
	"github.com/ivoronin/hashkeep/internal/verifier"
)

// formatSize renders bytes with 1024-based units and two-decimal
// precision, per spec's plain-text sizing rule. Unlike
// github.com/dustin/go-humanize's IBytes (one decimal, used for the
// live progress Stringer), the projector wants two decimal places to
// match the original report's own format_size convention.
func formatSize(bytes int64) string {
	const (
		kib = 1024
		mib = kib * 1024
		gib = mib * 1024
		tib = gib * 1024
	)
	b := float64(bytes)
	switch {
	case bytes >= tib:
		return fmt.Sprintf("%.2f TiB", b/tib)
	case bytes >= gib:
		return fmt.Sprintf("%.2f GiB", b/gib)
	case bytes >= mib:
		return fmt.Sprintf("%.2f MiB", b/mib)
	case bytes >= kib:
		return fmt.Sprintf("%.2f KiB", b/kib)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ScanPlainText renders a scan result as a human-readable summary.
func ScanPlainText(res *scanpipeline.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scan complete: %d files (%s) in %s\n",
		res.Stats.FilesProcessed.Load(), formatSize(res.Stats.TotalBytes.Load()),
		res.Stats.Duration().Truncate(10*time.Millisecond))
	fmt.Fprintf(&b, "  Failed:  %d files\n", res.Stats.FilesFailed.Load())
	fmt.Fprintf(&b, "  Skipped: %d files\n", res.Stats.FilesSkipped.Load())
	if len(res.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}
	return b.String()
}

type scanJSON struct {
	Metadata struct {
		Timestamp string `json:"timestamp"`
	} `json:"metadata"`
	Summary struct {
		FilesProcessed int64  `json:"files_processed"`
		FilesFailed    int64  `json:"files_failed"`
		FilesSkipped   int64  `json:"files_skipped"`
		TotalBytes     int64  `json:"total_bytes"`
		Duration       string `json:"duration"`
	} `json:"summary"`
	Warnings []string `json:"warnings,omitempty"`
}

// ScanJSON renders a scan result as the stable JSON schema.
func ScanJSON(res *scanpipeline.Result) (string, error) {
	out := scanJSON{Warnings: res.Warnings}
	out.Metadata.Timestamp = timestamp()
	out.Summary.FilesProcessed = res.Stats.FilesProcessed.Load()
	out.Summary.FilesFailed = res.Stats.FilesFailed.Load()
	out.Summary.FilesSkipped = res.Stats.FilesSkipped.Load()
	out.Summary.TotalBytes = res.Stats.TotalBytes.Load()
	out.Summary.Duration = res.Stats.Duration().Truncate(10 * time.Millisecond).String()

	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// VerifyPlainText renders a verify report as a human-readable summary.
func VerifyPlainText(rep *verifier.Report) string {
	var b strings.Builder
	b.WriteString("=== Verify Report ===\n\n")
	fmt.Fprintf(&b, "Summary:\n")
	fmt.Fprintf(&b, "  Matched:  %d files\n", rep.Matches)
	fmt.Fprintf(&b, "  Mismatch: %d files\n", len(rep.Mismatches))
	fmt.Fprintf(&b, "  Missing:  %d files\n", len(rep.Missing))
	fmt.Fprintf(&b, "  New:      %d files\n", len(rep.New))

	if len(rep.Mismatches) > 0 {
		b.WriteString("\nMismatched Files:\n")
		for _, m := range rep.Mismatches {
			fmt.Fprintf(&b, "  %s\n    Expected: %s\n    Actual:   %s\n", m.Path, m.Expected, m.Actual)
		}
	}
	if len(rep.Missing) > 0 {
		b.WriteString("\nMissing Files (in database, not on disk):\n")
		for _, p := range rep.Missing {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	if len(rep.New) > 0 {
		b.WriteString("\nNew Files (on disk, not in database):\n")
		for _, p := range rep.New {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	return b.String()
}

// VerifyHashdeepAudit renders a verify report in hashdeep's audit-mode
// style, paralleling CompareHashdeepAudit's five named counters. The
// verify engine never detects moves (that is compare's job), so the
// "Files moved" line is always zero here.
func VerifyHashdeepAudit(rep *verifier.Report) string {
	var b strings.Builder

	auditPassed := len(rep.Mismatches) == 0 && len(rep.Missing) == 0
	if auditPassed {
		b.WriteString("hashdeep: Audit passed\n")
	} else {
		b.WriteString("hashdeep: Audit failed\n")
	}

	fmt.Fprintf(&b, "          Files matched: %d\n", rep.Matches)
	fmt.Fprintf(&b, "         Files modified: %d\n", len(rep.Mismatches))
	fmt.Fprintf(&b, "            Files moved: 0\n")
	fmt.Fprintf(&b, "        New files found: %d\n", len(rep.New))
	fmt.Fprintf(&b, "  Known files not found: %d\n", len(rep.Missing))

	if len(rep.Mismatches) > 0 {
		b.WriteString("\nModified files:\n")
		for _, m := range rep.Mismatches {
			fmt.Fprintf(&b, "  %s\n    Known hash:    %s\n    Computed hash: %s\n", m.Path, m.Expected, m.Actual)
		}
	}
	if len(rep.New) > 0 {
		b.WriteString("\nNew files:\n")
		for _, p := range rep.New {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	if len(rep.Missing) > 0 {
		b.WriteString("\nKnown files not found:\n")
		for _, p := range rep.Missing {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}

	return b.String()
}

type verifyJSON struct {
	Metadata struct {
		Timestamp string `json:"timestamp"`
	} `json:"metadata"`
	Summary struct {
		Matched   int64 `json:"matched"`
		Mismatched int  `json:"mismatched"`
		Missing   int   `json:"missing"`
		New       int   `json:"new"`
	} `json:"summary"`
	Mismatches []verifier.Mismatch `json:"mismatches,omitempty"`
	Missing    []string            `json:"missing,omitempty"`
	New        []string            `json:"new,omitempty"`
}

// VerifyJSON renders a verify report as the stable JSON schema.
func VerifyJSON(rep *verifier.Report) (string, error) {
	out := verifyJSON{Mismatches: rep.Mismatches, Missing: rep.Missing, New: rep.New}
	out.Metadata.Timestamp = timestamp()
	out.Summary.Matched = rep.Matches
	out.Summary.Mismatched = len(rep.Mismatches)
	out.Summary.Missing = len(rep.Missing)
	out.Summary.New = len(rep.New)

	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// ComparePlainText renders a compare report in the original's
// "=== Database Comparison Report ===" layout.
func ComparePlainText(rep *comparator.Report) string {
	var b strings.Builder
	b.WriteString("\n=== Database Comparison Report ===\n\n")

	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "  Database 1: %d files\n", rep.DB1Total)
	fmt.Fprintf(&b, "  Database 2: %d files\n", rep.DB2Total)
	fmt.Fprintf(&b, "  Unchanged:  %d files\n", rep.Unchanged)
	fmt.Fprintf(&b, "  Changed:    %d files\n", len(rep.Changed))
	fmt.Fprintf(&b, "  Moved:      %d files\n", len(rep.Moved))
	fmt.Fprintf(&b, "  Removed:    %d files\n", len(rep.Removed))
	fmt.Fprintf(&b, "  Added:      %d files\n", len(rep.Added))
	fmt.Fprintf(&b, "  Duplicates in DB1: %d groups\n", len(rep.DuplicatesDB1))
	fmt.Fprintf(&b, "  Duplicates in DB2: %d groups\n", len(rep.DuplicatesDB2))

	if len(rep.Changed) > 0 {
		b.WriteString("\nChanged Files:\n")
		for _, c := range rep.Changed {
			fmt.Fprintf(&b, "  %s\n    DB1: %s\n    DB2: %s\n", c.Path, c.Hash1, c.Hash2)
		}
	}
	if len(rep.Moved) > 0 {
		b.WriteString("\nMoved Files:\n")
		for _, m := range rep.Moved {
			fmt.Fprintf(&b, "  %s -> %s\n", m.From, m.To)
		}
	}
	if len(rep.Removed) > 0 {
		b.WriteString("\nRemoved Files (in DB1 but not DB2):\n")
		for _, p := range rep.Removed {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	if len(rep.Added) > 0 {
		b.WriteString("\nAdded Files (in DB2 but not DB1):\n")
		for _, p := range rep.Added {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	writeDuplicateGroups(&b, "Duplicates in Database 1", rep.DuplicatesDB1)
	writeDuplicateGroups(&b, "Duplicates in Database 2", rep.DuplicatesDB2)

	b.WriteString("\n")
	return b.String()
}

func writeDuplicateGroups(b *strings.Builder, title string, groups []comparator.DuplicateGroup) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, g := range groups {
		fmt.Fprintf(b, "  Hash: %s (%d files)\n", g.Hash, g.Count)
		for _, p := range g.Paths {
			fmt.Fprintf(b, "    %s\n", p)
		}
	}
}

type compareJSON struct {
	Metadata struct {
		Timestamp string `json:"timestamp"`
	} `json:"metadata"`
	Summary struct {
		DB1Total  int `json:"db1_total"`
		DB2Total  int `json:"db2_total"`
		Unchanged int `json:"unchanged"`
		Changed   int `json:"changed"`
		Moved     int `json:"moved"`
		Removed   int `json:"removed"`
		Added     int `json:"added"`
	} `json:"summary"`
	Changed       []comparator.Changed        `json:"changed,omitempty"`
	Moved         []comparator.Moved          `json:"moved,omitempty"`
	Removed       []string                    `json:"removed,omitempty"`
	Added         []string                    `json:"added,omitempty"`
	DuplicatesDB1 []comparator.DuplicateGroup `json:"duplicates_db1,omitempty"`
	DuplicatesDB2 []comparator.DuplicateGroup `json:"duplicates_db2,omitempty"`
}

// CompareJSON renders a compare report as the stable JSON schema.
func CompareJSON(rep *comparator.Report) (string, error) {
	out := compareJSON{
		Changed: rep.Changed, Moved: rep.Moved, Removed: rep.Removed, Added: rep.Added,
		DuplicatesDB1: rep.DuplicatesDB1, DuplicatesDB2: rep.DuplicatesDB2,
	}
	out.Metadata.Timestamp = timestamp()
	out.Summary.DB1Total = rep.DB1Total
	out.Summary.DB2Total = rep.DB2Total
	out.Summary.Unchanged = rep.Unchanged
	out.Summary.Changed = len(rep.Changed)
	out.Summary.Moved = len(rep.Moved)
	out.Summary.Removed = len(rep.Removed)
	out.Summary.Added = len(rep.Added)

	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// CompareHashdeepAudit renders a compare report in hashdeep's audit-mode
// (-a -vvv) style: a pass/fail header, the five named counters, then
// per-category listings. "New files found" stands in for hashdeep's own
// audit vocabulary for db2-only paths; db1-only paths are "known files
// not found", matching hashdeep's phrasing for files the input list
// expected but the scan never encountered.
func CompareHashdeepAudit(rep *comparator.Report) string {
	var b strings.Builder

	auditPassed := len(rep.Changed) == 0 && len(rep.Moved) == 0 && len(rep.Removed) == 0 && len(rep.Added) == 0
	if auditPassed {
		b.WriteString("hashdeep: Audit passed\n")
	} else {
		b.WriteString("hashdeep: Audit failed\n")
	}

	fmt.Fprintf(&b, "          Files matched: %d\n", rep.Unchanged)
	fmt.Fprintf(&b, "         Files modified: %d\n", len(rep.Changed))
	fmt.Fprintf(&b, "            Files moved: %d\n", len(rep.Moved))
	fmt.Fprintf(&b, "        New files found: %d\n", len(rep.Added))
	fmt.Fprintf(&b, "  Known files not found: %d\n", len(rep.Removed))

	if len(rep.Changed) > 0 {
		b.WriteString("\nModified files:\n")
		for _, c := range rep.Changed {
			fmt.Fprintf(&b, "  %s\n    Known hash:    %s\n    Computed hash: %s\n", c.Path, c.Hash1, c.Hash2)
		}
	}
	if len(rep.Moved) > 0 {
		b.WriteString("\nMoved files:\n")
		for _, m := range rep.Moved {
			fmt.Fprintf(&b, "  %s: Moved from %s\n", m.To, m.From)
		}
	}
	if len(rep.Added) > 0 {
		b.WriteString("\nNew files:\n")
		for _, p := range rep.Added {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	if len(rep.Removed) > 0 {
		b.WriteString("\nKnown files not found:\n")
		for _, p := range rep.Removed {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}

	return b.String()
}

// DedupPlainText renders a dedup report as a human-readable summary.
func DedupPlainText(rep *dedup.Report) string {
	var b strings.Builder
	b.WriteString("=== Duplicate Files Report ===\n\n")
	fmt.Fprintf(&b, "Summary: %s\n", rep.Stats)
	if len(rep.Groups) == 0 {
		b.WriteString("\nNo duplicates found.\n")
		return b.String()
	}

	b.WriteString("\nDuplicate Groups:\n")
	for _, g := range rep.Groups {
		fmt.Fprintf(&b, "  Hash: %s (%d files, %s each, %s wasted)\n",
			g.Hash, g.Count, formatSize(g.FileSize), formatSize(g.WastedSpace))
		for _, p := range g.Paths {
			fmt.Fprintf(&b, "    %s\n", p)
		}
	}
	if len(rep.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range rep.Warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}
	return b.String()
}

type dedupJSON struct {
	Metadata struct {
		Timestamp string `json:"timestamp"`
	} `json:"metadata"`
	Summary struct {
		FilesScanned    int64 `json:"files_scanned"`
		DuplicateGroups int64 `json:"duplicate_groups"`
		DuplicateFiles  int64 `json:"duplicate_files"`
		WastedSpace     int64 `json:"wasted_space"`
	} `json:"summary"`
	Groups   []dedup.Group `json:"groups,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// DedupJSON renders a dedup report as the stable JSON schema.
func DedupJSON(rep *dedup.Report) (string, error) {
	out := dedupJSON{Groups: rep.Groups, Warnings: rep.Warnings}
	out.Metadata.Timestamp = timestamp()
	out.Summary.FilesScanned = rep.Stats.FilesScanned.Load()
	out.Summary.DuplicateGroups = rep.Stats.DuplicateGroups.Load()
	out.Summary.DuplicateFiles = rep.Stats.DuplicateFiles.Load()
	out.Summary.WastedSpace = rep.Stats.WastedSpace.Load()

	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
