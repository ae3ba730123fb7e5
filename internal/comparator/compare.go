// Package comparator implements the two-database compare engine (spec
// component C8): union-key classification, move detection by positional
// pairing within hash buckets, and independent in-database duplicate
// grouping for each side.
//
// Grounded on original_source/src/compare.rs's CompareEngine.compare, with
// the move-pairing step made deterministic: paths within each hash bucket
// are sorted lexicographically before pairing, rather than relying on map
// iteration order the way the original does.
package comparator

import (
	"sort"

	"github.com/ivoronin/hashkeep/internal/dbformat"
)

// Changed is a path present in both databases with differing digests.
type Changed struct {
	Path string
	Hash1, Hash2 string
}

// Moved is a path pair judged to be the same file relocated between the
// two databases: same hash, one database's removed candidate paired with
// the other's added candidate.
type Moved struct {
	From, To, Hash string
}

// DuplicateGroup is a set of paths sharing one hash within a single
// database.
type DuplicateGroup struct {
	Hash  string
	Paths []string
	Count int
}

// Report is the outcome of comparing two databases.
type Report struct {
	DB1Total, DB2Total int
	Unchanged          int
	Changed            []Changed
	Moved              []Moved
	Removed            []string
	Added              []string
	DuplicatesDB1      []DuplicateGroup
	DuplicatesDB2      []DuplicateGroup
}

// Compare loads db1Path and db2Path and classifies every path named in
// either database.
func Compare(db1Path, db2Path string) (*Report, error) {
	db1, err := dbformat.Read(db1Path)
	if err != nil {
		return nil, err
	}
	db2, err := dbformat.Read(db2Path)
	if err != nil {
		return nil, err
	}

	report := &Report{
		DB1Total: db1.Len(),
		DB2Total: db2.Len(),
	}

	seen := make(map[string]bool, db1.Len()+db2.Len())
	for p := range db1.Entries {
		seen[p] = true
	}
	for p := range db2.Entries {
		seen[p] = true
	}

	var removed, added []string
	for path := range seen {
		e1, in1 := db1.Entries[path]
		e2, in2 := db2.Entries[path]
		switch {
		case in1 && in2:
			if e1.Hash == e2.Hash {
				report.Unchanged++
			} else {
				report.Changed = append(report.Changed, Changed{Path: path, Hash1: e1.Hash, Hash2: e2.Hash})
			}
		case in1:
			removed = append(removed, path)
		case in2:
			added = append(added, path)
		}
	}

	report.Moved, removed, added = detectMoves(db1, db2, removed, added)
	report.Removed = removed
	report.Added = added

	report.DuplicatesDB1 = findDuplicates(db1)
	report.DuplicatesDB2 = findDuplicates(db2)

	sort.Slice(report.Changed, func(i, j int) bool { return report.Changed[i].Path < report.Changed[j].Path })
	sort.Slice(report.Moved, func(i, j int) bool { return report.Moved[i].From < report.Moved[j].From })
	sort.Strings(report.Removed)
	sort.Strings(report.Added)

	return report, nil
}

// detectMoves buckets removed and added candidates by hash and pairs paths
// positionally within each shared bucket, after sorting each bucket
// lexicographically so pairing is deterministic regardless of the input
// order. Surplus, unpaired paths remain as removed or added.
func detectMoves(db1, db2 *dbformat.Database, removed, added []string) (moves []Moved, stillRemoved, stillAdded []string) {
	removedByHash := make(map[string][]string)
	for _, p := range removed {
		h := db1.Entries[p].Hash
		removedByHash[h] = append(removedByHash[h], p)
	}
	addedByHash := make(map[string][]string)
	for _, p := range added {
		h := db2.Entries[p].Hash
		addedByHash[h] = append(addedByHash[h], p)
	}

	movedFrom := make(map[string]bool)
	movedTo := make(map[string]bool)

	for hash, fromPaths := range removedByHash {
		toPaths, ok := addedByHash[hash]
		if !ok {
			continue
		}
		sort.Strings(fromPaths)
		sort.Strings(toPaths)
		n := len(fromPaths)
		if len(toPaths) < n {
			n = len(toPaths)
		}
		for i := 0; i < n; i++ {
			moves = append(moves, Moved{From: fromPaths[i], To: toPaths[i], Hash: hash})
			movedFrom[fromPaths[i]] = true
			movedTo[toPaths[i]] = true
		}
	}

	for _, p := range removed {
		if !movedFrom[p] {
			stillRemoved = append(stillRemoved, p)
		}
	}
	for _, p := range added {
		if !movedTo[p] {
			stillAdded = append(stillAdded, p)
		}
	}
	return moves, stillRemoved, stillAdded
}

// findDuplicates groups a database's entries by hash, keeping only groups
// of two or more paths.
func findDuplicates(db *dbformat.Database) []DuplicateGroup {
	byHash := make(map[string][]string)
	for path, e := range db.Entries {
		byHash[e.Hash] = append(byHash[e.Hash], path)
	}

	var groups []DuplicateGroup
	for hash, paths := range byHash {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		groups = append(groups, DuplicateGroup{Hash: hash, Paths: paths, Count: len(paths)})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Hash < groups[j].Hash })
	return groups
}
