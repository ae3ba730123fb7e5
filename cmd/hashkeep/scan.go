package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ivoronin/hashkeep/internal/cache"
	"github.com/ivoronin/hashkeep/internal/dbformat"
	"github.com/ivoronin/hashkeep/internal/ignore"
	"github.com/ivoronin/hashkeep/internal/pathutil"
	"github.com/ivoronin/hashkeep/internal/report"
	"github.com/ivoronin/hashkeep/internal/request"
	"github.com/ivoronin/hashkeep/internal/scanpipeline"
)

// scanOptions holds CLI flags for the scan command.
type scanOptions struct {
	database     string
	algorithms   []string
	fast         bool
	format       string
	compress     bool
	sequential   bool
	workers      int
	noProgress   bool
	excludes     []string
	cacheFile    string
	jsonOut      bool
}

func newScanCmd() *cobra.Command {
	opts := &scanOptions{
		algorithms: []string{"blake3"},
		format:     "standard",
		workers:    runtime.NumCPU(),
	}

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Walk a directory tree and record every file's digest in a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runScan(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.database, "database", "d", "", "Output database path (required)")
	cmd.Flags().StringSliceVarP(&opts.algorithms, "algorithm", "a", opts.algorithms, "Algorithm to compute (only the first one given is recorded)")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "Sample large files instead of hashing them in full")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "Database format: standard|hashdeep")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "xz-compress the output database")
	cmd.Flags().BoolVar(&opts.sequential, "hdd", false, "Sequential walk+hash+write, for spinning disks")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of parallel workers")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().StringSliceVarP(&opts.excludes, "exclude", "e", nil, "Glob patterns to exclude")
	cmd.Flags().StringVar(&opts.cacheFile, "cache-file", "", "Path to hash cache file (enables caching)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of plain text")

	_ = cmd.MarkFlagRequired("database")

	return cmd
}

func runScan(rootPattern string, opts *scanOptions) error {
	req, err := request.NewScanRequest(rootPattern, opts.database, opts.algorithms, opts.fast,
		opts.sequential, opts.compress, opts.format, opts.workers, !opts.noProgress,
		opts.excludes, opts.cacheFile, opts.jsonOut)
	if err != nil {
		return err
	}

	matcher, err := ignore.Load(req.Root)
	if err != nil {
		return err
	}
	if err := matcher.AddPatterns(req.ExcludeGlobs); err != nil {
		return err
	}

	hashCache, err := cache.Open(req.CacheFile)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() { _ = hashCache.Close() }()

	dbPath := req.DatabasePath
	if req.Compress {
		dbPath += ".xz"
	}
	dbAbsPath, _ := pathutil.TryCanonicalize(dbPath)

	res, err := scanpipeline.Run(context.Background(), scanpipeline.Config{
		Root:         req.Root,
		Algorithms:   req.Algorithms,
		Fast:         req.Fast,
		Sequential:   req.Sequential,
		Workers:      req.Workers,
		ShowProgress: req.ShowProgress,
		Ignore:       matcher,
		ExcludePath:  dbAbsPath,
		Cache:        hashCache,
	})
	if err != nil {
		return err
	}

	if req.Format == "hashdeep" {
		err = dbformat.WriteHashdeep(dbPath, res.Database, req.Algorithms)
	} else {
		err = dbformat.Write(dbPath, res.Database)
	}
	if err != nil {
		return err
	}

	if req.Output == request.OutputJSON {
		out, err := report.ScanJSON(res)
		if err != nil {
			return err
		}
		fmt.Println(out)
	} else {
		fmt.Print(report.ScanPlainText(res))
	}
	return nil
}
