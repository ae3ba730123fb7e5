package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ivoronin/hashkeep/internal/cache"
	"github.com/ivoronin/hashkeep/internal/dedup"
	"github.com/ivoronin/hashkeep/internal/ignore"
	"github.com/ivoronin/hashkeep/internal/report"
	"github.com/ivoronin/hashkeep/internal/request"
)

// dedupOptions holds CLI flags for the dedup command.
type dedupOptions struct {
	algorithm             string
	fast                  bool
	workers               int
	noProgress            bool
	excludes              []string
	cacheFile             string
	trustDeviceBoundaries bool
	jsonOut               bool
}

func newDedupCmd() *cobra.Command {
	opts := &dedupOptions{
		algorithm: dedup.DefaultAlgorithm,
		workers:   runtime.NumCPU(),
	}

	cmd := &cobra.Command{
		Use:   "dedup <directory>",
		Short: "Report groups of duplicate files and the space they waste, without touching the filesystem",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runDedup(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", opts.algorithm, "Algorithm used to confirm duplicate candidates")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "Sample large files instead of hashing them in full")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of parallel workers")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().StringSliceVarP(&opts.excludes, "exclude", "e", nil, "Glob patterns to exclude")
	cmd.Flags().StringVar(&opts.cacheFile, "cache-file", "", "Path to hash cache file (enables caching)")
	cmd.Flags().BoolVar(&opts.trustDeviceBoundaries, "trust-device-boundaries", false,
		"Assume devices have independent inode spaces. WARNING: unsafe if the same filesystem is mounted at multiple paths (e.g. NFS)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of plain text")

	return cmd
}

func runDedup(root string, opts *dedupOptions) error {
	req, err := request.NewDedupRequest(root, opts.algorithm, opts.fast, opts.workers, !opts.noProgress,
		opts.excludes, opts.cacheFile, opts.trustDeviceBoundaries, opts.jsonOut)
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

	rep, err := dedup.Run(context.Background(), dedup.Config{
		Root:                  req.Root,
		Algorithm:             req.Algorithm,
		Fast:                  req.Fast,
		Workers:               req.Workers,
		ShowProgress:          req.ShowProgress,
		Ignore:                matcher,
		Cache:                 hashCache,
		TrustDeviceBoundaries: req.TrustDeviceBoundaries,
	})
	if err != nil {
		return err
	}

	if req.Output == request.OutputJSON {
		out, err := report.DedupJSON(rep)
		if err != nil {
			return err
		}
		fmt.Println(out)
	} else {
		fmt.Print(report.DedupPlainText(rep))
	}
	return nil
}
