package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ivoronin/hashkeep/internal/cache"
	"github.com/ivoronin/hashkeep/internal/report"
	"github.com/ivoronin/hashkeep/internal/request"
	"github.com/ivoronin/hashkeep/internal/verifier"
)

// verifyOptions holds CLI flags for the verify command.
type verifyOptions struct {
	root       string
	workers    int
	noProgress bool
	cacheFile  string
	jsonOut    bool
	auditOut   bool
}

func newVerifyCmd() *cobra.Command {
	opts := &verifyOptions{workers: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "verify <database>",
		Short: "Re-hash the files named in a database and report matches, mismatches, missing, and new files",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runVerify(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.root, "root", "r", "", "Directory the database's relative paths are resolved against (default: database's directory)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of parallel workers")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().StringVar(&opts.cacheFile, "cache-file", "", "Path to hash cache file (enables caching)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of plain text")
	cmd.Flags().BoolVar(&opts.auditOut, "audit", false, "Emit a hashdeep-style audit report instead of plain text")

	return cmd
}

func runVerify(dbPattern string, opts *verifyOptions) error {
	req, err := request.NewVerifyRequest(dbPattern, opts.root, opts.workers, !opts.noProgress,
		opts.cacheFile, opts.jsonOut, opts.auditOut)
	if err != nil {
		return err
	}

	hashCache, err := cache.Open(req.CacheFile)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() { _ = hashCache.Close() }()

	rep, err := verifier.Verify(context.Background(), verifier.Config{
		DatabasePath: req.DatabasePath,
		Root:         req.Root,
		Workers:      req.Workers,
		Cache:        hashCache,
	})
	if err != nil {
		return err
	}

	switch req.Output {
	case request.OutputJSON:
		out, err := report.VerifyJSON(rep)
		if err != nil {
			return err
		}
		fmt.Println(out)
	case request.OutputHashdeepAudit:
		fmt.Print(report.VerifyHashdeepAudit(rep))
	default:
		fmt.Print(report.VerifyPlainText(rep))
	}

	if len(rep.Mismatches) > 0 || len(rep.Missing) > 0 {
		return fmt.Errorf("verification failed: %d mismatches, %d missing", len(rep.Mismatches), len(rep.Missing))
	}
	return nil
}
