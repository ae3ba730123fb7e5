package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivoronin/hashkeep/internal/hashalgo"
	"github.com/ivoronin/hashkeep/internal/request"
)

// hashOptions holds CLI flags for the hash command.
type hashOptions struct {
	text       string
	algorithms []string
	fast       bool
	jsonOut    bool
	output     string
}

func newHashCmd() *cobra.Command {
	opts := &hashOptions{algorithms: []string{"blake3"}}

	cmd := &cobra.Command{
		Use:   "hash [paths...]",
		Short: "Compute digests for one or more files, a text literal, or stdin",
		Long: `Computes one or more algorithms' digests for the given file paths (glob
patterns are expanded before hashing), or for --text, or for stdin when no
path and no --text are given.`,
		RunE: func(_ *cobra.Command, args []string) error {
			return runHash(args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.text, "text", "", "Hash this literal text instead of a file")
	cmd.Flags().StringSliceVarP(&opts.algorithms, "algorithm", "a", opts.algorithms, "Algorithm(s) to compute")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "Sample large files instead of hashing them in full")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of plain text")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write output to this path instead of stdout")

	return cmd
}

func runHash(paths []string, opts *hashOptions) error {
	algs, err := request.ResolveAlgorithms(opts.algorithms)
	if err != nil {
		return err
	}

	if opts.text != "" {
		if opts.fast {
			return fmt.Errorf("--fast is not supported when hashing --text")
		}
		res, err := hashalgo.ComputeText(opts.text, algs)
		if err != nil {
			return err
		}
		return writeHashOutput(opts, algs, map[string]hashalgo.Result{"<text>": res})
	}

	if len(paths) == 0 {
		if opts.fast {
			return fmt.Errorf("--fast is not supported when reading from stdin")
		}
		res, err := hashalgo.ComputeStdin(os.Stdin, algs)
		if err != nil {
			return err
		}
		return writeHashOutput(opts, algs, map[string]hashalgo.Result{"-": res})
	}

	expanded, err := request.ExpandGlobs(paths)
	if err != nil {
		return err
	}

	results := make(map[string]hashalgo.Result, len(expanded))
	for _, p := range expanded {
		res, err := hashalgo.Compute(p, algs, opts.fast)
		if err != nil {
			return err
		}
		results[p] = res
	}
	return writeHashOutput(opts, algs, results)
}

func writeHashOutput(opts *hashOptions, algs []string, results map[string]hashalgo.Result) error {
	var content string
	if opts.jsonOut {
		out, err := hashJSON(algs, opts.fast, results)
		if err != nil {
			return err
		}
		content = out
	} else {
		var b strings.Builder
		for path, res := range results {
			for _, alg := range algs {
				fmt.Fprintf(&b, "%s  %s\n", res.Digests[alg], path)
			}
		}
		content = b.String()
	}

	if opts.output != "" {
		return os.WriteFile(opts.output, []byte(content), 0o644)
	}
	fmt.Print(content)
	return nil
}

type hashFileOutput struct {
	Path    string            `json:"path"`
	Digests map[string]string `json:"digests"`
}

type hashJSONOutput struct {
	Files    []hashFileOutput `json:"files"`
	Metadata struct {
		Timestamp  string   `json:"timestamp"`
		Algorithms []string `json:"algorithms"`
		FileCount  int      `json:"file_count"`
		FastMode   bool     `json:"fast_mode"`
	} `json:"metadata"`
}

// hashJSON builds the stable JSON schema for the hash command: one entry
// per input (file, "-" for stdin, or "<text>") paired with that input's
// digest under every requested algorithm.
func hashJSON(algs []string, fast bool, results map[string]hashalgo.Result) (string, error) {
	paths := make([]string, 0, len(results))
	for p := range results {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := hashJSONOutput{}
	for _, p := range paths {
		out.Files = append(out.Files, hashFileOutput{Path: p, Digests: results[p].Digests})
	}
	out.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
	out.Metadata.Algorithms = algs
	out.Metadata.FileCount = len(out.Files)
	out.Metadata.FastMode = fast

	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
