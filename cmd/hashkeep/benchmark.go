package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivoronin/hashkeep/internal/benchmark"
	"github.com/ivoronin/hashkeep/internal/request"
)

// benchmarkOptions holds CLI flags for the benchmark command.
type benchmarkOptions struct {
	sizeStr string
	jsonOut bool
}

func newBenchmarkCmd() *cobra.Command {
	opts := &benchmarkOptions{sizeStr: "64MiB"}

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Measure every registered algorithm's throughput over synthetic data",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBenchmark(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.sizeStr, "size", "s", opts.sizeStr, "Synthetic payload size (e.g. 64MiB, 1GiB)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of plain text")

	return cmd
}

func runBenchmark(opts *benchmarkOptions) error {
	req, err := request.NewBenchmarkRequest(nil, opts.sizeStr)
	if err != nil {
		return err
	}

	if !opts.jsonOut {
		fmt.Printf("Running benchmarks with %s of test data...\n", opts.sizeStr)
	}

	results, err := benchmark.Run(req.SizeBytes)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		out, err := benchmarkJSON(req.SizeBytes, results)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	fmt.Print(benchmark.DisplayResults(results))
	return nil
}

type benchmarkJSONOutput struct {
	Results  []benchmark.Result `json:"results"`
	Metadata struct {
		Timestamp      string `json:"timestamp"`
		DataSizeBytes  int64  `json:"data_size_bytes"`
		AlgorithmCount int    `json:"algorithm_count"`
	} `json:"metadata"`
}

func benchmarkJSON(sizeBytes int64, results []benchmark.Result) (string, error) {
	out := benchmarkJSONOutput{Results: results}
	out.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
	out.Metadata.DataSizeBytes = sizeBytes
	out.Metadata.AlgorithmCount = len(results)

	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
