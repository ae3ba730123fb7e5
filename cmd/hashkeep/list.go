package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivoronin/hashkeep/internal/hashalgo"
	"github.com/ivoronin/hashkeep/internal/request"
)

// listOptions holds CLI flags for the list command.
type listOptions struct {
	jsonOut bool
}

func newListCmd() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every supported hash algorithm and its properties",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runList(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of plain text")

	return cmd
}

func runList(opts *listOptions) error {
	req := request.NewListRequest(opts.jsonOut)

	names := hashalgo.Names()
	sort.Strings(names)

	descriptors := make([]hashalgo.Descriptor, 0, len(names))
	for _, n := range names {
		d, err := hashalgo.Describe(n)
		if err != nil {
			return err
		}
		descriptors = append(descriptors, d)
	}

	if req.Output == request.OutputJSON {
		out, err := listJSON(descriptors)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	fmt.Print(listPlainText(descriptors))
	return nil
}

func listPlainText(descriptors []hashalgo.Descriptor) string {
	var b strings.Builder
	b.WriteString("\nAvailable Hash Algorithms:\n\n")
	fmt.Fprintf(&b, "%-20s %12s %15s %15s\n", "Algorithm", "Output Bits", "Post-Quantum", "Cryptographic")
	b.WriteString(strings.Repeat("-", 65) + "\n")
	for _, d := range descriptors {
		fmt.Fprintf(&b, "%-20s %12d %15s %15s\n", d.Name, d.OutputBits, yesNo(d.PostQuantum), yesNo(d.Cryptographic))
	}
	b.WriteString("\n")
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

type listJSONOutput struct {
	Algorithms []hashalgo.Descriptor `json:"algorithms"`
	Metadata   struct {
		Timestamp      string `json:"timestamp"`
		AlgorithmCount int    `json:"algorithm_count"`
	} `json:"metadata"`
}

func listJSON(descriptors []hashalgo.Descriptor) (string, error) {
	out := listJSONOutput{Algorithms: descriptors}
	out.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
	out.Metadata.AlgorithmCount = len(descriptors)

	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
