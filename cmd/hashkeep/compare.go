package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivoronin/hashkeep/internal/comparator"
	"github.com/ivoronin/hashkeep/internal/report"
	"github.com/ivoronin/hashkeep/internal/request"
)

// compareOptions holds CLI flags for the compare command.
type compareOptions struct {
	jsonOut  bool
	auditOut bool
}

func newCompareCmd() *cobra.Command {
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare <database1> <database2>",
		Short: "Compare two databases: unchanged, changed, moved, removed, added, and duplicates",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCompare(args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of plain text")
	cmd.Flags().BoolVar(&opts.auditOut, "audit", false, "Emit a hashdeep-style audit report instead of plain text")

	return cmd
}

func runCompare(db1, db2 string, opts *compareOptions) error {
	req, err := request.NewCompareRequest(db1, db2, opts.jsonOut, opts.auditOut)
	if err != nil {
		return err
	}

	rep, err := comparator.Compare(req.DB1, req.DB2)
	if err != nil {
		return err
	}

	switch req.Output {
	case request.OutputJSON:
		out, err := report.CompareJSON(rep)
		if err != nil {
			return err
		}
		fmt.Println(out)
	case request.OutputHashdeepAudit:
		fmt.Print(report.CompareHashdeepAudit(rep))
	default:
		fmt.Print(report.ComparePlainText(rep))
	}
	return nil
}
