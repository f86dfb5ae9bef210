package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wjs2063/tripgraph/internal/workflow"
	"github.com/wjs2063/tripgraph/pkg/stategraph/checkpoint"
)

// newRunsCommand prints the audit trail of a past run. It reads the
// audit database directly and needs no credentials.
func newRunsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "runs <run-id>",
		Short: "Show the recorded steps of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.cfg.Audit.Enabled {
				return fmt.Errorf("audit is disabled; set audit.enabled")
			}
			store, err := openAudit(opts.cfg.Audit)
			if err != nil {
				return err
			}
			defer store.Close()

			return printTrail(cmd, store, args[0])
		},
	}
}

func printTrail(cmd *cobra.Command, store checkpoint.Store, runID string) error {
	entries, err := workflow.ReadTrail(store, runID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("run %s not found", runID)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tNODE\tNEXT\tSIZE\tTIME")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			e.Sequence, e.NodeID, e.NextNode, e.Size, e.Timestamp.Format("15:04:05.000"))
	}
	return tw.Flush()
}
