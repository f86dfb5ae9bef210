package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wjs2063/tripgraph/internal/workflow"
)

func newAskCommand(opts *rootOptions) *cobra.Command {
	var (
		name     string
		maxSteps int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question and exit",
		Example: `  tripgraph ask "Recommend a lunch spot near Seongsu station"
  tripgraph ask --workflow self-reflection --max-steps 12 "What is naengmyeon?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.build(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.workflows.Invoke(cmd.Context(), name, strings.Join(args, " "), maxSteps)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err = fmt.Fprintln(out, res.Response)
			return err
		},
	}
	cmd.Flags().StringVarP(&name, "workflow", "w", workflow.PlanAndExecute,
		"workflow to run: "+workflow.PlanAndExecute+" or "+workflow.SelfReflection)
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step bound; 0 uses engine.max_steps")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}
