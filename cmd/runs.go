package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/omics-group/dynamics-cli/internal/model"
	"github.com/omics-group/dynamics-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect pipeline run history",
	Long:  "Commands for listing and viewing recorded fit pipeline runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pipeline runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		input, _ := cmd.Flags().GetString("input")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.RunFilter{
			Status: model.RunStatus(status),
			Input:  input,
			Limit:  limit,
		}

		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one pipeline run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		fmt.Printf("Run      %s\n", run.ID)
		fmt.Printf("Input    %s\n", run.Input)
		fmt.Printf("Status   %s\n", run.Status)
		fmt.Printf("Created  %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated  %s\n", run.UpdatedAt.Format("2006-01-02 15:04:05"))
		if run.Result != nil {
			fmt.Printf("Fitted       %d/%d conditions\n", run.Result.ConditionsFitted, run.Result.ConditionsRequested)
			fmt.Printf("Converged    %d/%d parameters\n", run.Result.ParametersConverged, run.Result.ParametersTotal)
			fmt.Printf("Estimates    %d\n", run.Result.Estimates)
			fmt.Printf("Duration     %dms\n", run.Result.DurationMS)
			if len(run.Result.ConditionsFailed) > 0 {
				fmt.Printf("Failed       %v\n", run.Result.ConditionsFailed)
			}
		}
		return nil
	},
}

func formatRunsList(w io.Writer, runs []model.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tINPUT\tSTATUS\tCONVERGED\tCREATED")
	for _, r := range runs {
		converged := "-"
		if r.Result != nil {
			converged = fmt.Sprintf("%d/%d", r.Result.ParametersConverged, r.Result.ParametersTotal)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Input, r.Status, converged, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status")
	runsListCmd.Flags().String("input", "", "filter by input path")
	runsListCmd.Flags().Int("limit", 50, "max runs to list")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
