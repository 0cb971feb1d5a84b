package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/display"
	"github.com/sarchlab/vmsim/tracing"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <recording.sqlite3>",
	Short: "Print the steps stored in a recording.",
	Long: "`inspect trace.sqlite3 --event page-evicted` lists the recorded " +
		"steps, optionally only those of one event.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		event, _ := cmd.Flags().GetString("event")
		limit, _ := cmd.Flags().GetInt("limit")

		return inspect(cmd.Context(), cmd.OutOrStdout(), args[0], event, limit)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().String("event", "", "Only list steps of this event")
	inspectCmd.Flags().Int("limit", 0, "Maximum number of steps, 0 for all")
}

func inspect(
	ctx context.Context,
	out io.Writer,
	path, event string,
	limit int,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reader, err := datarecording.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(tracing.StepTable, tracing.StepEntry{})

	params := datarecording.QueryParams{
		OrderBy: "Seq",
		Limit:   limit,
	}
	if event != "" {
		params.Where = "Event = ?"
		params.Args = []any{event}
	}

	results, total, err := reader.Query(ctx, tracing.StepTable, params)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tADDRESS\tFROM\tTO\tEVENT\tFRAME\tTLB")

	for _, r := range results {
		step := r.(*tracing.StepEntry)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			step.Seq, display.Hex(step.Address, 0), step.From, step.To,
			step.Event, optional(step.Frame), optional(step.TLBIndex))
	}

	err = w.Flush()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d of %d steps\n", len(results), total)

	return nil
}

func optional(v int) string {
	if v < 0 {
		return display.NoValue
	}

	return fmt.Sprint(v)
}
