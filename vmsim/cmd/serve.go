package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive visualizer over HTTP.",
	Long: "`serve --port 8080 --open` starts the visualizer and blocks " +
		"until interrupted.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		port, _ := cmd.Flags().GetInt("port")
		open, _ := cmd.Flags().GetBool("open")
		record, _ := cmd.Flags().GetString("record")

		server := monitoring.NewServer().
			WithPortNumber(port).
			WithBrowser(open)

		if cmd.Flags().Changed("record") {
			recorder, err := datarecording.NewDataRecorder(record)
			if err != nil {
				return err
			}
			defer recorder.Close()

			tracer := tracing.NewStepTracer(recorder)
			defer tracer.Terminate()

			server.WithHook(tracer)
		}

		server.StartServer()

		ctx, stop := signal.NotifyContext(context.Background(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "Shutting down.")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0,
		"Port of the server, 0 picks a random port")
	serveCmd.Flags().Bool("open", false, "Open the visualizer in a browser")
	serveCmd.Flags().String("record", "",
		"Record every step of every system into <path>.sqlite3")
}
