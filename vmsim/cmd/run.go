package cmd

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/display"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/tracing"
	"github.com/sarchlab/vmsim/translator"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Translate a sequence of virtual addresses.",
	Long: "`run --address 0x1ABC --random 5` translates the given addresses " +
		"followed by random ones, then prints the page table, the TLB, and " +
		"the hit rates.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := readRunOptions(cmd)
		if err != nil {
			return err
		}

		return run(opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addSystemFlags(runCmd)

	runCmd.Flags().StringArrayP("address", "a", nil,
		"Hexadecimal virtual address to translate, can be repeated")
	runCmd.Flags().IntP("random", "r", 0,
		"Number of random addresses appended to the sequence")
	runCmd.Flags().Bool("step", false,
		"Print every step instead of one line per address")
	runCmd.Flags().String("record", "",
		"Record every step into <path>.sqlite3")
	runCmd.Flags().Bool("no-color", false, "Disable colored output")
	runCmd.Flags().Bool("trace", false, "Write every step to stderr as CSV")
	runCmd.Flags().Int64("seed", 0,
		"Seed of the random addresses, 0 uses the current time")
}

func addSystemFlags(cmd *cobra.Command) {
	cmd.Flags().String("policy", "FIFO", "Page replacement policy, FIFO or LRU")
	cmd.Flags().Int("vas-width", 16, "Width of virtual addresses in bits")
	cmd.Flags().Int("associativity", 2, "Number of ways of the TLB")
}

type runOptions struct {
	config    translator.Config
	addresses []string
	random    int
	step      bool
	record    string
	recordSet bool
	noColor   bool
	trace     io.Writer
	seed      int64
}

func readSystemConfig(cmd *cobra.Command) (translator.Config, error) {
	policyName, _ := cmd.Flags().GetString("policy")
	width, _ := cmd.Flags().GetInt("vas-width")
	ways, _ := cmd.Flags().GetInt("associativity")

	policy, err := replacement.ParseKind(policyName)
	if err != nil {
		return translator.Config{}, err
	}

	config := translator.Config{
		Policy:           policy,
		VASWidth:         width,
		TLBAssociativity: ways,
	}

	return config, config.Validate()
}

func readRunOptions(cmd *cobra.Command) (runOptions, error) {
	config, err := readSystemConfig(cmd)
	if err != nil {
		return runOptions{}, err
	}

	opts := runOptions{config: config}
	opts.addresses, _ = cmd.Flags().GetStringArray("address")
	opts.random, _ = cmd.Flags().GetInt("random")
	opts.step, _ = cmd.Flags().GetBool("step")
	opts.record, _ = cmd.Flags().GetString("record")
	opts.recordSet = cmd.Flags().Changed("record")
	opts.noColor, _ = cmd.Flags().GetBool("no-color")
	opts.seed, _ = cmd.Flags().GetInt64("seed")

	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		opts.trace = cmd.ErrOrStderr()
	}

	if opts.random < 0 {
		return runOptions{}, fmt.Errorf("--random must not be negative")
	}

	if len(opts.addresses) == 0 && opts.random == 0 {
		return runOptions{}, fmt.Errorf(
			"nothing to translate, use --address or --random")
	}

	return opts, nil
}

func run(opts runOptions, out io.Writer) error {
	builder := translator.MakeBuilder().WithConfig(opts.config)
	if opts.seed != 0 {
		builder = builder.WithRandSource(rand.NewSource(opts.seed))
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}

	err = engine.SetAddressSequence(opts.addresses)
	if err != nil {
		return err
	}

	engine.GenerateRandomAddresses(opts.random)

	if opts.recordSet {
		recorder, err := datarecording.NewDataRecorder(opts.record)
		if err != nil {
			return fmt.Errorf("failed to create recorder: %w", err)
		}
		defer recorder.Close()

		tracer := tracing.NewStepTracer(recorder)
		engine.AcceptHook(tracer)
		defer tracer.Terminate()
	}

	if opts.trace != nil {
		engine.AcceptHook(tracing.NewCSVTracer(opts.trace))
	}

	counter := tracing.NewEventCountTracer()
	engine.AcceptHook(counter)

	r := display.NewRenderer(out, opts.noColor)

	for !engine.Done() {
		if opts.step {
			report := engine.ProcessNextStep()
			r.RenderStep(report, stepMessages(engine, report),
				engine.ConsumeHighlightChanges())

			continue
		}

		r.RenderAddress(engine.ProcessNextAddress())
	}

	fmt.Fprintln(out)
	r.RenderPageTable(engine)
	r.RenderTLB(engine)
	r.RenderStats(engine.Stats())

	fmt.Fprint(out, "Steps:")
	for _, name := range counter.EventNames() {
		fmt.Fprintf(out, " %s=%d", name, counter.EventCount(name))
	}
	fmt.Fprintln(out)

	return nil
}

// stepMessages returns the narration added by the last step.
func stepMessages(e *translator.Engine, report translator.StepReport) []string {
	messages := e.Messages()
	if report.From == translator.StateDecode {
		return messages
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i] == "-----" {
			return messages[i+1:]
		}
	}

	return messages
}
