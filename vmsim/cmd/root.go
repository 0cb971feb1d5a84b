// Package cmd provides the command-line interface of vmsim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "vmsim walks virtual addresses through a TLB and a page table.",
	Long: `vmsim translates virtual addresses to physical addresses one step ` +
		`at a time, through a set-associative TLB and a page table backed by ` +
		`a small physical memory. Defaults can be set with VMSIM_* ` +
		`environment variables or a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return applyEnvDefaults(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	loadDotEnv()

	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
