package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Environment variables that provide flag defaults.
const (
	EnvPolicy           = "VMSIM_POLICY"
	EnvVASWidth         = "VMSIM_VAS_WIDTH"
	EnvTLBAssociativity = "VMSIM_TLB_ASSOCIATIVITY"
	EnvMonitorPort      = "VMSIM_MONITOR_PORT"
)

var envFlags = map[string]string{
	"policy":        EnvPolicy,
	"vas-width":     EnvVASWidth,
	"associativity": EnvTLBAssociativity,
	"port":          EnvMonitorPort,
}

// loadDotEnv reads .env from the working directory. Variables already set in
// the environment win.
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}
}

// applyEnvDefaults sets the flags that were not given on the command line from
// their environment variables.
func applyEnvDefaults(cmd *cobra.Command) error {
	var err error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}

		name, ok := envFlags[f.Name]
		if !ok {
			return
		}

		value, set := os.LookupEnv(name)
		if !set || value == "" {
			return
		}

		setErr := f.Value.Set(value)
		if setErr != nil {
			err = fmt.Errorf("invalid %s %q: %w", name, value, setErr)
		}
	})

	return err
}
