package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sluice-hq/sluice/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check a configuration file for errors without starting the gateway.

All validation errors are reported together, with the dotted path of each
offending field.

Examples:
  # Validate the default config file
  sluice validate

  # Validate a specific file
  sluice validate --config /etc/sluice/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("✗ %s is invalid:\n", cfgFile)
			for _, fe := range verr.Errors {
				fmt.Printf("  - %s\n", fe.Error())
			}
			return fmt.Errorf("%d validation error(s)", len(verr.Errors))
		}
		return err
	}

	fmt.Printf("✓ %s is valid\n", cfgFile)
	fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  default profile: %s\n", cfg.Limits.DefaultProfile)
	for name, p := range cfg.Limits.Profiles {
		fmt.Printf("  profile %q: capacity %d, %d tokens per %s\n",
			name, p.Capacity, p.Quantum, p.FillInterval)
	}
	return nil
}
