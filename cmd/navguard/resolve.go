package main

import (
	"fmt"

	"github.com/GriffinCanCode/navguard/internal/infrastructure/server"
	"github.com/spf13/cobra"
)

func newResolveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "resolve <address>",
		Short:   "Resolve a private address through the location registry",
		Example: `  navguard resolve home`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			engine, err := server.BuildEngine(commandContext(cmd), cfg, newStderrLogger(cfg), nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			res := engine.Resolve(args[0])
			if err := printValue(cmd.OutOrStdout(), opts.format, res); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("resolve %q: %s", args[0], res.ErrorMessage)
			}
			return nil
		},
	}
}
