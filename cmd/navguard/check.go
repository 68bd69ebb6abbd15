package main

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/navguard/internal/domain/interceptor"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/server"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/spf13/cobra"
)

var errDenied = errors.New("request denied")

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var (
		partition    string
		resourceType string
		failOnDeny   bool
	)

	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Decide a single request against the configured rules",
		Example: `  navguard check https://ads.example.com/ --partition open
  navguard check curated://home --partition curated -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if _, err := types.ParsePartition(partition); err != nil {
				return err
			}

			engine, err := server.BuildEngine(commandContext(cmd), cfg, newStderrLogger(cfg), nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			d, err := engine.OnBeforeRequest(partition, args[0], types.ParseResourceType(resourceType), "")
			if err != nil {
				return err
			}
			// The interstitial is for the browser, not the terminal
			d.Interstitial = ""
			if err := printValue(cmd.OutOrStdout(), opts.format, d); err != nil {
				return err
			}
			if failOnDeny && d.Outcome == interceptor.OutcomeDeny {
				return fmt.Errorf("%w: %s", errDenied, d.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&partition, "partition", "p", "open", "Partition the request is issued into: open or curated")
	cmd.Flags().StringVarP(&resourceType, "type", "t", "main_frame", "Resource type, e.g. main_frame, script, image")
	cmd.Flags().BoolVar(&failOnDeny, "fail-on-deny", false, "Exit non-zero when the request is denied")
	return cmd
}
