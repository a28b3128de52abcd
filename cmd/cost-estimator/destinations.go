package main

import (
	"fmt"

	"github.com/iwvelando/cost-estimator/pkg/constants"
	"github.com/iwvelando/cost-estimator/pkg/output"
	"github.com/spf13/cobra"
)

func newDestinationsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "destinations",
		Short: "List supported destinations",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.table()
			if err != nil {
				return err
			}
			switch format {
			case constants.OutputFormatPretty:
				return output.PrettyDestinations(cmd.OutOrStdout(), table.Destinations())
			case constants.OutputFormatJSON:
				return output.JSONDestinations(cmd.OutOrStdout(), table.Destinations())
			default:
				return fmt.Errorf("invalid output format: %s (must be one of: pretty, json)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", constants.OutputFormatPretty, "output format: pretty, json")
	return cmd
}
