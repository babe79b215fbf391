// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing
// and flag binding. Command execution is delegated to handler functions in the
// handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the exodeploy CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "exodeploy",
		Short:         "Deploy a containerised service to Exoscale SKS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(Deploy())
	cmd.AddCommand(Teardown())
	cmd.AddCommand(Version())

	return cmd
}
