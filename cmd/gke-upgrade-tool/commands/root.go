// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and mutual-exclusion checks. Command execution
// is delegated to handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the gke-upgrade-tool CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gke-upgrade-tool",
		Short: "Prepare stack env.yaml files for GKE upgrades",
	}

	// Core commands
	cmd.AddCommand(Upgrade())
	cmd.AddCommand(Status())
	cmd.AddCommand(Versions())

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
