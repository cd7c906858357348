package commands

import (
	"github.com/spf13/cobra"

	"github.com/keboola/gke-upgrade-tool/cmd/gke-upgrade-tool/handlers"
)

// Status returns the command for inspecting an env file without
// changing it.
func Status() *cobra.Command {
	return &cobra.Command{
		Use:   "status <env-file>",
		Short: "Show control plane and node pool versions in an env file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return handlers.Status(args[0])
		},
	}
}
