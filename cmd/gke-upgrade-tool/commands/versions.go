package commands

import (
	"github.com/spf13/cobra"

	"github.com/keboola/gke-upgrade-tool/cmd/gke-upgrade-tool/handlers"
	"github.com/keboola/gke-upgrade-tool/internal/gke"
)

// Versions returns the command for listing available GKE builds of a
// minor version, newest first.
func Versions() *cobra.Command {
	var minor string
	var verbose bool
	var feedURL string

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List available GKE builds for a minor version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.VersionsOptions{
				Minor:   minor,
				Verbose: verbose,
				FeedURL: feedURL,
			}
			return handlers.Versions(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&minor, "minor", "m", "", "GKE minor version to list (e.g. 1.28)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log release feed diagnostics to stderr")
	cmd.Flags().StringVar(&feedURL, "feed-url", gke.ReleaseNotesFeedURL, "Release notes feed to fetch available versions from")

	_ = cmd.MarkFlagRequired("minor")

	return cmd
}
