package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/keboola/gke-upgrade-tool/cmd/gke-upgrade-tool/handlers"
	"github.com/keboola/gke-upgrade-tool/internal/gke"
)

// Upgrade returns the command for upgrading GKE versions in an env file.
//
// The command resolves a target GKE version and rewrites only the
// fields that are behind it:
// - the control plane version
// - each node pool's standby slot version (the active slot is never
//   touched, it keeps serving on its known-good version)
//
// Run again after the rollout pipeline has promoted the standby slots,
// the same rule converges the remaining slots; a further run changes
// nothing and reports the stack as up to date.
//
// Target selection (mutually exclusive):
//
//	(default):            second-to-latest build of the stack's current minor
//	--minor 1.28:         second-to-latest build of the named minor
//	--minor 1.28 --latest: newest build of the named minor
//	--image <version>:    exactly this build, release feed not consulted
//	--switch-active-only: no version resolution, flip active slots instead
func Upgrade() *cobra.Command {
	var minor string
	var latest bool
	var image string
	var switchActiveOnly bool
	var dryRun bool
	var interactive bool
	var verbose bool
	var feedURL string

	cmd := &cobra.Command{
		Use:   "upgrade <env-file>",
		Short: "Upgrade control plane and standby node pools in an env file",
		Long: `Upgrade the GKE versions recorded in a stack env.yaml.

Only fields that actually differ from the target are rewritten, so a
run against an up-to-date file produces no diff at all. The active
node pool slot is never upgraded directly: the standby slot is
prepared first, promotion happens in the rollout pipeline, and a later
run converges whichever slot is still behind.

Use --switch-active-only to flip the active/standby designation of
every node pool without touching any version field.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Conflicting selection flags are usage errors, caught
			// before any file or network I/O.
			if image != "" && (minor != "" || latest) {
				return errors.New("--image cannot be used together with --minor or --latest")
			}
			if switchActiveOnly && (image != "" || minor != "" || latest || interactive) {
				return errors.New("--switch-active-only cannot be used together with version selection flags")
			}

			opts := handlers.UpgradeOptions{
				EnvFile:          args[0],
				Minor:            minor,
				Latest:           latest,
				Image:            image,
				SwitchActiveOnly: switchActiveOnly,
				DryRun:           dryRun,
				Interactive:      interactive,
				Verbose:          verbose,
				FeedURL:          feedURL,
			}
			return handlers.Upgrade(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&minor, "minor", "m", "", "GKE minor version to search for (e.g. 1.28)")
	cmd.Flags().BoolVarP(&latest, "latest", "l", false, "Use the newest build instead of the second to latest")
	cmd.Flags().StringVarP(&image, "image", "i", "", "Use this exact GKE build version, skipping the release feed")
	cmd.Flags().BoolVar(&switchActiveOnly, "switch-active-only", false, "Switch active node pools only, do not change any Kubernetes version fields")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be changed without writing the file")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pick the minor version interactively from the release feed")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log release feed diagnostics to stderr")
	cmd.Flags().StringVar(&feedURL, "feed-url", gke.ReleaseNotesFeedURL, "Release notes feed to fetch available versions from")

	return cmd
}
