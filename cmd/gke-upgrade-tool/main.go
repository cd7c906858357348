// Package main is the entry point for the gke-upgrade-tool CLI.
//
// gke-upgrade-tool prepares a stack's env.yaml for a GKE rolling
// upgrade. Each run moves the file one step toward the target version
// with the smallest possible diff: the control plane and the standby
// node pool slots first, the remaining slots on later runs once the
// rollout pipeline has promoted them. Active/standby designation is
// flipped separately with `upgrade --switch-active-only`.
//
// For detailed usage information, run:
//
//	gke-upgrade-tool --help
package main

import (
	"fmt"
	"os"

	"github.com/keboola/gke-upgrade-tool/cmd/gke-upgrade-tool/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
