package handlers

import (
	"fmt"
	"strings"

	"github.com/keboola/gke-upgrade-tool/internal/envfile"
)

// Status handles the status command: a read-only report of the control
// plane version and each node pool's slots.
func Status(envFile string) error {
	doc, err := envfile.Load(envFile)
	if err != nil {
		return err
	}
	state, err := envfile.ReadState(doc)
	if err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  === GKE Control Plane ==="))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s\n", versionStyle.Render(state.ControlPlane.String())))

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  === Nodepools ==="))
	b.WriteString("\n")
	for _, pool := range state.Pools {
		b.WriteString(poolStyle.Render("  " + pool.Pool.Name))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("    active:  %s  %s\n", pool.Active, versionStyle.Render(pool.Versions[pool.Active].String())))
		b.WriteString(fmt.Sprintf("    standby: %s  %s\n", pool.Standby(), versionStyle.Render(pool.Versions[pool.Standby()].String())))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  Highest version in file: %s", state.HighestVersion())))
	b.WriteString("\n")

	fmt.Print(b.String())
	return nil
}
