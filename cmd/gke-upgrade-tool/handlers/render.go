package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/keboola/gke-upgrade-tool/internal/envfile"
	"github.com/keboola/gke-upgrade-tool/internal/upgrade"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	poolStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	changedStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	currentStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	versionStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// renderPlan produces the human-readable report of one invocation:
// per control plane and per node pool, what changed and what was
// already current.
func renderPlan(state *envfile.ClusterState, plan *upgrade.Plan, dryRun bool) string {
	if plan.Target.IsZero() {
		return renderSwitchPlan(plan, dryRun)
	}
	return renderUpgradePlan(state, plan, dryRun)
}

func renderUpgradePlan(state *envfile.ClusterState, plan *upgrade.Plan, dryRun bool) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  === GKE Control Plane ==="))
	b.WriteString("\n")

	for _, step := range plan.Steps {
		if step.Subject != upgrade.ControlPlaneSubject {
			continue
		}
		switch step.Action {
		case upgrade.ActionUpgrade:
			b.WriteString(changedStyle.Render(fmt.Sprintf("  %s %s", upgradeVerb(dryRun), step.To)))
		default:
			b.WriteString(currentStyle.Render(fmt.Sprintf("  Already at %s", step.To)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  === Nodepools ==="))
	b.WriteString("\n")

	for _, pool := range state.Pools {
		b.WriteString(poolStyle.Render("  " + pool.Pool.Name))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("    active:  %s  %s\n", pool.Active, versionStyle.Render(pool.Versions[pool.Active].String())))
		b.WriteString(fmt.Sprintf("    standby: %s  %s\n", pool.Standby(), versionStyle.Render(pool.Versions[pool.Standby()].String())))

		for _, step := range plan.Steps {
			if step.Subject != pool.Pool.Name {
				continue
			}
			switch step.Action {
			case upgrade.ActionUpgrade:
				b.WriteString(changedStyle.Render(fmt.Sprintf("    %s standby pool %q to %s", upgradeVerb(dryRun), step.Slot, step.To)))
			default:
				b.WriteString(currentStyle.Render(fmt.Sprintf("    Standby pool %q already at %s", step.Slot, step.To)))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case plan.UpToDate():
		b.WriteString(changedStyle.Render("  Everything is already up-to-date. Nothing to do."))
	case dryRun:
		b.WriteString(dimStyle.Render("  Dry run: no fields were written."))
	default:
		b.WriteString(changedStyle.Render("  Control plane and standby nodepools upgraded."))
	}
	b.WriteString("\n")

	return b.String()
}

func renderSwitchPlan(plan *upgrade.Plan, dryRun bool) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  === Switching Active Nodepools ==="))
	b.WriteString("\n")

	for _, step := range plan.Steps {
		b.WriteString(fmt.Sprintf("  %s: %s -> %s\n",
			poolStyle.Render(step.Subject), step.From, changedStyle.Render(step.To)))
	}

	b.WriteString("\n")
	if dryRun {
		b.WriteString(dimStyle.Render("  Dry run: no fields were written."))
	} else {
		b.WriteString(changedStyle.Render("  All active nodepools switched."))
	}
	b.WriteString("\n")

	return b.String()
}

func upgradeVerb(dryRun bool) string {
	if dryRun {
		return "Would upgrade"
	}
	return "Upgraded"
}
