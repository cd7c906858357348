// Package handlers contains the execution logic behind the CLI
// commands: loading the env file, resolving the target GKE version and
// applying the minimal field writes.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"

	"github.com/keboola/gke-upgrade-tool/internal/envfile"
	"github.com/keboola/gke-upgrade-tool/internal/gke"
	"github.com/keboola/gke-upgrade-tool/internal/upgrade"
)

// UpgradeOptions contains options for the upgrade command.
type UpgradeOptions struct {
	EnvFile          string
	Minor            string
	Latest           bool
	Image            string
	SwitchActiveOnly bool
	DryRun           bool
	Interactive      bool
	Verbose          bool
	FeedURL          string
}

// Upgrade handles the upgrade command.
//
// It projects the env file into a cluster state, resolves the target
// version (unless only the active slots are being switched), plans the
// minimal edit set and applies it. The file is rewritten only when at
// least one field changed, so an up-to-date stack yields an empty diff
// and exit code 0.
func Upgrade(ctx context.Context, opts UpgradeOptions) error {
	log := newLogger(opts.Verbose)

	doc, err := envfile.Load(opts.EnvFile)
	if err != nil {
		return err
	}
	state, err := envfile.ReadState(doc)
	if err != nil {
		return err
	}

	var plan *upgrade.Plan
	if opts.SwitchActiveOnly {
		plan = upgrade.PlanSwitch(state)
	} else {
		target, err := resolveTarget(ctx, state, opts, log)
		if err != nil {
			return err
		}
		plan = upgrade.PlanUpgrade(state, target)
	}

	if opts.DryRun {
		fmt.Print(renderPlan(state, plan, true))
		return nil
	}

	changed, err := doc.Patch(plan.Fields)
	if err != nil {
		return err
	}
	if changed > 0 {
		if err := doc.Save(); err != nil {
			return err
		}
	}

	fmt.Print(renderPlan(state, plan, false))
	return nil
}

// resolveTarget picks the target GKE version for an upgrade run.
//
// --image short-circuits everything: the operator names an exact build
// and the release feed is not consulted or checked against. Otherwise
// the feed is fetched once, and the minor line comes from the flag, an
// interactive pick, or the highest version already in the file (stacks
// stay on their minor line unless the operator opts into a bump).
func resolveTarget(ctx context.Context, state *envfile.ClusterState, opts UpgradeOptions, log logr.Logger) (gke.Version, error) {
	if opts.Image != "" {
		return gke.ParseVersion(opts.Image)
	}

	catalog, err := fetchCatalog(ctx, opts.FeedURL, log)
	if err != nil {
		return gke.Version{}, err
	}

	var line gke.MinorLine
	switch {
	case opts.Minor != "":
		line, err = gke.ParseMinorLine(opts.Minor)
		if err != nil {
			return gke.Version{}, err
		}
	case opts.Interactive:
		line, err = selectMinorLine(catalog)
		if err != nil {
			return gke.Version{}, err
		}
	default:
		line = state.HighestVersion().MinorLine()
	}

	if opts.Latest {
		return catalog.Latest(line)
	}
	return catalog.SecondLatest(line)
}

// fetchCatalog fetches the release feed and builds the version catalog.
func fetchCatalog(ctx context.Context, feedURL string, log logr.Logger) (gke.Catalog, error) {
	if feedURL == "" {
		feedURL = gke.ReleaseNotesFeedURL
	}
	raw, err := gke.NewFeedClientWithEndpoint(feedURL, log).Versions(ctx)
	if err != nil {
		return gke.Catalog{}, err
	}
	return gke.NewCatalog(raw, log)
}

// selectMinorLine presents the catalog's minor lines for an
// interactive pick.
func selectMinorLine(catalog gke.Catalog) (gke.MinorLine, error) {
	if !isTerminal() {
		return gke.MinorLine{}, errors.New("--interactive requires a terminal, pass --minor instead")
	}

	lines := catalog.MinorLines()
	options := make([]huh.Option[gke.MinorLine], 0, len(lines))
	for _, line := range lines {
		latest, err := catalog.Latest(line)
		if err != nil {
			return gke.MinorLine{}, err
		}
		label := fmt.Sprintf("%s (latest build %s)", line, latest)
		options = append(options, huh.NewOption(label, line))
	}

	var choice gke.MinorLine
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[gke.MinorLine]().
			Title("GKE minor version").
			Options(options...).
			Value(&choice),
	))
	if err := form.Run(); err != nil {
		return gke.MinorLine{}, fmt.Errorf("minor version selection aborted: %w", err)
	}
	return choice, nil
}

// isTerminal reports whether stdout is attached to a terminal.
func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
