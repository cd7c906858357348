package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/keboola/gke-upgrade-tool/internal/gke"
)

// VersionsOptions contains options for the versions command.
type VersionsOptions struct {
	Minor   string
	Verbose bool
	FeedURL string
}

// Versions handles the versions command: it lists the known builds of
// one minor line, newest first, and marks the build the default
// second-to-latest selection would pick.
func Versions(ctx context.Context, opts VersionsOptions) error {
	log := newLogger(opts.Verbose)

	line, err := gke.ParseMinorLine(opts.Minor)
	if err != nil {
		return err
	}

	catalog, err := fetchCatalog(ctx, opts.FeedURL, log)
	if err != nil {
		return err
	}

	// Latest also proves the line exists in the catalog.
	latest, err := catalog.Latest(line)
	if err != nil {
		return err
	}
	defaultPick, err := catalog.SecondLatest(line)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(fmt.Sprintf("  === GKE %s builds ===", line)))
	b.WriteString("\n")

	for _, v := range catalog.Versions() {
		if v.MinorLine() != line {
			continue
		}
		marker := ""
		switch {
		case v.Equal(latest):
			marker = dimStyle.Render("  (latest)")
		case v.Equal(defaultPick):
			marker = dimStyle.Render("  (default pick)")
		}
		b.WriteString(fmt.Sprintf("  %s%s\n", versionStyle.Render(v.String()), marker))
	}
	if latest.Equal(defaultPick) {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  Only one build known; it is also the default pick."))
		b.WriteString("\n")
	}

	fmt.Print(b.String())
	return nil
}
