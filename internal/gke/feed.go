package gke

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/go-logr/logr"
)

// ReleaseNotesFeedURL is the GKE no-channel release notes Atom feed.
// It announces every GKE build as it becomes available, independent of
// release channels.
const ReleaseNotesFeedURL = "https://cloud.google.com/feeds/gke-no-channel-release-notes.xml"

const feedTimeout = 30 * time.Second

// Release note entries link each announced version, e.g.
// <a href="...">1.28.15-gke.2169000</a>.
var anchorTextPattern = regexp.MustCompile(`<a href="[^"]*">([^<]+)</a>`)

// FeedClient fetches available GKE versions from the release-notes feed.
type FeedClient struct {
	endpoint   string
	httpClient *http.Client
	log        logr.Logger
}

// NewFeedClient creates a feed client against the public release-notes
// feed.
func NewFeedClient(log logr.Logger) *FeedClient {
	return NewFeedClientWithEndpoint(ReleaseNotesFeedURL, log)
}

// NewFeedClientWithEndpoint creates a client with a custom feed URL
// (for testing).
func NewFeedClientWithEndpoint(endpoint string, log logr.Logger) *FeedClient {
	return &FeedClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: feedTimeout,
		},
		log: log,
	}
}

// Atom feed structures. Entry content is HTML-escaped inside the XML,
// so the anchors are extracted from the decoded text afterwards.

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Content string `xml:"content"`
}

// Versions fetches the feed once and returns every version string the
// release notes announce, in feed order with duplicates preserved.
// The catalog handles deduplication and junk entries; this method only
// fails when the feed itself is unreachable or yields nothing.
func (c *FeedClient) Versions(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read release feed: %w", err)
	}

	return parseFeed(body, c.log)
}

// parseFeed extracts announced version strings from the Atom payload.
func parseFeed(data []byte, log logr.Logger) ([]string, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse release feed: %w", err)
	}

	var versions []string
	for _, entry := range feed.Entries {
		for _, match := range anchorTextPattern.FindAllStringSubmatch(entry.Content, -1) {
			versions = append(versions, match[1])
		}
	}

	log.V(1).Info("parsed release feed", "entries", len(feed.Entries), "versions", len(versions))

	if len(versions) == 0 {
		return nil, fmt.Errorf("release feed listed no versions: %w", ErrEmptyCatalog)
	}
	return versions, nil
}
