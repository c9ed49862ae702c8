package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// skipSubstrings disqualify a candidate URL (checked case-insensitively):
// fragments, non-navigable schemes, and common binary or asset extensions.
var skipSubstrings = []string{
	"#", "javascript:", "mailto:",
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".css", ".zip",
}

// Discoverer finds candidate same-origin page URLs from a seed page.
type Discoverer struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewDiscoverer creates a Discoverer backed by the given fetcher.
func NewDiscoverer(f *Fetcher, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{fetcher: f, logger: logger}
}

// Discover fetches the seed page, extracts anchors, and returns up to
// maxPages unique same-origin URLs, the seed always included first.
// Any failure degrades to the single-element fallback {seed}.
func (d *Discoverer) Discover(ctx context.Context, seed string, maxPages int) []string {
	fallback := []string{seed}
	if maxPages < 1 {
		return fallback
	}

	page := d.fetcher.Fetch(ctx, seed)
	if page.Unavailable || page.HTML == "" {
		d.logger.Warn("seed page unavailable, falling back to seed only", "url", seed)
		return fallback
	}

	base, err := url.Parse(seed)
	if err != nil {
		d.logger.Warn("seed url unparseable", "url", seed, "err", err)
		return fallback
	}

	doc, err := html.Parse(strings.NewReader(page.HTML))
	if err != nil {
		d.logger.Warn("seed page unparseable", "url", seed, "err", err)
		return fallback
	}

	links := []string{seed}
	seen := map[string]struct{}{seed: {}}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(links) >= maxPages {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := attr(n, "href"); ok {
				if full, ok := d.admit(base, seed, href); ok {
					if _, dup := seen[full]; !dup {
						seen[full] = struct{}{}
						links = append(links, full)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// admit resolves an anchor href to an absolute URL and accepts it only when
// it is same-origin: root-relative paths, or URLs extending the seed itself.
func (d *Discoverer) admit(base *url.URL, seed, href string) (string, bool) {
	var full string
	switch {
	case strings.HasPrefix(href, "//"):
		// Protocol-relative URLs can point off-origin.
		return "", false
	case strings.HasPrefix(href, "/"):
		ref, err := url.Parse(href)
		if err != nil {
			return "", false
		}
		full = base.ResolveReference(ref).String()
	case strings.HasPrefix(href, seed):
		full = href
	default:
		return "", false
	}

	lower := strings.ToLower(full)
	for _, skip := range skipSubstrings {
		if strings.Contains(lower, skip) {
			return "", false
		}
	}
	return full, true
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
