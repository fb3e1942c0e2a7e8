// Package crawler walks a site breadth-first and extracts its visible text
// for ingestion.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultMaxPages = 200

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// Page is one crawled document.
type Page struct {
	URL  string
	Text string
}

// Crawler fetches same-origin pages starting from a seed URL. The frontier
// is an explicit FIFO queue with a visited set, so crawl depth is bounded by
// maxPages rather than the stack.
type Crawler struct {
	client   *http.Client
	maxPages int
	log      *zap.SugaredLogger
}

func New(maxPages int, log *zap.SugaredLogger) *Crawler {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Crawler{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxPages: maxPages,
		log:      log,
	}
}

// Crawl visits pages reachable from startURL on the same origin, breadth
// first, up to the page limit. Fetch failures skip the page; only an invalid
// seed or a cancelled context abort the crawl.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]Page, error) {
	seed, err := url.Parse(startURL)
	if err != nil || seed.Scheme == "" || seed.Host == "" {
		return nil, fmt.Errorf("invalid start URL %q", startURL)
	}
	seed.Fragment = ""

	queue := []string{seed.String()}
	visited := map[string]bool{}
	var pages []Page

	for len(queue) > 0 && len(pages) < c.maxPages {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		pageURL := queue[0]
		queue = queue[1:]
		if visited[pageURL] {
			continue
		}
		visited[pageURL] = true

		body, err := c.fetch(ctx, pageURL)
		if err != nil {
			c.log.Warnw("fetch failed", "url", pageURL, "error", err)
			continue
		}

		pages = append(pages, Page{URL: pageURL, Text: ExtractText(body)})
		c.log.Infow("crawled page", "url", pageURL, "queued", len(queue))

		base, err := url.Parse(pageURL)
		if err != nil {
			continue
		}
		for _, href := range ExtractLinks(body) {
			abs, ok := resolveSameOrigin(base, seed, href)
			if ok && !visited[abs] {
				queue = append(queue, abs)
			}
		}
	}

	return pages, nil
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(body), nil
}

// resolveSameOrigin resolves href against the current page and keeps it only
// when it stays on the seed's origin. Fragments are dropped so anchors on a
// visited page do not re-enter the frontier.
func resolveSameOrigin(base, seed *url.URL, href string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(href))
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") || strings.HasPrefix(lower, "javascript:") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	abs.Fragment = ""
	if abs.Scheme != seed.Scheme || abs.Host != seed.Host {
		return "", false
	}
	return abs.String(), true
}

// Dump renders crawled pages as one plain-text document with a header line
// per page, the format the ingestion CLI reads back in.
func Dump(pages []Page) string {
	var b strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&b, "\n===== %s =====\n%s\n", p.URL, p.Text)
	}
	return blankRunRe.ReplaceAllString(b.String(), "\n\n")
}
