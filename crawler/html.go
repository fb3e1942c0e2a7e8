package crawler

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptRe  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	styleRe   = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	hrefRe    = regexp.MustCompile(`(?is)<a\s[^>]*?href\s*=\s*["']([^"']+)["']`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// ExtractText strips markup from an HTML document and returns its visible
// text, one fragment per line with whitespace collapsed.
func ExtractText(doc string) string {
	s := scriptRe.ReplaceAllString(doc, " ")
	s = styleRe.ReplaceAllString(s, " ")
	s = commentRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, "\n")
	s = html.UnescapeString(s)

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// ExtractLinks returns the raw href values of anchor tags in document order.
func ExtractLinks(doc string) []string {
	var links []string
	for _, m := range hrefRe.FindAllStringSubmatch(doc, -1) {
		links = append(links, m[1])
	}
	return links
}
