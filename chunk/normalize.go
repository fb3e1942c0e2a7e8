// Package chunk turns raw long-form text into retrieval-sized,
// overlap-stitched chunks with stable identity.
package chunk

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ctrlRunRe  = regexp.MustCompile(`[\t\f\r]+`)
	spaceRunRe = regexp.MustCompile(` +`)
	newlineRe  = regexp.MustCompile(`\s*\n\s*`)
)

// Normalize canonicalizes whitespace ahead of segmentation: non-breaking
// spaces become regular spaces, control-character runs collapse to one space,
// space runs collapse to one, and newlines lose their surrounding padding.
// Normalizing already-normalized text returns it unchanged.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = ctrlRunRe.ReplaceAllString(s, " ")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = newlineRe.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// EstimateTokens is the coarse character-based token estimate used across
// segmentation and packing: ceil(characters/4). Characters are runes, not
// bytes, so Arabic text is not penalized for its multi-byte encoding. It is
// deliberately not a real tokenizer; changing it would move chunk boundaries
// and break identity of previously ingested content.
func EstimateTokens(s string) int {
	return (utf8.RuneCountInString(s) + 3) / 4
}
