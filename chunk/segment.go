package chunk

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	headingRe   = regexp.MustCompile(`\n#+\s`)
	blankLineRe = regexp.MustCompile(`\n{2,}`)
)

// Segment splits normalized text into heading-, paragraph-, and (for
// oversized paragraphs) sentence-level segments, preserving source order.
// No returned segment is empty.
func Segment(text string, maxTokens int) []string {
	var segments []string
	for _, block := range splitHeadings(text) {
		for _, p := range splitParagraphs(block) {
			if float64(EstimateTokens(p)) > float64(maxTokens)*1.2 {
				segments = append(segments, packSentences(splitSentences(p), maxTokens)...)
				continue
			}
			if t := strings.TrimSpace(p); t != "" {
				segments = append(segments, t)
			}
		}
	}
	return segments
}

// splitHeadings splits on newlines that immediately precede a markdown-style
// heading marker, keeping the marker with its block.
func splitHeadings(text string) []string {
	locs := headingRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}
	blocks := make([]string, 0, len(locs)+1)
	start := 0
	for _, loc := range locs {
		blocks = append(blocks, text[start:loc[0]])
		start = loc[0] + 1
	}
	return append(blocks, text[start:])
}

func splitParagraphs(block string) []string {
	if strings.Contains(block, "\n\n") {
		return blankLineRe.Split(block, -1)
	}
	return []string{block}
}

// splitSentences cuts a paragraph at each run of whitespace that follows
// sentence punctuation and precedes a capital Latin or Arabic-range letter.
// This is a regex-level heuristic, not true sentence segmentation, and is
// kept exactly for chunk-boundary parity with previously ingested content.
func splitSentences(p string) []string {
	var sentences []string
	start := 0
	i := 0
	for i < len(p) {
		r, size := utf8.DecodeRuneInString(p[i:])
		if r != '.' && r != '!' && r != '?' {
			i += size
			continue
		}
		end := i + size
		next := end
		for next < len(p) {
			ws, wsSize := utf8.DecodeRuneInString(p[next:])
			if !unicode.IsSpace(ws) {
				break
			}
			next += wsSize
		}
		if next > end && next < len(p) && isSentenceStart(p[next:]) {
			sentences = append(sentences, p[start:end])
			start = next
		}
		i = next
	}
	if start < len(p) {
		sentences = append(sentences, p[start:])
	}
	return sentences
}

func isSentenceStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return (r >= 'A' && r <= 'Z') || (r >= 0x0600 && r <= 0x06FF)
}

// packSentences greedily re-accumulates sentences into segments no larger
// than maxTokens; a lone sentence that is already over the budget is emitted
// as-is.
func packSentences(sentences []string, maxTokens int) []string {
	var out []string
	buf := ""
	for _, s := range sentences {
		next := s
		if buf != "" {
			next = buf + " " + s
		}
		if EstimateTokens(next) > maxTokens && buf != "" {
			out = append(out, strings.TrimSpace(buf))
			buf = s
			continue
		}
		buf = next
	}
	if t := strings.TrimSpace(buf); t != "" {
		out = append(out, t)
	}
	return out
}
