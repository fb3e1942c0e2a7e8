package chunk

import "strings"

// Pack greedily accumulates segments into chunks bounded by maxTokens.
// When flushing a full chunk, a tail of trailing segments totalling at least
// overlapTokens is carried into the next chunk ahead of the triggering
// segment, so adjacent chunks share bounded lexical overlap. A single
// oversized segment is packed alone and its chunk is allowed to overrun.
func Pack(segments []string, maxTokens, overlapTokens int) []string {
	var chunks []string
	var buf []string
	bufTok := 0
	for _, seg := range segments {
		t := EstimateTokens(seg)
		if bufTok+t > maxTokens && len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, "\n\n"))

			// Carry trailing segments forward until the overlap budget is met.
			i := len(buf)
			tailTok := 0
			for i > 0 && tailTok < overlapTokens {
				i--
				tailTok += EstimateTokens(buf[i])
			}
			next := make([]string, 0, len(buf)-i+1)
			next = append(next, buf[i:]...)
			buf = append(next, seg)
			bufTok = EstimateTokens(strings.Join(buf, "\n\n"))
			continue
		}
		buf = append(buf, seg)
		bufTok += t
	}
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, "\n\n"))
	}
	return chunks
}
