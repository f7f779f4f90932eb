package ingest

import "strings"

// DefaultChunkChars is the approximate passage size when the
// configuration does not set one.
const DefaultChunkChars = 1200

// splitPassages breaks page text into passages of roughly chunkChars
// characters, preferring paragraph boundaries and falling back to line
// boundaries for oversized paragraphs.
func splitPassages(text string, chunkChars int) []string {
	if chunkChars <= 0 {
		chunkChars = DefaultChunkChars
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= chunkChars {
		return []string{text}
	}

	var passages []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			passages = append(passages, strings.Join(current, "\n\n"))
			current = nil
			currentLen = 0
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) > chunkChars {
			flush()
			passages = append(passages, splitLines(para, chunkChars)...)
			continue
		}
		if currentLen+len(para) > chunkChars {
			flush()
		}
		current = append(current, para)
		currentLen += len(para) + 2
	}
	flush()

	return passages
}

// splitLines splits one oversized paragraph at line boundaries.
func splitLines(para string, chunkChars int) []string {
	var chunks []string
	var current []string
	currentLen := 0

	for _, line := range strings.Split(para, "\n") {
		lineLen := len(line) + 1
		if currentLen+lineLen > chunkChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
			currentLen = 0
		}
		current = append(current, line)
		currentLen += lineLen
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
