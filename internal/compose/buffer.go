package compose

import (
	"strings"
	"unicode/utf8"
)

const (
	flushThreshold = 600
	// bufferTail is kept back so a URL or number is never split
	// across two streamed chunks.
	bufferTail = 200
)

// streamBuffer accumulates streamed deltas and releases text in safe
// chunks, always retaining a tail until the stream ends.
type streamBuffer struct {
	pending string
}

// add appends a delta and returns any text that is safe to flush.
// Text is released once the buffer outgrows the threshold or a
// newline arrives.
func (b *streamBuffer) add(delta string) string {
	b.pending += delta
	if len(b.pending) <= flushThreshold && !strings.Contains(delta, "\n") {
		return ""
	}
	cut := len(b.pending) - bufferTail
	if cut <= 0 {
		return ""
	}
	for cut > 0 && !utf8.RuneStart(b.pending[cut]) {
		cut--
	}
	safe := b.pending[:cut]
	b.pending = b.pending[cut:]
	return safe
}

// rest drains whatever is still buffered.
func (b *streamBuffer) rest() string {
	out := b.pending
	b.pending = ""
	return out
}
