package expense

import (
	"iter"
	"strings"
)

// Lines splits a message body into trimmed, non-blank expense lines. The
// sequence is lazy and restartable; blank segments are dropped silently, so
// a whitespace-only message yields nothing.
func Lines(raw string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for segment := range strings.SplitSeq(raw, "\n") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			if !yield(segment) {
				return
			}
		}
	}
}
