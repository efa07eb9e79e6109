// Package chunker splits plain text into paragraph-aligned chunks that stay
// under a translation request size limit.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Separator divides paragraphs in plain text and joins chunks back together.
const Separator = "\n\n"

// DefaultMaxChars is used when the configured maximum is not positive.
const DefaultMaxChars = 5000

// Split 将文本按段落合并为分块
// Consecutive paragraphs are packed greedily while the chunk, separators
// included, stays within max characters. A paragraph longer than max becomes
// its own chunk and is not subdivided. Join(Split(text, max)) == text.
func Split(text string, max int) []string {
	if text == "" {
		return nil
	}
	if max <= 0 {
		max = DefaultMaxChars
	}

	sepSize := utf8.RuneCountInString(Separator)

	var chunks []string
	var current []string
	currentSize := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, Separator))
			current = nil
			currentSize = 0
		}
	}

	for _, para := range strings.Split(text, Separator) {
		paraSize := utf8.RuneCountInString(para)

		// Oversized paragraphs go alone.
		if paraSize > max {
			flush()
			chunks = append(chunks, para)
			continue
		}

		additional := paraSize
		if len(current) > 0 {
			additional += sepSize
		}

		if currentSize+additional > max {
			flush()
			current = []string{para}
			currentSize = paraSize
			continue
		}
		current = append(current, para)
		currentSize += additional
	}
	flush()

	return chunks
}

// Join reassembles chunks in order with Separator.
func Join(chunks []string) string {
	return strings.Join(chunks, Separator)
}

// Len returns the length of s in characters, as Split counts it.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}
