// Package chunker splits document text into pieces small enough for
// backends with a per-request size limit (MyMemory rejects queries over
// ~500 bytes). Splits prefer paragraph, then sentence, then word boundaries.
package chunker

import (
	"strings"
	"unicode"
)

// sentenceEnds includes the Devanagari danda used by Hindi, Marathi,
// Sanskrit and Nepali text.
var sentenceEnds = map[rune]bool{
	'.': true, '!': true, '?': true, '।': true, '॥': true,
}

// Chunk splits text into trimmed pieces of at most maxChars runes.
// maxChars <= 0 disables splitting. Empty pieces are dropped.
func Chunk(text string, maxChars int) []string {
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return []string{text}
	}

	var chunks []string
	for len(runes) > maxChars {
		cut := splitPoint(runes[:maxChars])
		if piece := strings.TrimSpace(string(runes[:cut])); piece != "" {
			chunks = append(chunks, piece)
		}
		runes = []rune(strings.TrimSpace(string(runes[cut:])))
	}
	if piece := strings.TrimSpace(string(runes)); piece != "" {
		chunks = append(chunks, piece)
	}
	return chunks
}

// splitPoint returns how many runes of window to consume.
func splitPoint(window []rune) int {
	// Paragraph: the last blank line.
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '\n' && window[i-1] == '\n' {
			return i + 1
		}
		if window[i] == '\n' && i > 1 && window[i-1] == '\r' && window[i-2] == '\n' {
			return i + 1
		}
	}

	// Sentence: terminal punctuation followed by whitespace.
	for i := len(window) - 2; i > 0; i-- {
		if sentenceEnds[window[i]] && unicode.IsSpace(window[i+1]) {
			return i + 1
		}
	}

	// Word.
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}

	return len(window)
}
