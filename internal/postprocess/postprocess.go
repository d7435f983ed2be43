// Package postprocess strips the wrapping that LLM backends add around a
// translation: reasoning blocks, "Here is the translation:" preambles and
// outer quotes.
package postprocess

import (
	"regexp"
	"strings"
)

var (
	// RE2 has no backreferences, so each tag pair is spelled out.
	reasoningBlockRe = regexp.MustCompile(`(?is)<think>.*?</think>|<thinking>.*?</thinking>|<reasoning>.*?</reasoning>`)

	// An opened block the model never closed swallows the rest of the text.
	openReasoningRe = regexp.MustCompile(`(?is)(?:<think>|<thinking>|<reasoning>).*$`)

	// Preambles must end in a colon; plain sentences starting with "Here is"
	// are left alone.
	preambleRe = regexp.MustCompile(`(?i)^(?:(?:certainly|sure|of course)[,.!]?\s+)?(?:here(?:'s| is)\s+)?(?:the\s+)?(?:(?:hindi|english|translated|final)\s+)?(?:translation|translated text)(?:\s+(?:in|into)\s+[\p{L} ]+)?\s*:`)
)

var quotePairs = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'«':      '»',
	'\u201C': '\u201D',
	'\u2018': '\u2019',
}

// Clean returns text without reasoning blocks, a leading preamble or a
// single pair of wrapping quotes.
func Clean(text string) string {
	text = reasoningBlockRe.ReplaceAllString(text, "")
	text = openReasoningRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if loc := preambleRe.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[loc[1]:])
	}

	return unquote(text)
}

func unquote(text string) string {
	runes := []rune(text)
	if len(runes) < 2 {
		return text
	}
	if closing, ok := quotePairs[runes[0]]; ok && runes[len(runes)-1] == closing {
		return strings.TrimSpace(string(runes[1 : len(runes)-1]))
	}
	return text
}
