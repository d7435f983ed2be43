package postprocess

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain text untouched", "नमस्ते दुनिया", "नमस्ते दुनिया"},
		{"think block", "<think>Hindi uses SOV order</think>नमस्ते", "नमस्ते"},
		{"thinking block mixed case", "<Thinking>x</Thinking> नमस्ते", "नमस्ते"},
		{"reasoning block", "नमस्ते<reasoning>checked</reasoning>", "नमस्ते"},
		{"unclosed block", "नमस्ते<think>the model was cut off", "नमस्ते"},
		{"preamble", "Here is the translation: नमस्ते", "नमस्ते"},
		{"preamble with language", "Here's the Hindi translation: नमस्ते", "नमस्ते"},
		{"polite preamble", "Sure, here is the translation: नमस्ते", "नमस्ते"},
		{"translation into", "Translation into Hindi: नमस्ते", "नमस्ते"},
		{"sentence without colon kept", "Here is the station", "Here is the station"},
		{"double quotes", `"नमस्ते"`, "नमस्ते"},
		{"curly quotes", "“नमस्ते”", "नमस्ते"},
		{"guillemets", "«नमस्ते»", "नमस्ते"},
		{"mismatched quotes kept", `"नमस्ते'`, `"नमस्ते'`},
		{"single quote char", `"`, `"`},
		{"all phases", "<think>hmm</think>\nHere is the translation: \"नमस्ते\"", "नमस्ते"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
