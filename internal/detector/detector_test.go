package detector

import (
	"testing"
)

func TestDetector_DetectISO(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
		{
			name:   "whitespace only",
			text:   "   \n\t",
			wantOK: false,
		},
		{
			name:   "too few letters",
			text:   "Hi 123",
			wantOK: false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantCode: "en",
			wantOK:   true,
		},
		{
			name:     "hindi text",
			text:     "नमस्ते, यह हिंदी में एक परीक्षण है।",
			wantCode: "hi",
			wantOK:   true,
		},
		{
			name:     "tamil text",
			text:     "வணக்கம், இது தமிழில் ஒரு சோதனை.",
			wantCode: "ta",
			wantOK:   true,
		},
		{
			name:     "bengali text",
			text:     "নমস্কার, এটি বাংলায় একটি পরীক্ষা।",
			wantCode: "bn",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_Detect_Name(t *testing.T) {
	d := New()

	lang, ok := d.Detect("Good morning, how are you doing today?")
	if !ok {
		t.Fatal("expected detection to succeed")
	}
	if lang.String() != "English" {
		t.Errorf("expected English, got %v", lang)
	}
}
