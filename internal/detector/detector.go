// Package detector guesses the language of free text when the caller asks
// for "auto" as the source.
package detector

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minLetters is the shortest sample worth sending to the model.
const minLetters = 6

// Languages the detector chooses between. Restricting the set keeps model
// loading small and avoids confusing Hindi with Nepali or Sanskrit.
var candidates = []lingua.Language{
	lingua.English,
	lingua.Hindi,
	lingua.Bengali,
	lingua.Gujarati,
	lingua.Marathi,
	lingua.Punjabi,
	lingua.Tamil,
	lingua.Telugu,
	lingua.Urdu,
}

type Detector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

// New returns a detector whose models load lazily on first use.
func New() *Detector {
	return &Detector{}
}

func (d *Detector) model() lingua.LanguageDetector {
	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(candidates...).
			Build()
	})
	return d.detector
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return lingua.Unknown, false
	}

	letters := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < minLetters {
		return lingua.Unknown, false
	}

	return d.model().DetectLanguageOf(sample)
}

// DetectISO returns the lower-case ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	code := strings.ToLower(lang.IsoCode639_1().String())
	if len(code) != 2 {
		return "", false
	}
	return code, true
}
