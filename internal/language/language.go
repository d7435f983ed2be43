// Package language holds the portal's static language catalog and the
// LanguagePair value handed to every translation mode.
package language

import (
	"errors"
	"fmt"
	"strings"

	xlang "golang.org/x/text/language"
)

// Descriptor identifies one language by code, English name and native name.
type Descriptor struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}

// String renders the descriptor as "Hindi (हिन्दी, hi)".
func (d Descriptor) String() string {
	if d.NativeName == "" || d.NativeName == d.Name {
		return fmt.Sprintf("%s (%s)", d.Name, d.Code)
	}
	return fmt.Sprintf("%s (%s, %s)", d.Name, d.NativeName, d.Code)
}

// Pair is a source/target language combination chosen by the user.
type Pair struct {
	Source Descriptor `json:"source"`
	Target Descriptor `json:"target"`
}

// Swap returns the pair with source and target exchanged.
func (p Pair) Swap() Pair {
	return Pair{Source: p.Target, Target: p.Source}
}

// LangPair formats the pair as "en|hi", the form MyMemory expects.
func (p Pair) LangPair() string {
	return p.Source.Code + "|" + p.Target.Code
}

// ErrUnsupported is wrapped when a code is not in the catalog.
var ErrUnsupported = errors.New("unsupported language")

// English and the 22 languages of the Eighth Schedule.
var catalog = []Descriptor{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "bn", Name: "Bengali", NativeName: "বাংলা"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు"},
	{Code: "mr", Name: "Marathi", NativeName: "मराठी"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்"},
	{Code: "gu", Name: "Gujarati", NativeName: "ગુજરાતી"},
	{Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ"},
	{Code: "ml", Name: "Malayalam", NativeName: "മലയാളം"},
	{Code: "pa", Name: "Punjabi", NativeName: "ਪੰਜਾਬੀ"},
	{Code: "or", Name: "Odia", NativeName: "ଓଡ଼ିଆ"},
	{Code: "as", Name: "Assamese", NativeName: "অসমীয়া"},
	{Code: "ur", Name: "Urdu", NativeName: "اردو"},
	{Code: "sa", Name: "Sanskrit", NativeName: "संस्कृतम्"},
	{Code: "ne", Name: "Nepali", NativeName: "नेपाली"},
	{Code: "sd", Name: "Sindhi", NativeName: "سنڌي"},
	{Code: "ks", Name: "Kashmiri", NativeName: "कॉशुर"},
	{Code: "kok", Name: "Konkani", NativeName: "कोंकणी"},
	{Code: "mai", Name: "Maithili", NativeName: "मैथिली"},
	{Code: "doi", Name: "Dogri", NativeName: "डोगरी"},
	{Code: "mni", Name: "Manipuri", NativeName: "ꯃꯤꯇꯩꯂꯣꯟ"},
	{Code: "sat", Name: "Santali", NativeName: "ᱥᱟᱱᱛᱟᱲᱤ"},
	{Code: "brx", Name: "Bodo", NativeName: "बड़ो"},
}

// All returns a copy of the catalog in display order.
func All() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Default returns the pair the portal starts with: English to Hindi.
func Default() Pair {
	return Pair{Source: catalog[0], Target: catalog[1]}
}

// Lookup finds a catalog entry by code. Region and script subtags are
// ignored, so "hi-IN" and "HI" both resolve to Hindi.
func Lookup(code string) (Descriptor, bool) {
	base := Canonical(code)
	if base == "" {
		return Descriptor{}, false
	}
	for _, d := range catalog {
		if d.Code == base {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Canonical reduces a BCP 47 tag to its base language code. It returns ""
// for input that does not parse.
func Canonical(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := xlang.Parse(code)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// NewPair resolves both codes against the catalog.
func NewPair(source, target string) (Pair, error) {
	src, ok := Lookup(source)
	if !ok {
		return Pair{}, fmt.Errorf("%w: source %q", ErrUnsupported, source)
	}
	tgt, ok := Lookup(target)
	if !ok {
		return Pair{}, fmt.Errorf("%w: target %q", ErrUnsupported, target)
	}
	return Pair{Source: src, Target: tgt}, nil
}
