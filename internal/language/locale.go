package language

// speechLocales maps catalog codes to the locale speech engines expect.
var speechLocales = map[string]string{
	"en": "en-US",
	"hi": "hi-IN",
	"bn": "bn-IN",
	"te": "te-IN",
	"mr": "mr-IN",
	"ta": "ta-IN",
	"gu": "gu-IN",
	"kn": "kn-IN",
	"ml": "ml-IN",
	"pa": "pa-IN",
	"or": "or-IN",
	"as": "as-IN",
}

// SpeechLocale returns the recognition/synthesis locale for a language code,
// falling back to the code itself for languages without a regional voice.
func SpeechLocale(code string) string {
	if locale, ok := speechLocales[Canonical(code)]; ok {
		return locale
	}
	return code
}
