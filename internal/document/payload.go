package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/valpere/anuvad/internal/language"
)

const rule = "------------------------------------------"

type payload struct {
	title    string
	fileName string
	pair     language.Pair
	created  time.Time
	elapsed  time.Duration
	note     string
	body     string
}

// render lays out the annotated artifact shared by every Translator.
func (p payload) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s ---\n\n", p.title)
	fmt.Fprintf(&b, "Original File: %s\n", p.fileName)
	fmt.Fprintf(&b, "Translation Direction: %s -> %s\n", p.pair.Source, p.pair.Target)
	fmt.Fprintf(&b, "Generated: %s\n", p.created.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Processing Time: %.1f seconds", p.elapsed.Seconds())
	if p.note != "" {
		fmt.Fprintf(&b, " (%s)", p.note)
	}
	b.WriteString("\n\n")
	b.WriteString(rule + "\n")
	b.WriteString("[START OF DOCUMENT CONTENT]\n")
	b.WriteString(p.body)
	if !strings.HasSuffix(p.body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("[END OF DOCUMENT CONTENT]\n")
	b.WriteString(rule + "\n")
	return b.String()
}
