package document

import (
	"context"
	"time"

	"github.com/valpere/anuvad/internal/language"
)

// DefaultLatency is how long StubTranslator pretends to work.
const DefaultLatency = 2500 * time.Millisecond

// Request is one document run handed to a Translator.
type Request struct {
	FileName string
	Text     string
	Pair     language.Pair
}

// Artifact is the downloadable result of a successful run.
type Artifact struct {
	Text      string
	FileName  string
	Pair      language.Pair
	CreatedAt time.Time
}

// Translator turns extracted document text into an artifact.
type Translator interface {
	Translate(ctx context.Context, req Request) (Artifact, error)
}

// StubTranslator simulates a translation backend: it waits Latency and
// returns the original text verbatim inside an annotated header.
type StubTranslator struct {
	Latency time.Duration
	Now     func() time.Time
}

func NewStubTranslator(latency time.Duration) *StubTranslator {
	return &StubTranslator{Latency: latency, Now: time.Now}
}

func (s *StubTranslator) Translate(ctx context.Context, req Request) (Artifact, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Artifact{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	created := now()

	text := payload{
		title:    "Anuvad Simulated Translation Complete",
		fileName: req.FileName,
		pair:     req.Pair,
		created:  created,
		elapsed:  s.Latency,
		note:     "simulated",
		body:     req.Text,
	}.render()

	return Artifact{
		Text:      text,
		FileName:  req.FileName,
		Pair:      req.Pair,
		CreatedAt: created,
	}, nil
}
