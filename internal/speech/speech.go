// Package speech defines the recognition and synthesis capabilities used
// by the voice and text modes, with stand-ins for environments that have
// neither a microphone nor a speaker.
package speech

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/valpere/anuvad/internal/language"
)

// ErrNoSpeech is returned when the audio holds nothing to transcribe.
var ErrNoSpeech = errors.New("no speech detected")

// maxTranscriptBytes bounds what StubRecognizer reads from a payload.
const maxTranscriptBytes = 1 << 20

// Recognizer turns recorded audio into text in the given speech locale.
type Recognizer interface {
	Recognize(ctx context.Context, audio io.Reader, locale string) (string, error)
}

// Synthesizer speaks an utterance aloud.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
}

type Utterance struct {
	Text   string  `json:"text"`
	Locale string  `json:"locale"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

// NewUtterance uses the portal's voice settings: slightly slowed speech at
// normal pitch and full volume.
func NewUtterance(text, code string) Utterance {
	return Utterance{
		Text:   text,
		Locale: language.SpeechLocale(code),
		Rate:   0.9,
		Pitch:  1,
		Volume: 1,
	}
}

// StubRecognizer returns Transcript when set. Otherwise it treats the
// payload as an already-transcribed UTF-8 text.
type StubRecognizer struct {
	Transcript string
}

func (r StubRecognizer) Recognize(ctx context.Context, audio io.Reader, locale string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := r.Transcript
	if text == "" && audio != nil {
		data, err := io.ReadAll(io.LimitReader(audio, maxTranscriptBytes))
		if err != nil {
			return "", err
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// RecordingSynthesizer keeps every utterance instead of playing it.
type RecordingSynthesizer struct {
	mu     sync.Mutex
	spoken []Utterance
	Err    error
}

func (s *RecordingSynthesizer) Speak(ctx context.Context, u Utterance) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, u)
	return nil
}

func (s *RecordingSynthesizer) Spoken() []Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Utterance, len(s.spoken))
	copy(out, s.spoken)
	return out
}

// LogSynthesizer writes utterances to the log; used by the CLI and server,
// which have no audio output.
type LogSynthesizer struct {
	Logger zerolog.Logger
}

func (s LogSynthesizer) Speak(ctx context.Context, u Utterance) error {
	s.Logger.Info().
		Str("locale", u.Locale).
		Float64("rate", u.Rate).
		Float64("pitch", u.Pitch).
		Float64("volume", u.Volume).
		Str("text", u.Text).
		Msg("speak")
	return nil
}
