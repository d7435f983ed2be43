// Package voice runs the speak-translate-listen loop: recognize speech in
// the source language, translate the transcript, speak the translation.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/valpere/anuvad/internal/language"
	"github.com/valpere/anuvad/internal/metrics"
	"github.com/valpere/anuvad/internal/speech"
	"github.com/valpere/anuvad/internal/textmode"
)

type Status int

const (
	StatusIdle Status = iota
	StatusRecording
	StatusProcessing
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRecording:
		return "recording"
	case StatusProcessing:
		return "processing"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrBusy is returned when a run is started while another is active.
var ErrBusy = errors.New("voice translation already in progress")

// RecognitionError wraps a failure to turn audio into text.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech recognition failed: %v", e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// Translator is satisfied by *textmode.Service.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (*textmode.Result, error)
}

type Result struct {
	Transcript  string `json:"transcript"`
	Translation string `json:"translation"`
	Service     string `json:"service"`
	// Spoken is false when synthesis failed; the run still succeeds.
	Spoken bool `json:"spoken"`
}

type Options struct {
	Recognizer  speech.Recognizer
	Translator  Translator
	Synthesizer speech.Synthesizer
	Logger      *zerolog.Logger
}

type Session struct {
	mu     sync.Mutex
	status Status

	recognizer  speech.Recognizer
	translator  Translator
	synthesizer speech.Synthesizer
	logger      zerolog.Logger
}

func NewSession(opts Options) *Session {
	s := &Session{
		recognizer:  opts.Recognizer,
		translator:  opts.Translator,
		synthesizer: opts.Synthesizer,
		logger:      zerolog.Nop(),
	}
	if s.recognizer == nil {
		s.recognizer = speech.StubRecognizer{}
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	if s.synthesizer == nil {
		s.synthesizer = speech.LogSynthesizer{Logger: s.logger}
	}
	return s
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Run records audio, translates what was said and speaks the result.
func (s *Session) Run(ctx context.Context, audio io.Reader, pair language.Pair) (*Result, error) {
	s.mu.Lock()
	if s.status != StatusIdle {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.status = StatusRecording
	s.mu.Unlock()
	defer s.setStatus(StatusIdle)

	transcript, err := s.recognizer.Recognize(ctx, audio, language.SpeechLocale(pair.Source.Code))
	if err != nil {
		metrics.RecordVoiceRun("recognition_error")
		s.logger.Warn().Err(err).Str("source", pair.Source.Code).Msg("speech recognition failed")
		return nil, &RecognitionError{Err: err}
	}

	s.setStatus(StatusProcessing)
	res, err := s.translator.Translate(ctx, transcript, pair.Source.Code, pair.Target.Code)
	if err != nil {
		metrics.RecordVoiceRun("translation_error")
		return nil, err
	}

	result := &Result{
		Transcript:  transcript,
		Translation: res.TranslatedText,
		Service:     res.Service,
		Spoken:      true,
	}
	if err := s.synthesizer.Speak(ctx, speech.NewUtterance(res.TranslatedText, pair.Target.Code)); err != nil {
		result.Spoken = false
		s.logger.Warn().Err(err).Str("target", pair.Target.Code).Msg("speech synthesis failed")
	}

	metrics.RecordVoiceRun("success")
	return result, nil
}
