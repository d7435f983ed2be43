// Package document implements the document translation workflow: a file
// passes intake, its text is extracted and translated, and the resulting
// artifact is exported on request. Each step is triggered by the user.
package document

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/valpere/anuvad/internal/language"
	"github.com/valpere/anuvad/internal/metrics"
)

type Status int

const (
	StatusIdle Status = iota
	StatusTranslating
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusTranslating:
		return "translating"
	case StatusComplete:
		return "complete"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type event int

const (
	eventSubmit event = iota
	eventStart
	eventSucceed
	eventFail
)

type transition struct {
	from Status
	on   event
}

// transitions is the complete state machine. Export is not listed: it
// never changes state.
var transitions = map[transition]Status{
	{StatusIdle, eventSubmit}:         StatusIdle,
	{StatusTranslating, eventSubmit}:  StatusIdle,
	{StatusComplete, eventSubmit}:     StatusIdle,
	{StatusIdle, eventStart}:          StatusTranslating,
	{StatusComplete, eventStart}:      StatusTranslating,
	{StatusTranslating, eventSucceed}: StatusComplete,
	{StatusTranslating, eventFail}:    StatusIdle,
}

// errInvalidTransition signals a bug: callers check preconditions first.
var errInvalidTransition = errors.New("invalid status transition")

type Options struct {
	// Extractor defaults to one reading through SourceReader.
	Extractor *Extractor
	// Translator defaults to a StubTranslator with DefaultLatency.
	Translator Translator
	Logger     *zerolog.Logger
}

// Session holds one user's document workflow. All methods are safe for
// concurrent use; the lock is never held while extracting or translating.
type Session struct {
	mu         sync.Mutex
	status     Status
	pending    *PendingFile
	artifact   *Artifact
	generation uint64
	// running stays set until the current run has unwound, even after a
	// Submit has moved status back to Idle.
	running bool
	cancel  context.CancelFunc

	extractor  *Extractor
	translator Translator
	logger     zerolog.Logger
}

func NewSession(opts Options) *Session {
	s := &Session{
		extractor:  opts.Extractor,
		translator: opts.Translator,
		logger:     zerolog.Nop(),
	}
	if s.extractor == nil {
		s.extractor = NewExtractor(nil)
	}
	if s.translator == nil {
		s.translator = NewStubTranslator(DefaultLatency)
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	return s
}

// fire applies ev under s.mu.
func (s *Session) fire(ev event) error {
	next, ok := transitions[transition{s.status, ev}]
	if !ok {
		return fmt.Errorf("%w: %s on event %d", errInvalidTransition, s.status, ev)
	}
	s.status = next
	return nil
}

// Submit validates f and makes it the pending file. Any artifact is
// discarded and an in-flight run is superseded and canceled. An oversized
// file leaves the session untouched.
func (s *Session) Submit(f File) (PendingFile, error) {
	if f.Size > MaxFileSize {
		metrics.RecordIntakeRejection("too_large")
		s.logger.Warn().
			Str("file", f.Name).
			Int64("size", f.Size).
			Msg("file rejected: exceeds size limit")
		return PendingFile{}, ErrFileTooLarge
	}

	switch {
	case isPlainText(f.Name):
	case IsAccepted(f.Name):
		s.logger.Warn().Str("file", f.Name).Msg("binary document formats are not parsed; contents will be read as raw text")
	default:
		s.logger.Warn().Str("file", f.Name).Msg("extension outside the accepted list; contents will be read as raw text")
	}

	pending := PendingFile{Name: f.Name, SizeBytes: f.Size, source: f.Source}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fire(eventSubmit); err != nil {
		return PendingFile{}, err
	}
	s.pending = &pending
	s.artifact = nil
	s.generation++
	if s.cancel != nil {
		s.cancel()
	}

	s.logger.Info().
		Str("file", f.Name).
		Str("size", pending.SizeKB()).
		Msg("file selected")
	return pending, nil
}

// Translate runs extraction and translation for the pending file. It
// blocks until the run finishes or ctx is done.
func (s *Session) Translate(ctx context.Context, pair language.Pair) (Artifact, error) {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return Artifact{}, ErrNoFile
	}
	if s.running || s.status == StatusTranslating {
		s.mu.Unlock()
		return Artifact{}, ErrRunInFlight
	}
	if err := s.fire(eventStart); err != nil {
		s.mu.Unlock()
		return Artifact{}, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.running = true
	s.cancel = cancel
	s.artifact = nil
	gen := s.generation
	file := *s.pending
	s.mu.Unlock()

	start := time.Now()
	log := s.logger.With().
		Str("file", file.Name).
		Str("source", pair.Source.Code).
		Str("target", pair.Target.Code).
		Logger()
	log.Info().Msg("translation started")

	text, err := s.extractor.ExtractText(ctx, file)
	if err != nil {
		return Artifact{}, s.abort(gen, start, "read_error", log, err)
	}

	artifact, err := s.translator.Translate(ctx, Request{FileName: file.Name, Text: text, Pair: pair})
	if err != nil {
		var te *TranslationError
		if !errors.As(err, &te) {
			err = &TranslationError{Err: err}
		}
		return Artifact{}, s.abort(gen, start, "translation_error", log, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishRun()
	if gen != s.generation {
		metrics.RecordDocumentRun("superseded", time.Since(start))
		log.Info().Msg("translation result discarded: file was replaced")
		return Artifact{}, ErrSuperseded
	}
	if err := s.fire(eventSucceed); err != nil {
		return Artifact{}, err
	}
	s.pending.Content = &text
	s.artifact = &artifact

	metrics.RecordDocumentRun("complete", time.Since(start))
	log.Info().Dur("elapsed", time.Since(start)).Msg("translation complete")
	return artifact, nil
}

// abort returns the session to Idle after a failed run, unless the run was
// already superseded.
func (s *Session) abort(gen uint64, start time.Time, outcome string, log zerolog.Logger, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishRun()
	if gen != s.generation {
		metrics.RecordDocumentRun("superseded", time.Since(start))
		return ErrSuperseded
	}
	if err := s.fire(eventFail); err != nil {
		return err
	}
	metrics.RecordDocumentRun(outcome, time.Since(start))
	log.Error().Err(cause).Msg("translation failed")
	return cause
}

// finishRun clears the in-flight run under s.mu.
func (s *Session) finishRun() {
	s.running = false
	s.cancel = nil
}

// Export saves the artifact through saver. It reports false, with no
// error, when there is nothing to export. Exporting never changes state.
func (s *Session) Export(ctx context.Context, saver Saver) (bool, error) {
	s.mu.Lock()
	if s.status != StatusComplete || s.artifact == nil {
		s.mu.Unlock()
		return false, nil
	}
	out := ExportArtifact(*s.artifact)
	s.mu.Unlock()

	if err := saver.Save(ctx, out); err != nil {
		return false, fmt.Errorf("failed to save %s: %w", out.Name, err)
	}
	metrics.RecordExport()
	s.logger.Info().Str("output", out.Name).Int("bytes", len(out.Body)).Msg("artifact exported")
	return true, nil
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Pending returns the pending file, if any.
func (s *Session) Pending() (PendingFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return PendingFile{}, false
	}
	return *s.pending, true
}

func (s *Session) Artifact() (Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifact == nil {
		return Artifact{}, false
	}
	return *s.artifact, true
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	FileName    string `json:"fileName,omitempty"`
	SizeBytes   int64  `json:"sizeBytes"`
	Size        string `json:"size,omitempty"`
	Status      Status `json:"status"`
	HasArtifact bool   `json:"hasArtifact"`
	OutputName  string `json:"outputName,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Status: s.status, HasArtifact: s.artifact != nil}
	if s.pending != nil {
		snap.FileName = s.pending.Name
		snap.SizeBytes = s.pending.SizeBytes
		snap.Size = s.pending.SizeKB()
	}
	if s.artifact != nil {
		snap.OutputName = OutputName(s.artifact.FileName)
	}
	return snap
}
