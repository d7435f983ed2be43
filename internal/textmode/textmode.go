// Package textmode translates typed text through the configured services,
// answering repeats from the cache.
package textmode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/valpere/anuvad/internal/language"
	"github.com/valpere/anuvad/internal/metrics"
	"github.com/valpere/anuvad/internal/orchestrator"
	"github.com/valpere/anuvad/internal/speech"
	"github.com/valpere/anuvad/internal/store"
	"github.com/valpere/anuvad/internal/translator"
)

// AutoSource asks for the source language to be detected.
const AutoSource = "auto"

var (
	ErrEmptyText = errors.New("text is empty")
	// ErrTranslationFailed is what the user sees when no service could
	// translate the text.
	ErrTranslationFailed = errors.New("translation failed")
)

// Cache is the subset of store.Store used here.
type Cache interface {
	GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (*store.CachedTranslation, bool, error)
	SaveTranslation(ctx context.Context, sourceText, sourceLang, targetLang, translatedText, service string) error
}

type Detector interface {
	DetectISO(text string) (string, bool)
}

type Options struct {
	Orchestrator *orchestrator.Orchestrator
	Config       translator.ServiceConfig
	// Cache and Detector are optional.
	Cache       Cache
	Detector    Detector
	Synthesizer speech.Synthesizer
	Logger      *zerolog.Logger
}

type Service struct {
	orchestrator *orchestrator.Orchestrator
	config       translator.ServiceConfig
	cache        Cache
	detector     Detector
	synthesizer  speech.Synthesizer
	logger       zerolog.Logger
}

type Result struct {
	TranslatedText string `json:"translatedText"`
	Service        string `json:"service"`
	Cached         bool   `json:"cached"`
	Source         string `json:"source"`
	Target         string `json:"target"`
}

func New(opts Options) *Service {
	s := &Service{
		orchestrator: opts.Orchestrator,
		config:       opts.Config,
		cache:        opts.Cache,
		detector:     opts.Detector,
		synthesizer:  opts.Synthesizer,
		logger:       zerolog.Nop(),
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	return s
}

// Translate translates text from source to target. source may be
// AutoSource; it is then resolved by the detector when one is configured.
func (s *Service) Translate(ctx context.Context, text, source, target string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	tgt, ok := language.Lookup(target)
	if !ok {
		return nil, fmt.Errorf("%w: target %q", language.ErrUnsupported, target)
	}
	src, err := s.resolveSource(text, source)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.lookup(ctx, text, src.Code, tgt.Code); ok {
		return &Result{
			TranslatedText: cached.TranslatedText,
			Service:        cached.Service,
			Cached:         true,
			Source:         src.Code,
			Target:         tgt.Code,
		}, nil
	}

	start := time.Now()
	result := s.orchestrator.Execute(ctx, s.config, translator.TranslateRequest{
		Text:       text,
		SourceLang: src.Code,
		TargetLang: tgt.Code,
		SourceName: src.Name,
		TargetName: tgt.Name,
	})
	if err := result.Err(); err != nil {
		metrics.RecordTextTranslation("", "error", time.Since(start))
		s.logger.Error().Err(err).Str("source", src.Code).Str("target", tgt.Code).Msg("text translation failed")
		return nil, fmt.Errorf("%w: %w", ErrTranslationFailed, err)
	}
	best, _ := result.Best()
	metrics.RecordTextTranslation(best.ServiceName, "success", time.Since(start))

	if s.cache != nil && src.Code != AutoSource {
		if err := s.cache.SaveTranslation(ctx, text, src.Code, tgt.Code, best.TranslatedText, best.ServiceName); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache translation")
		}
	}

	s.logger.Debug().
		Str("service", best.ServiceName).
		Float64("confidence", best.Confidence).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("text translated")

	return &Result{
		TranslatedText: best.TranslatedText,
		Service:        best.ServiceName,
		Source:         src.Code,
		Target:         tgt.Code,
	}, nil
}

// Speak reads text aloud in the voice for code.
func (s *Service) Speak(ctx context.Context, text, code string) error {
	if s.synthesizer == nil {
		return errors.New("speech output is not available")
	}
	return s.synthesizer.Speak(ctx, speech.NewUtterance(text, code))
}

func (s *Service) resolveSource(text, source string) (language.Descriptor, error) {
	if !strings.EqualFold(strings.TrimSpace(source), AutoSource) {
		d, ok := language.Lookup(source)
		if !ok {
			return language.Descriptor{}, fmt.Errorf("%w: source %q", language.ErrUnsupported, source)
		}
		return d, nil
	}
	if s.detector != nil {
		if code, ok := s.detector.DetectISO(text); ok {
			if d, ok := language.Lookup(code); ok {
				s.logger.Debug().Str("detected", code).Msg("source language detected")
				return d, nil
			}
		}
	}
	return language.Descriptor{Code: AutoSource}, nil
}

func (s *Service) lookup(ctx context.Context, text, source, target string) (*store.CachedTranslation, bool) {
	if s.cache == nil || source == AutoSource {
		return nil, false
	}
	cached, found, err := s.cache.GetCachedTranslation(ctx, text, source, target)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache lookup failed")
		return nil, false
	}
	metrics.RecordCacheLookup(found)
	return cached, found
}
