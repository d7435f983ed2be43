// Package server exposes the three translation modes over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/valpere/anuvad/internal/config"
	"github.com/valpere/anuvad/internal/document"
	"github.com/valpere/anuvad/internal/speech"
	"github.com/valpere/anuvad/internal/textmode"
	"github.com/valpere/anuvad/internal/voice"
)

const (
	// maxUploadBytes leaves room for multipart framing around a 10MB file.
	maxUploadBytes = document.MaxFileSize + 1<<20
	maxAudioBytes  = 25 << 20
	maxJSONBytes   = 1 << 20
)

type Deps struct {
	Text        *textmode.Service
	Recognizer  speech.Recognizer
	Synthesizer speech.Synthesizer
	// NewDocumentSession builds the session behind each /api/documents id.
	NewDocumentSession func() *document.Session
	Logger             *zerolog.Logger
}

type Server struct {
	config    config.ServerConfig
	text      *textmode.Service
	voice     voice.Options
	documents *registry
	logger    zerolog.Logger
	router    chi.Router
}

func New(cfg config.ServerConfig, deps Deps) *Server {
	logger := zerolog.Nop()
	if deps.Logger != nil {
		logger = *deps.Logger
	}
	factory := deps.NewDocumentSession
	if factory == nil {
		factory = func() *document.Session {
			return document.NewSession(document.Options{Logger: &logger})
		}
	}

	s := &Server{
		config: cfg,
		text:   deps.Text,
		voice: voice.Options{
			Recognizer:  deps.Recognizer,
			Synthesizer: deps.Synthesizer,
			Logger:      &logger,
		},
		documents: newRegistry(factory, cfg.SessionTTL, cfg.MaxSessions),
		logger:    logger,
	}
	// A nil *textmode.Service stored in the interface would not compare
	// equal to nil.
	if deps.Text != nil {
		s.voice.Translator = deps.Text
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.config.RateLimit > 0 {
			window := s.config.RateWindow
			if window <= 0 {
				window = time.Minute
			}
			r.Use(rateLimit(s.config.RateLimit, window))
		}

		r.Get("/languages", s.handleLanguages)
		r.Post("/text", s.handleText)
		r.Post("/voice", s.handleVoice)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handleCreateDocument)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDocument)
				r.Delete("/", s.handleDeleteDocument)
				r.Put("/file", s.handleReplaceFile)
				r.Post("/translate", s.handleTranslateDocument)
				r.Get("/download", s.handleDownload)
			})
		})
	})

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	var janitor sync.WaitGroup
	defer janitor.Wait()
	defer stopJanitor()
	if s.config.SessionTTL > 0 {
		janitor.Add(1)
		go func() {
			defer janitor.Done()
			s.documents.janitor(janitorCtx, sweepInterval(s.config.SessionTTL), func(n int) {
				s.logger.Info().Int("evicted", n).Msg("idle document sessions evicted")
			})
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.config.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
