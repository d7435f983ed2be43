/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/valpere/anuvad/internal/config"
	"github.com/valpere/anuvad/internal/detector"
	"github.com/valpere/anuvad/internal/document"
	"github.com/valpere/anuvad/internal/orchestrator"
	"github.com/valpere/anuvad/internal/speech"
	"github.com/valpere/anuvad/internal/store"
	"github.com/valpere/anuvad/internal/textmode"
	"github.com/valpere/anuvad/internal/translator"
)

// buildServices constructs the translation services named in the config.
func buildServices(cfg config.TranslationConfig) ([]translator.TranslationService, error) {
	var list []translator.TranslationService

	for _, name := range cfg.Services {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "mymemory":
			list = append(list, translator.NewMyMemoryService(cfg.MyMemoryEmail, cfg.MyMemoryURL))
		case "google":
			list = append(list, translator.NewGoogleService())
		case "ollama":
			list = append(list, translator.NewOllamaTranslator(cfg.OllamaURL, cfg.OllamaModels))
		default:
			logger.Warn().Str("service", name).Msg("unknown service, skipping")
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("no valid services configured")
	}
	return list, nil
}

func newOrchestrator(cfg config.TranslationConfig) (*orchestrator.Orchestrator, error) {
	services, err := buildServices(cfg)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(services, orchestrator.OrchestratorConfig{Timeout: cfg.Timeout}), nil
}

func serviceConfig(cfg config.TranslationConfig) translator.ServiceConfig {
	return translator.ServiceConfig{
		Credentials: cfg.Credentials,
		ProjectID:   cfg.ProjectID,
		Timeout:     cfg.Timeout,
	}
}

// openCache opens the translation cache, or returns nil when it is
// disabled. A cache that cannot be opened is logged and skipped.
func openCache(cfg config.CacheConfig) *store.Store {
	if !cfg.Enabled {
		return nil
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn().Err(err).Str("path", cfg.Path).Msg("cache disabled")
			return nil
		}
	}
	db, err := store.New(cfg.Path)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.Path).Msg("cache disabled")
		return nil
	}
	return db
}

// newTextService wires the text mode. The returned closer releases the
// cache and is safe to call when the cache is disabled.
func newTextService(cfg *config.Config, synth speech.Synthesizer) (*textmode.Service, func(), error) {
	orch, err := newOrchestrator(cfg.Translation)
	if err != nil {
		return nil, nil, err
	}

	opts := textmode.Options{
		Orchestrator: orch,
		Config:       serviceConfig(cfg.Translation),
		Detector:     detector.New(),
		Synthesizer:  synth,
		Logger:       &logger,
	}
	closer := func() {}
	if db := openCache(cfg.Cache); db != nil {
		opts.Cache = db
		closer = func() { db.Close() }
	}
	return textmode.New(opts), closer, nil
}

// newDocumentTranslator returns the backend selected by document.backend.
func newDocumentTranslator(cfg *config.Config) (document.Translator, error) {
	switch cfg.Document.Backend {
	case "service":
		orch, err := newOrchestrator(cfg.Translation)
		if err != nil {
			return nil, err
		}
		return document.NewServiceTranslator(orch, serviceConfig(cfg.Translation), cfg.Document.ChunkSize), nil
	default:
		return document.NewStubTranslator(cfg.Document.SimulatedLatency), nil
	}
}
