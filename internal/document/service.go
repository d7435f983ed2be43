package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valpere/anuvad/internal/chunker"
	"github.com/valpere/anuvad/internal/orchestrator"
	"github.com/valpere/anuvad/internal/translator"
)

// DefaultChunkSize keeps each query under MyMemory's request limit.
const DefaultChunkSize = 450

// ServiceTranslator sends the document through real translation services,
// one chunk at a time, keeping the best-scoring result for each chunk.
type ServiceTranslator struct {
	orchestrator *orchestrator.Orchestrator
	config       translator.ServiceConfig
	chunkSize    int
	Now          func() time.Time
}

func NewServiceTranslator(o *orchestrator.Orchestrator, cfg translator.ServiceConfig, chunkSize int) *ServiceTranslator {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ServiceTranslator{
		orchestrator: o,
		config:       cfg,
		chunkSize:    chunkSize,
		Now:          time.Now,
	}
}

func (t *ServiceTranslator) Translate(ctx context.Context, req Request) (Artifact, error) {
	start := time.Now()
	chunks := chunker.Chunk(req.Text, t.chunkSize)

	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Artifact{}, &TranslationError{Err: err}
		}

		result := t.orchestrator.Execute(ctx, t.config, translator.TranslateRequest{
			Text:       chunk,
			SourceLang: req.Pair.Source.Code,
			TargetLang: req.Pair.Target.Code,
			SourceName: req.Pair.Source.Name,
			TargetName: req.Pair.Target.Name,
		})
		if err := result.Err(); err != nil {
			return Artifact{}, &TranslationError{Err: fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)}
		}
		best, _ := result.Best()
		translated = append(translated, best.TranslatedText)
	}

	created := t.Now()
	text := payload{
		title:    "Anuvad Translation Complete",
		fileName: req.FileName,
		pair:     req.Pair,
		created:  created,
		elapsed:  time.Since(start),
		body:     strings.Join(translated, "\n\n"),
	}.render()

	return Artifact{
		Text:      text,
		FileName:  req.FileName,
		Pair:      req.Pair,
		CreatedAt: created,
	}, nil
}
