package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/anuvad/internal/postprocess"
)

// DefaultOllamaModels are tried in order; the first one is used unless the
// request config names a model.
var DefaultOllamaModels = []string{
	"aya-expanse:8b",
	"gemma2:9b",
	"llama3.1:8b",
}

// OllamaTranslator prompts a self-hosted model through Ollama's generate API.
type OllamaTranslator struct {
	baseURL string
	models  []string
	client  *http.Client
}

func NewOllamaTranslator(baseURL string, models []string) *OllamaTranslator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if len(models) == 0 {
		models = DefaultOllamaModels
	}
	return &OllamaTranslator{
		baseURL: baseURL,
		models:  models,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OllamaTranslator) Name() string {
	return "ollama"
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

func (s *OllamaTranslator) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	model := cfg.Model
	if model == "" {
		model = s.models[0]
	}

	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  model,
		Prompt: buildOllamaPrompt(req),
		Stream: false,
	})
	if err != nil {
		return fail(result, "failed to marshal request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return fail(result, "failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fail(result, "request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(result, "API returned status %d", resp.StatusCode)
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return fail(result, "failed to decode response: %v", err)
	}

	text := postprocess.Clean(genResp.Response)
	if text == "" {
		return fail(result, "model %s returned an empty translation", model)
	}

	result.TranslatedText = text
	result.Confidence = 0.7
	result.Metadata = map[string]string{"model": model}

	return result, nil
}

func buildOllamaPrompt(req TranslateRequest) string {
	source := languageLabel(req.SourceName, req.SourceLang)
	if req.SourceLang == "" || req.SourceLang == "auto" {
		source = "the detected language"
	}
	target := languageLabel(req.TargetName, req.TargetLang)

	return fmt.Sprintf(`Translate the following text from %s to %s.
Keep line breaks. Only respond with the translation, nothing else.

Text:
%s`, source, target, req.Text)
}

func languageLabel(name, code string) string {
	if name == "" {
		return code
	}
	return fmt.Sprintf("%s (%s)", name, code)
}

func (s *OllamaTranslator) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *OllamaTranslator) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{"en", "hi", "bn", "mr", "ta", "te", "gu", "pa", "ur", "ne"}, nil
}

func (s *OllamaTranslator) Models() []string {
	return s.models
}
