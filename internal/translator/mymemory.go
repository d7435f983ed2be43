package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

const defaultMyMemoryURL = "https://api.mymemory.translated.net"

// MyMemoryService calls the free MyMemory API (no key; an email raises the
// daily quota). Queries longer than ~500 bytes are rejected upstream, so long
// documents go through the chunker first.
type MyMemoryService struct {
	email   string
	baseURL string
	client  *http.Client
}

func NewMyMemoryService(email, baseURL string) *MyMemoryService {
	if baseURL == "" {
		baseURL = defaultMyMemoryURL
	}
	return &MyMemoryService{
		email:   email,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

func (s *MyMemoryService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	sourceLang := req.SourceLang
	if sourceLang == "" || sourceLang == "auto" {
		sourceLang = "en"
	}

	query := url.Values{}
	query.Set("q", req.Text)
	query.Set("langpair", sourceLang+"|"+req.TargetLang)
	if s.email != "" {
		query.Set("de", s.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/get?"+query.Encode(), nil)
	if err != nil {
		return fail(result, "failed to create request: %v", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fail(result, "request failed: %v", err)
	}
	defer resp.Body.Close()

	var mymemResp struct {
		ResponseData struct {
			TranslatedText string  `json:"translatedText"`
			Match          float64 `json:"match"`
		} `json:"responseData"`
		ResponseStatus  int    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&mymemResp); err != nil {
		return fail(result, "failed to decode response: %v", err)
	}

	if mymemResp.ResponseStatus != http.StatusOK {
		return fail(result, "API error: %s (%d)", mymemResp.ResponseDetails, mymemResp.ResponseStatus)
	}
	if mymemResp.ResponseData.TranslatedText == "" {
		return fail(result, "empty translation response")
	}

	result.TranslatedText = mymemResp.ResponseData.TranslatedText
	result.Confidence = clamp01(mymemResp.ResponseData.Match)

	return result, nil
}

func (s *MyMemoryService) IsAvailable(ctx context.Context) error {
	return nil
}

func (s *MyMemoryService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{
		"en", "hi", "bn", "te", "mr", "ta", "gu", "kn", "ml", "pa",
		"or", "as", "ur", "sa", "ne", "sd", "ks", "kok", "mai", "doi",
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
