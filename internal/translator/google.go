package translator

import (
	"context"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleService uses Cloud Translation v2. Credentials come from
// ServiceConfig or, when empty, Application Default Credentials.
type GoogleService struct{}

func NewGoogleService() *GoogleService {
	return &GoogleService{}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	target, err := language.Parse(req.TargetLang)
	if err != nil {
		return fail(result, "invalid target language: %v", err)
	}

	var opts *translate.Options
	if req.SourceLang != "" && req.SourceLang != "auto" {
		source, err := language.Parse(req.SourceLang)
		if err != nil {
			return fail(result, "invalid source language: %v", err)
		}
		opts = &translate.Options{Source: source, Format: translate.Text}
	}

	var clientOpts []option.ClientOption
	if cfg.Credentials != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.Credentials))
	}
	if cfg.ProjectID != "" {
		clientOpts = append(clientOpts, option.WithQuotaProject(cfg.ProjectID))
	}

	client, err := translate.NewClient(ctx, clientOpts...)
	if err != nil {
		return fail(result, "failed to create client: %v", err)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{req.Text}, target, opts)
	if err != nil {
		return fail(result, "translation failed: %v", err)
	}
	if len(translations) == 0 {
		return fail(result, "no translation returned")
	}

	result.TranslatedText = translations[0].Text
	result.Confidence = 1.0
	if translations[0].Source != language.Und {
		result.Metadata = map[string]string{"detected_source": translations[0].Source.String()}
	}

	return result, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	return nil
}

func (s *GoogleService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{
		"en", "hi", "bn", "te", "mr", "ta", "gu", "kn", "ml", "pa",
		"or", "as", "ur", "sa", "ne", "sd", "mai", "doi", "kok", "mni",
	}, nil
}
