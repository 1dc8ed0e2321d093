package translator

import (
	"context"
	"time"
)

type ServiceConfig struct {
	BaseURL   string        `mapstructure:"base_url" json:"base_url"`
	UserAgent string        `mapstructure:"user_agent" json:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type ServiceResult struct {
	ServiceName      string        `json:"service_name"`
	TranslatedText   string        `json:"translated_text"`
	DetectedLanguage string        `json:"detected_language,omitempty"`
	Attempts         int           `json:"attempts"`
	Latency          time.Duration `json:"latency"`
	Error            string        `json:"error,omitempty"`
}

type TranslationService interface {
	Name() string
	Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
	SupportedLanguages(ctx context.Context) ([]string, error)
}
