package translator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/valpere/ddgtran/internal/language"
)

// FallbackText is returned by Client.Translate when no translation could be
// obtained.
const FallbackText = "TRANSLATOR ERROR"

// Client translates between one fixed pair of languages. The pair is
// validated once, when the Client is built, and never changes afterwards.
type Client struct {
	service TranslationService
	from    string
	to      string
	logger  *zap.Logger
}

// NewClient binds svc to the from/to pair. It fails with
// language.ErrAutoTargetNotAllowed when to is "auto" and with a
// *language.InvalidCodeError when a code is not supported by svc.
func NewClient(svc TranslationService, from, to string) (*Client, error) {
	if to == language.Auto {
		return nil, language.ErrAutoTargetNotAllowed
	}

	codes, err := svc.SupportedLanguages(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to list supported languages: %w", err)
	}
	if err := language.NewTable(codes...).ValidatePair(from, to); err != nil {
		return nil, err
	}

	return &Client{service: svc, from: from, to: to, logger: zap.NewNop()}, nil
}

// NewAutoClient is NewClient with the source language detected by the service.
func NewAutoClient(svc TranslationService, to string) (*Client, error) {
	return NewClient(svc, language.Auto, to)
}

// WithLogger returns a copy of c that reports failures to logger.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	cp := *c
	if logger == nil {
		logger = zap.NewNop()
	}
	cp.logger = logger
	return &cp
}

func (c *Client) From() string { return c.from }
func (c *Client) To() string   { return c.to }

// TranslateResult translates text and reports failures as errors.
func (c *Client) TranslateResult(ctx context.Context, text string) (*ServiceResult, error) {
	return c.service.Translate(ctx, TranslateRequest{
		Text:       text,
		SourceLang: c.from,
		TargetLang: c.to,
	})
}

// Translate translates text. Any failure is logged and FallbackText is
// returned in place of the translation.
func (c *Client) Translate(ctx context.Context, text string) string {
	res, err := c.TranslateResult(ctx, text)
	if err != nil {
		c.logger.Error("translation failed",
			zap.String("service", c.service.Name()),
			zap.String("from", c.from),
			zap.String("to", c.to),
			zap.Error(err))
		return FallbackText
	}
	return res.TranslatedText
}
