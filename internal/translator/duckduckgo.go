package translator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/ddgtran/internal/language"
	"github.com/valpere/ddgtran/internal/session"
	"github.com/valpere/ddgtran/internal/unescape"
)

// maxAttempts bounds the 403 handling to one refresh and one retry.
const maxAttempts = 2

type DuckDuckGoService struct {
	baseURL   string
	userAgent string
	client    *http.Client
	session   *session.Manager
	languages *language.Table
	logger    *zap.Logger
}

// NewDuckDuckGoService wires a service to a session Manager. Nil arguments
// select the process-wide Manager, the default language table and a no-op
// logger.
func NewDuckDuckGoService(cfg ServiceConfig, sess *session.Manager, languages *language.Table, logger *zap.Logger) *DuckDuckGoService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = session.DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = session.DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = session.DefaultTimeout
	}
	if sess == nil {
		sess = session.Default()
	}
	if languages == nil {
		languages = language.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuckDuckGoService{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		session:   sess,
		languages: languages,
		logger:    logger,
	}
}

func (s *DuckDuckGoService) Name() string {
	return "duckduckgo"
}

func (s *DuckDuckGoService) Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = language.Auto
	}

	if err := s.languages.ValidatePair(sourceLang, req.TargetLang); err != nil {
		result.Error = err.Error()
		return result, err
	}

	for result.Attempts < maxAttempts {
		result.Attempts++

		token, err := s.session.Current(ctx)
		if err != nil {
			result.Error = fmt.Sprintf("failed to get session token: %v", err)
			return result, fmt.Errorf("failed to get session token: %w", err)
		}

		resp, err := s.post(ctx, token, sourceLang, req.TargetLang, req.Text)
		if err != nil {
			result.Error = err.Error()
			return result, err
		}

		if resp.status == http.StatusForbidden {
			if result.Attempts == maxAttempts {
				break
			}
			s.logger.Info("403 status code received; refreshing session token and retrying",
				zap.String("from", sourceLang), zap.String("to", req.TargetLang))
			if _, err := s.session.RefreshIfStale(ctx, token); err != nil {
				result.Error = fmt.Sprintf("failed to refresh session token: %v", err)
				return result, fmt.Errorf("failed to refresh session token: %w", err)
			}
			continue
		}

		if resp.status < 200 || resp.status > 299 {
			statusErr := &StatusError{StatusCode: resp.status, Body: snippet(resp.body)}
			result.Error = statusErr.Error()
			return result, statusErr
		}

		raw, detected, err := extractPayload(resp.body)
		if err != nil {
			result.Error = fmt.Sprintf("failed to decode response: %v", err)
			return result, err
		}

		result.TranslatedText = unescape.Unescape(raw)
		result.DetectedLanguage = detected
		return result, nil
	}

	result.Error = ErrCredentialExpired.Error()
	return result, ErrCredentialExpired
}

// IsAvailable makes sure a session token can be obtained.
func (s *DuckDuckGoService) IsAvailable(ctx context.Context) error {
	if _, err := s.session.Current(ctx); err != nil {
		return fmt.Errorf("DuckDuckGo not available: %w", err)
	}
	return nil
}

func (s *DuckDuckGoService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return s.languages.Codes(), nil
}

type rawResponse struct {
	status int
	body   []byte
}

func (s *DuckDuckGoService) post(ctx context.Context, token, from, to, text string) (*rawResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(token, from, to), strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", s.userAgent)
	httpReq.Header.Set("Content-Type", "text/plain; charset=UTF-8")
	httpReq.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &session.TransportError{Op: "translate", Err: err}
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if errors.Is(err, ErrMalformedResponse) {
		return nil, err
	}
	if err != nil {
		return nil, &session.TransportError{Op: "read translation", Err: err}
	}

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	return &rawResponse{status: resp.StatusCode, body: body}, nil
}

func (s *DuckDuckGoService) endpoint(token, from, to string) string {
	q := url.Values{}
	q.Set("query", "translate")
	q.Set("vqd", token)
	q.Set("to", to)
	if from != language.Auto {
		q.Set("from", from)
	}
	return s.baseURL + "/translation.js?" + q.Encode()
}

func snippet(body []byte) string {
	const maxSnippet = 200
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippet {
		s = s[:maxSnippet] + "..."
	}
	return s
}
