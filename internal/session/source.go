package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL   = "https://duckduckgo.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:90.0) Gecko/20100101 Firefox/90.0"
	DefaultTimeout   = 30 * time.Second

	maxPageSize = 4 << 20
)

// vqdRe matches the inline-script assignment vqd='<token>'. Double quotes
// are accepted as well since the page has used both.
var vqdRe = regexp.MustCompile(`vqd=['"]([^'"]+)['"]`)

// TokenSource fetches a fresh session token.
type TokenSource interface {
	FetchToken(ctx context.Context) (string, error)
}

// PageSource scrapes the token from the search results page for the query
// "translate".
type PageSource struct {
	baseURL   string
	userAgent string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
}

// NewPageSource returns a PageSource. Empty arguments fall back to the
// package defaults.
func NewPageSource(baseURL, userAgent string, timeout time.Duration) *PageSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PageSource{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		breaker:   newBreaker(),
	}
}

// newBreaker stops hitting the landing page after repeated failures and
// tries it again after a cool-down.
func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "vqd-token",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

func (s *PageSource) FetchToken(ctx context.Context) (string, error) {
	if s.breaker == nil {
		return s.fetch(ctx)
	}
	v, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetch(ctx)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return "", &TransportError{Op: "fetch token", Err: err}
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *PageSource) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/?q=translate", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &TransportError{Op: "fetch token", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{Op: "fetch token", Err: fmt.Errorf("page returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", &TransportError{Op: "read token page", Err: err}
	}

	return ParseToken(body)
}

// ParseToken extracts the vqd token from an HTML page.
func ParseToken(page []byte) (string, error) {
	m := vqdRe.FindSubmatch(page)
	if m == nil {
		return "", ErrTokenNotFound
	}
	return string(m[1]), nil
}
