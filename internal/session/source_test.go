package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
)

const testPage = `<html><head><script>DDG.deep.initialize('/d.js?q=translate&t=D&l=us-en&s=0&dl=en&ct=PL&vqd=4-1234&p_ent=',true);vqd='4-298374982374987239487239847';</script></head></html>`

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		want    string
		wantErr error
	}{
		{name: "single quotes", page: testPage, want: "4-298374982374987239487239847"},
		{name: "double quotes", page: `<script>vqd="4-5555";</script>`, want: "4-5555"},
		{name: "missing", page: `<html>no token here</html>`, wantErr: ErrTokenNotFound},
		{name: "empty", page: ``, wantErr: ErrTokenNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToken([]byte(tt.page))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPageSource_FetchToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/" || r.URL.Query().Get("q") != "translate" {
			t.Errorf("unexpected URL %s", r.URL.String())
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("expected test-agent, got %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(testPage))
	}))
	defer server.Close()

	src := NewPageSource(server.URL, "test-agent", 0)

	tok, err := src.FetchToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "4-298374982374987239487239847" {
		t.Errorf("unexpected token %q", tok)
	}
}

func TestPageSource_FetchToken_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	src := NewPageSource(server.URL, "", 0)

	_, err := src.FetchToken(context.Background())
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestPageSource_FetchToken_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src := NewPageSource(server.URL, "", 0)

	_, err := src.FetchToken(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("expected *TransportError, got %v", err)
	}
}

func TestPageSource_FetchToken_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	src := NewPageSource(url, "", 0)

	_, err := src.FetchToken(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("expected *TransportError, got %v", err)
	}
}

func TestPageSource_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	src := NewPageSource(server.URL, "", 0)

	for i := 0; i < 5; i++ {
		if _, err := src.FetchToken(context.Background()); !errors.Is(err, ErrTokenNotFound) {
			t.Fatalf("attempt %d: expected ErrTokenNotFound, got %v", i, err)
		}
	}

	_, err := src.FetchToken(context.Background())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("expected *TransportError, got %T", err)
	}
	if hits.Load() != 5 {
		t.Errorf("expected 5 page hits, got %d", hits.Load())
	}
}
