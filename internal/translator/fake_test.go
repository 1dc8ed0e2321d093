package translator

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/valpere/ddgtran/internal/session"
)

// fakeDDG mimics the landing page and translation.js endpoint. Every page
// hit issues a new token and invalidates the previous one.
type fakeDDG struct {
	mu           sync.Mutex
	validToken   string
	translations map[string]string // "from|to|text" -> escaped translated text

	// alwaysForbid rejects every translation call.
	alwaysForbid bool
	// status, when set, is returned for every translation call.
	status int

	pageHits      atomic.Int32
	translateHits atomic.Int32
	lastQuery     atomic.Value
	lastUA        atomic.Value
}

func newFakeDDG(t *testing.T) (*fakeDDG, *httptest.Server) {
	t.Helper()
	f := &fakeDDG{translations: map[string]string{}}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeDDG) add(from, to, text, escaped string) {
	f.translations[from+"|"+to+"|"+text] = escaped
}

func (f *fakeDDG) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		n := f.pageHits.Add(1)
		tok := fmt.Sprintf("4-%d0000000000000000000", n)
		f.mu.Lock()
		f.validToken = tok
		f.mu.Unlock()
		fmt.Fprintf(w, "<html><head><script>vqd='%s';</script></head></html>", tok)
	case "/translation.js":
		f.translateHits.Add(1)
		q := r.URL.Query()
		f.lastQuery.Store(q)
		f.lastUA.Store(r.Header.Get("User-Agent"))

		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}

		f.mu.Lock()
		valid := f.validToken
		f.mu.Unlock()
		if f.alwaysForbid || q.Get("vqd") != valid {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		body, _ := io.ReadAll(r.Body)
		from := q.Get("from")
		if from == "" {
			from = "auto"
		}
		translated, ok := f.translations[from+"|"+q.Get("to")+"|"+string(body)]
		if !ok {
			translated = string(body)
		}

		detected := "null"
		if from == "auto" {
			detected = `"pl"`
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"detected_language":%s,"translated":"%s"}`, detected, translated)
	default:
		http.NotFound(w, r)
	}
}

// jsonEscape renders s the way the service does: non-ASCII as \uXXXX.
func jsonEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '"':
			sb.WriteString(`\"`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r > 0x7e:
			sb.WriteString(fmt.Sprintf("\\u%04x", r))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func newTestService(server *httptest.Server) (*DuckDuckGoService, *session.Manager) {
	sess := session.NewManager(session.NewPageSource(server.URL, "test-agent", 0), nil)
	svc := NewDuckDuckGoService(ServiceConfig{BaseURL: server.URL, UserAgent: "test-agent"}, sess, nil, nil)
	return svc, sess
}
