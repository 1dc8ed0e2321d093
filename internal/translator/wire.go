package translator

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/tidwall/gjson"
)

const (
	// A successful body looks like
	//   {"detected_language":"pl","translated":"John has a cat."}
	// and the text starts 40 bytes in and ends 2 bytes before the end.
	payloadPrefixLen = 40
	payloadSuffixLen = 2

	maxResponseSize = 4 << 20
)

// extractPayload returns the still-escaped translated text and, when the
// service reports it, the detected source language. Structured parsing is
// tried first; bodies that are not JSON fall back to the fixed offsets.
func extractPayload(body []byte) (raw, detected string, err error) {
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		tr := parsed.Get("translated")
		if tr.Type != gjson.String {
			return "", "", ErrMalformedResponse
		}
		if dl := parsed.Get("detected_language"); dl.Type == gjson.String {
			detected = dl.String()
		}
		// Raw keeps the quotes and the escapes; the unescaper handles the rest.
		return tr.Raw[1 : len(tr.Raw)-1], detected, nil
	}

	if len(body) < payloadPrefixLen+payloadSuffixLen {
		return "", "", ErrMalformedResponse
	}
	return string(body[payloadPrefixLen : len(body)-payloadSuffixLen]), "", nil
}

// readBody reads resp.Body, undoing any Content-Encoding the server applied.
// Bodies over maxResponseSize are rejected rather than truncated.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip body: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	body, err := io.ReadAll(io.LimitReader(r, maxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedResponse, maxResponseSize)
	}
	return body, nil
}
