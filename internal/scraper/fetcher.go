package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// requestTimeout is the fixed per-fetch deadline. It is deliberately not
// part of the config surface.
const requestTimeout = 30 * time.Second

// StatusError reports a non-2xx listing page response. Callers treat it as
// "no content for this page", never as a run-fatal condition.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

// TransportError reports a DNS, connection or timeout failure. Same
// "no content" contract as StatusError.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// fetchPage retrieves one listing page. On failure it logs, classifies the
// error and returns empty content; there are no retries.
func (s *Service) fetchPage(ctx context.Context, url string) (string, error) {
	s.log.DebugObj("fetching page", "url", url)

	headers := map[string]string{"User-Agent": s.userAgent}
	resp, err := s.client.Get(ctx, url, headers)
	if err != nil {
		ferr := &TransportError{URL: url, Err: err}
		s.log.ErrorObj("page fetch failed", "fetch_error", map[string]any{
			"url":   url,
			"cause": err.Error(),
		})
		return "", ferr
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		ferr := &StatusError{URL: url, Status: code}
		s.log.ErrorObj("page fetch returned error status", "fetch_error", map[string]any{
			"url":    url,
			"status": code,
			"body":   bodySnippet(resp.Body()),
		})
		return "", ferr
	}

	return string(resp.Body()), nil
}

// bodySnippet trims a response body down to something loggable.
func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
