// Package calendar proxies an upstream calendar feed, stripping everything
// that matches a configured filter before handing the result to the client.
package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
)

// Service fetches the upstream feed and filters it.
type Service struct {
	base      *url.URL
	passParam string
	filter    *regexp.Regexp
	userAgent string
	client    *http.Client
}

// NewService parses the upstream URL and compiles the filter expression
// once, so a bad configuration fails at boot instead of on the first
// request. An empty filter pattern leaves the feed untouched.
func NewService(baseURL, passParam, filterPattern, userAgent string) (*Service, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar base URL: %w", err)
	}

	filter, err := regexp.Compile(filterPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile calendar filter: %w", err)
	}

	return &Service{
		base:      base,
		passParam: passParam,
		filter:    filter,
		userAgent: userAgent,
		client:    &http.Client{},
	}, nil
}

// Fetch retrieves the upstream feed with the pass-through parameter set to
// value, and returns the body with every filter match removed.
func (s *Service) Fetch(ctx context.Context, value string) (string, error) {
	u := *s.base
	q := u.Query()
	q.Set(s.passParam, value)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build calendar request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get base calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("base calendar returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read base calendar response: %w", err)
	}

	return s.filter.ReplaceAllString(string(body), ""), nil
}
