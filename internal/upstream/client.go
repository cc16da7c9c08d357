package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedResponse is returned when a successful upstream response does
// not carry a JSON document.
var ErrMalformedResponse = errors.New("upstream returned a malformed JSON body")

// Failure reasons reported by Reason.
const (
	ReasonNetwork   = "network"
	ReasonStatus    = "status"
	ReasonRead      = "read"
	ReasonMalformed = "malformed"
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	kind := "Server Error"
	if e.StatusCode < 500 {
		kind = "Client Error"
	}
	return fmt.Sprintf("%d %s: %s for url: %s", e.StatusCode, kind, http.StatusText(e.StatusCode), e.URL)
}

// Client issues GET requests against the statistics API.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New returns a Client rooted at baseURL. A nil httpClient uses a client with
// the default transport and no timeout.
func New(baseURL, userAgent string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse upstream base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("upstream base URL %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return nil, errors.Errorf("upstream base URL %q has no host", baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:   strings.TrimRight(u.String(), "/"),
		userAgent: userAgent,
		http:      httpClient,
	}, nil
}

// URL resolves an upstream path against the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Get fetches path and returns the raw body. Any transport error, non-2xx
// status or non-JSON body is an error; the body is never reshaped.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	target := c.URL(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build upstream request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "upstream request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &readError{cause: errors.Wrapf(err, "read upstream response from %s", target)}
	}

	if !json.Valid(body) {
		return nil, errors.Wrapf(ErrMalformedResponse, "GET %s", target)
	}

	return body, nil
}

type readError struct {
	cause error
}

func (e *readError) Error() string { return e.cause.Error() }
func (e *readError) Unwrap() error { return e.cause }

// Reason classifies an error returned by Get for metrics and logs.
func Reason(err error) string {
	var statusErr *StatusError
	var rErr *readError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return ReasonStatus
	case errors.Is(err, ErrMalformedResponse):
		return ReasonMalformed
	case errors.As(err, &rErr):
		return ReasonRead
	default:
		return ReasonNetwork
	}
}
