package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

type (
	// TokenSource hands out the current bearer token, if any.
	TokenSource interface {
		Token() (string, bool)
	}

	// Options are the per-request settings accepted by Do.
	Options struct {
		Method string // GET when empty
		Body   io.Reader
		Header http.Header
	}

	// Client is the access layer for the remote API. A Client without a
	// token source never sends an Authorization header of its own.
	Client struct {
		baseURL    string
		httpClient *http.Client
		tokens     TokenSource
	}
)

// New creates a client for baseURL. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// WithTokens returns a copy of the client that authenticates with ts.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// Tokens returns the token source the client was bound to, or nil.
func (c *Client) Tokens() TokenSource {
	return c.tokens
}

// URL joins the base URL and an endpoint path.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// Do sends a request with the JSON content type and the current bearer
// token applied as defaults. Headers in opts take precedence. The response
// is returned regardless of its status code.
func (c *Client) Do(ctx context.Context, url string, opts Options) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, url, opts.Body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			Authorize(req, token)
		}
	}
	for key, values := range opts.Header {
		key = http.CanonicalHeaderKey(key)
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return c.Send(req)
}

// Send transmits a fully prepared request without adding defaults.
func (c *Client) Send(req *http.Request) (*http.Response, error) {
	if req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", ulid.Make().String())
	}

	log := logrus.WithFields(logrus.Fields{
		"method":     req.Method,
		"url":        req.URL.Redacted(),
		"request_id": req.Header.Get("X-Request-Id"),
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Request failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Request completed")
	return resp, nil
}

// Authorize sets the bearer Authorization header on req.
func Authorize(req *http.Request, token string) {
	t := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
	t.SetAuthHeader(req)
}

// IsSuccess reports whether status is in the 2xx range.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
