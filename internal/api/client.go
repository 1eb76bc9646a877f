package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"shopazon/internal/config"
)

// maxResponseSize is the maximum allowed response body size (10MB).
const maxResponseSize = 10 * 1024 * 1024

const (
	csrfCookieName = "XSRF-TOKEN"
	csrfHeaderName = "X-XSRF-TOKEN"
	csrfCookiePath = "/sanctum/csrf-cookie"
)

// Client is the single configured sender for all backend API requests. It
// keeps the backend session cookies in a jar so calls stay credentialed, and
// bootstraps the anti-forgery cookie on demand.
type Client struct {
	baseURL string
	origin  string
	http    *http.Client
	jar     *cookiejar.Jar
	logger  *zap.Logger

	// csrfMu serializes the side-channel token fetch so concurrent first
	// requests do not all hit the bootstrap endpoint.
	csrfMu sync.Mutex
}

// New creates a Client for the configured backend API.
func New(cfg config.APIConfig, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		origin:  cfg.Origin,
		jar:     jar,
		logger:  logger,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
	}, nil
}

// Origin returns the API origin, used for image URL resolution.
func (c *Client) Origin() string { return c.origin }

// csrfToken returns the current anti-forgery token, fetching the cookie via
// the side-channel endpoint when the jar does not hold one yet.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()

	if token := c.cookieValue(csrfCookieName); token != "" {
		return token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.origin+csrfCookiePath, nil)
	if err != nil {
		return "", &Error{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &Error{Err: fmt.Errorf("csrf bootstrap: %w", err)}
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	resp.Body.Close()

	token := c.cookieValue(csrfCookieName)
	if token == "" {
		return "", &Error{Status: resp.StatusCode, Message: "no anti-forgery cookie issued"}
	}
	return token, nil
}

// cookieValue reads a cookie for the API origin from the jar. The backend
// URL-encodes the token cookie, so the value is decoded before use.
func (c *Client) cookieValue(name string) string {
	u, err := url.Parse(c.origin)
	if err != nil {
		return ""
	}
	for _, ck := range c.jar.Cookies(u) {
		if ck.Name == name {
			if decoded, err := url.QueryUnescape(ck.Value); err == nil {
				return decoded
			}
			return ck.Value
		}
	}
	return ""
}

// do issues one request against the API base path and decodes the response
// into out. Envelope unwrapping happens here and nowhere else.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	token, err := c.csrfToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set(csrfHeaderName, token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &Error{Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		var failure struct {
			Message string              `json:"message"`
			Errors  map[string][]string `json:"errors"`
		}
		if json.Unmarshal(raw, &failure) == nil {
			apiErr.Message = failure.Message
			apiErr.Fields = failure.Errors
		}
		c.logger.Debug("api request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := decodeEnvelope(raw, out); err != nil {
		return &Error{Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// decodeEnvelope unmarshals a response body into out, peeling the backend's
// `{"data": ...}` wrapping. Some list endpoints wrap twice, so up to two
// levels are removed before the payload is decoded.
func decodeEnvelope(raw []byte, out interface{}) error {
	payload := bytes.TrimSpace(raw)
	for i := 0; i < 2; i++ {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(payload, &env); err != nil || len(env.Data) == 0 {
			break
		}
		payload = bytes.TrimSpace(env.Data)
	}
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil
	}
	return json.Unmarshal(payload, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := encodeBody(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, body, "application/json", out)
}

func (c *Client) putJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := encodeBody(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, body, "application/json", out)
}

func (c *Client) deleteJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", out)
}

func encodeBody(in interface{}) (io.Reader, error) {
	if in == nil {
		return nil, nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("encoding request: %w", err)}
	}
	return bytes.NewReader(raw), nil
}
