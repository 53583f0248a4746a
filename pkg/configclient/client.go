// Package configclient talks to the configuration service over HTTP: GET
// and POST on one resource with JSON bodies, plus the arbitrary endpoints
// custom buttons target. There is no authentication and no retry.
package configclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/goliatone/go-settingsform/pkg/document"
	"github.com/goliatone/go-settingsform/pkg/form"
)

// DefaultConfigPath is the configuration resource relative to the base URL.
const DefaultConfigPath = "/config"

// ErrNotObject is returned when the service answers with something other
// than a JSON object.
var ErrNotObject = errors.New("configclient: response is not a JSON object")

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("configclient: %s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client implements form.ConfigService and form.ActionClient.
type Client struct {
	base       *url.URL
	configPath string
	http       *http.Client
	logger     *zap.Logger
}

var (
	_ form.ConfigService = (*Client)(nil)
	_ form.ActionClient  = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithConfigPath changes the configuration resource path.
func WithConfigPath(path string) Option {
	return func(c *Client) {
		if strings.TrimSpace(path) != "" {
			c.configPath = path
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a client rooted at baseURL. Relative action endpoints resolve
// against it.
func New(baseURL string, options ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("configclient: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("configclient: base url %q must use http or https", baseURL)
	}
	c := &Client{
		base:       base,
		configPath: DefaultConfigPath,
		http:       &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Fetch retrieves the current configuration document.
func (c *Client) Fetch(ctx context.Context) (document.Document, error) {
	target, err := c.resolve(c.configPath)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	var doc document.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("configclient: decode %s: %w", target, err)
	}
	if doc == nil {
		return nil, ErrNotObject
	}
	return doc, nil
}

// Submit persists doc.
func (c *Client) Submit(ctx context.Context, doc document.Document) error {
	target, err := c.resolve(c.configPath)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = document.Document{}
	}
	_, err = c.do(ctx, http.MethodPost, target, doc)
	return err
}

// Call performs a custom button request.
func (c *Client) Call(ctx context.Context, req form.ActionRequest) error {
	target, err := c.resolve(req.Endpoint)
	if err != nil {
		return err
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	_, err = c.do(ctx, method, target, req.Body)
	return err
}

func (c *Client) resolve(endpoint string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", fmt.Errorf("configclient: parse endpoint %q: %w", endpoint, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

func (c *Client) do(ctx context.Context, method, target string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("configclient: encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("configclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("endpoint", target), zap.Error(err))
		return nil, fmt.Errorf("configclient: %s %s: %w", method, target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("configclient: read %s: %w", target, err)
	}
	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("endpoint", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(truncate(string(data), 256)),
		}
	}
	return data, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
