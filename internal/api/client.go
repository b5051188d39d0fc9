package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds every remote call unless overridden.
	DefaultTimeout = 30 * time.Second

	// DefaultCookieName is the cookie the marketplace API issues on login.
	DefaultCookieName = "access_token"

	// MaxResponseBodySize caps how much of a response body is read.
	MaxResponseBodySize = 4 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	CookieName string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the remote marketplace API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	cookieName string
	logger     *slog.Logger
}

// NewClient creates an API client for the given base URL
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url scheme %q", base.Scheme)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		cookieName: cookieName,
		logger:     logger.With("component", "api"),
	}, nil
}

// CookieName returns the name of the session cookie the API issues.
func (c *Client) CookieName() string {
	return c.cookieName
}

// Get performs a GET and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	_, err = c.Do(req, out)
	return err
}

// Post performs a bodiless POST and decodes the JSON body into out.
func (c *Client) Post(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, query, nil, "")
	if err != nil {
		return err
	}
	_, err = c.Do(req, out)
	return err
}

// PostJSON encodes in as the request body.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return Other(0, "", fmt.Errorf("encode request body: %w", err))
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	_, err = c.Do(req, out)
	return err
}

// PostForm sends an urlencoded form and returns the raw response so the
// caller can read cookies. The body has already been consumed into out.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	return c.Do(req, out)
}

// File is one part of a multipart upload.
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// PostMultipart sends fields and files as multipart/form-data. Repeated
// values for a field are sent as repeated parts.
func (c *Client) PostMultipart(ctx context.Context, path string, fields url.Values, files []File, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(name, v); err != nil {
				return Other(0, "", fmt.Errorf("write field %s: %w", name, err))
			}
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return Other(0, "", fmt.Errorf("create form file %s: %w", f.Field, err))
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return Other(0, "", fmt.Errorf("copy form file %s: %w", f.Field, err))
		}
	}
	if err := mw.Close(); err != nil {
		return Other(0, "", fmt.Errorf("close multipart writer: %w", err))
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	_, err = c.Do(req, out)
	return err
}

// Do sends req, classifies non-2xx answers and decodes a 2xx JSON body into
// out when out is non-nil. The returned response has a closed body.
func (c *Client) Do(req *http.Request, out any) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, Other(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBodySize))
	if err != nil {
		return resp, Other(resp.StatusCode, "", fmt.Errorf("read response body: %w", err))
	}

	c.logger.Debug("request done",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, Classify(resp.StatusCode, decodeDetail(body))
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp, Other(resp.StatusCode, "", fmt.Errorf("decode response body: %w", err))
		}
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, Other(0, "", fmt.Errorf("failed to create %s request: %w", method, err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token, ok := CredentialFrom(ctx); ok {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: token})
	}
	return req, nil
}

// decodeDetail pulls the "detail" field out of an error body. FastAPI-style
// validation errors carry a list there; it is kept as raw JSON text.
func decodeDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	return string(envelope.Detail)
}
