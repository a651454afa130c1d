package vimeo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// RequestOptions describes a single API call. Only Path is required; the
// zero value of every other field picks a sensible default during merging.
type RequestOptions struct {
	// Path is the endpoint, either relative to the API host ("/me/videos")
	// or an absolute URL returned by a previous API response.
	Path string

	// Method defaults to GET.
	Method string

	// Headers take precedence over the library defaults (Accept, User-Agent)
	// but not over the Authorization header, which the client always owns.
	Headers map[string]string

	// Query is appended to the URL.
	Query url.Values

	// Body is JSON-marshaled when non-nil. Ignored when Form is set.
	Body any

	// Form is form-encoded into the request body and forces the
	// application/x-www-form-urlencoded content type.
	Form url.Values
}

// Response is a parsed API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("vimeo: decoding response body: %w", err)
	}

	return nil
}

// Get extracts a value from the JSON response body by gjson path,
// e.g. resp.Get("upload.upload_link").
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Request issues an API call with the merged options and returns the parsed
// response. Validation failures (missing path, missing credentials) are
// returned before any HTTP call is made. Non-2xx responses are returned as
// *APIError with a sentinel for errors.Is.
func (c *Client) Request(ctx context.Context, opts RequestOptions) (*Response, error) {
	req, err := c.buildRequest(ctx, opts)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

// buildRequest resolves RequestOptions into an *http.Request. Merge order:
// method defaults to GET; default headers are applied, then caller headers
// override them; the Authorization header is selected last; a missing
// Content-Type defaults to JSON for mutating methods.
func (c *Client) buildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	if opts.Path == "" {
		return nil, ErrMissingPath
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.resolveURL(opts.Path)
	if len(opts.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}

		target += sep + opts.Query.Encode()
	}

	body, contentType, err := encodeBody(opts)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("vimeo: creating request: %w", err)
	}

	req.Header.Set("Accept", defaultAccept)
	req.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// Caller headers win over defaults.
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	auth, err := c.authHeader()
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", auth)

	if req.Header.Get("Content-Type") == "" && isMutating(method) {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do executes the request and classifies the response.
func (c *Client) do(req *http.Request) (*Response, error) {
	c.logger.Debug("api request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vimeo: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("vimeo: reading response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("api request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.Int("status", resp.StatusCode),
		)

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			RequestID:  resp.Header.Get("X-Request-Id"),
			Message:    string(data),
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	c.logger.Debug("api request succeeded",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// resolveURL joins a relative path to the API host; absolute URLs returned
// by the API (upload links, version URIs) pass through unchanged.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

// encodeBody produces the request body reader and its content type.
// Form takes precedence over Body. A JSON Body carries no content type here;
// the mutating-method default in buildRequest supplies it.
func encodeBody(opts RequestOptions) (io.Reader, string, error) {
	if len(opts.Form) > 0 {
		return strings.NewReader(opts.Form.Encode()), "application/x-www-form-urlencoded", nil
	}

	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, "", fmt.Errorf("vimeo: marshaling request body: %w", err)
		}

		return bytes.NewReader(data), "", nil
	}

	return nil, "", nil
}

// isMutating reports whether the method defaults to a JSON content type.
func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}
