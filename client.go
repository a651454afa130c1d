package vimeo

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the Vimeo API host.
	DefaultBaseURL = "https://api.vimeo.com"

	// defaultAccept pins the API version per Vimeo's versioning scheme.
	defaultAccept = "application/vnd.vimeo.*+json;version=3.4"

	// defaultUserAgent identifies this library to the API.
	defaultUserAgent = "vimeo-go/" + Version
)

// Version is the library version reported in the User-Agent header.
const Version = "0.1.0"

// apiTimeout bounds metadata API calls. The transfer client carries no
// timeout because tus PATCH requests legitimately run for minutes.
const apiTimeout = 30 * time.Second

// transportRetryMax is the retry budget of the default retryablehttp
// transport. Transient transport faults are retried below the SDK; the SDK
// itself never retries API calls (the transfer retry schedule is separate).
const transportRetryMax = 3

// Credentials holds the OAuth2 application credentials and an optional
// pre-existing access token. ClientID and ClientSecret are immutable after
// construction; the access token may be replaced via SetAccessToken.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
}

// Client is an HTTP client for the Vimeo API. It handles request
// construction, authorization header selection, and error classification.
// Transport-level retries belong to the underlying HTTP client; resumable
// upload retries belong to UploadHandle.
type Client struct {
	creds       Credentials
	baseURL     string
	userAgent   string
	logger      *slog.Logger
	tokenSource oauth2.TokenSource
	retryDelays []time.Duration

	// httpClient serves metadata API calls (retrying transport, 30s timeout).
	// transferClient serves tus data transfer (plain, no timeout) — retrying
	// a partially consumed upload body at the transport layer is not safe.
	httpClient     *http.Client
	transferClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTransferClient replaces the HTTP client used for tus data transfer.
func WithTransferClient(hc *http.Client) Option {
	return func(c *Client) { c.transferClient = hc }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithBaseURL overrides the API host, e.g. for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithUserAgent overrides the User-Agent header value.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTokenSource installs a refreshable OAuth2 token source consulted on
// every request. It takes precedence over Credentials.AccessToken and is the
// concurrency-safe alternative to SetAccessToken.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokenSource = ts }
}

// WithRetryDelays overrides the transfer retry-delay schedule used by upload
// handles created from this client. See DefaultRetryDelays.
func WithRetryDelays(delays []time.Duration) Option {
	return func(c *Client) { c.retryDelays = delays }
}

// NewClient creates a Vimeo API client.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:       creds,
		baseURL:     DefaultBaseURL,
		userAgent:   defaultUserAgent,
		logger:      slog.Default(),
		retryDelays: DefaultRetryDelays,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.httpClient == nil {
		c.httpClient = defaultHTTPClient()
	}

	if c.transferClient == nil {
		c.transferClient = &http.Client{}
	}

	return c
}

// defaultHTTPClient builds the retrying transport for API calls.
// retryablehttp handles transient network and 5xx/429 faults transparently.
func defaultHTTPClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = transportRetryMax
	rc.HTTPClient.Timeout = apiTimeout
	// The SDK logs requests itself via slog.
	rc.Logger = nil

	return rc.StandardClient()
}

// SetAccessToken installs or replaces the access token used for bearer
// authorization on subsequent requests.
//
// Not safe for concurrent use: calling SetAccessToken while requests are in
// flight is caller responsibility to synchronize. Prefer WithTokenSource for
// concurrent workloads.
func (c *Client) SetAccessToken(token string) {
	c.creds.AccessToken = token
}

// authHeader selects the Authorization header value for an outgoing request.
// Exactly one form is produced: a bearer token when one is available (token
// source first, then the static access token), otherwise basic credentials.
func (c *Client) authHeader() (string, error) {
	if c.tokenSource != nil {
		tok, err := c.tokenSource.Token()
		if err != nil {
			return "", err
		}

		return "bearer " + tok.AccessToken, nil
	}

	if c.creds.AccessToken != "" {
		return "bearer " + c.creds.AccessToken, nil
	}

	if c.creds.ClientID != "" && c.creds.ClientSecret != "" {
		return "basic " + c.basicToken(), nil
	}

	return "", ErrNoCredentials
}

// basicToken encodes the client credentials per RFC 7617.
func (c *Client) basicToken() string {
	return base64.StdEncoding.EncodeToString([]byte(c.creds.ClientID + ":" + c.creds.ClientSecret))
}
