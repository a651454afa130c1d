package vimeo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuth endpoint paths on the API host.
const (
	authorizePath         = "/oauth/authorize"
	accessTokenPath       = "/oauth/access_token"
	clientCredentialsPath = "/oauth/authorize/client"
)

// defaultScope is used when the caller supplies no scopes.
const defaultScope = "public"

// Endpoint is Vimeo's OAuth 2.0 endpoint for use with golang.org/x/oauth2.
var Endpoint = oauth2.Endpoint{
	AuthURL:   DefaultBaseURL + authorizePath,
	TokenURL:  DefaultBaseURL + accessTokenPath,
	AuthStyle: oauth2.AuthStyleInHeader,
}

// Token is the payload returned by Vimeo's token endpoints. Unlike a bare
// oauth2.Token it carries the granted scope and, for user tokens, the
// authenticated user.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	User        *User  `json:"user,omitempty"`
}

// OAuth2 converts the token for use with golang.org/x/oauth2 consumers
// (token sources, token files). Vimeo user tokens do not expire.
func (t *Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
	}
}

// endpoint returns the OAuth endpoint on the client's configured host,
// so tests pointed at an httptest server exercise the real flows.
func (c *Client) endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   c.baseURL + authorizePath,
		TokenURL:  c.baseURL + accessTokenPath,
		AuthStyle: oauth2.AuthStyleInHeader,
	}
}

// OAuth2Config builds an oauth2.Config for the authorization code flow with
// this client's application credentials. Scopes default to "public".
func (c *Client) OAuth2Config(redirectURI string, scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       normalizeScopes(scopes),
		Endpoint:     c.endpoint(),
	}
}

// AuthCodeURL builds the authorization redirect URL. Scopes may be separate
// elements or a single space-joined string; an empty list defaults to
// "public". The state parameter is included only when non-empty.
func (c *Client) AuthCodeURL(redirectURI string, scopes []string, state string) string {
	return c.OAuth2Config(redirectURI, scopes...).AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for an access token. The
// request is form-encoded and authorized with the application's basic
// credentials, per the authorization code grant.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	c.logger.Info("exchanging authorization code for access token")

	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}

	return c.tokenRequest(ctx, accessTokenPath, form)
}

// ClientCredentialsToken requests an application-level access token via the
// client credentials grant. Scopes follow the same normalization as
// AuthCodeURL, defaulting to "public".
func (c *Client) ClientCredentialsToken(ctx context.Context, scopes ...string) (*Token, error) {
	c.logger.Info("requesting client credentials token",
		slog.String("scope", strings.Join(normalizeScopes(scopes), " ")),
	)

	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {strings.Join(normalizeScopes(scopes), " ")},
	}

	return c.tokenRequest(ctx, clientCredentialsPath, form)
}

// ClientCredentialsSource returns an auto-refreshing token source backed by
// the client credentials grant, for use with WithTokenSource. ctx must
// outlive the source; pass context.Background() for long-lived clients.
func (c *Client) ClientCredentialsSource(ctx context.Context, scopes ...string) oauth2.TokenSource {
	cfg := &clientcredentials.Config{
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		TokenURL:     c.baseURL + clientCredentialsPath,
		Scopes:       normalizeScopes(scopes),
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return cfg.TokenSource(ctx)
}

// tokenRequest issues a form-encoded POST to a token endpoint. Token
// endpoints always authenticate with the application's basic credentials,
// regardless of any access token already installed on the client.
func (c *Client) tokenRequest(ctx context.Context, path string, form url.Values) (*Token, error) {
	if c.creds.ClientID == "" || c.creds.ClientSecret == "" {
		return nil, ErrNoCredentials
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("vimeo: creating token request: %w", err)
	}

	req.Header.Set("Accept", defaultAccept)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "basic "+c.basicToken())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var tok Token
	if err := resp.JSON(&tok); err != nil {
		return nil, err
	}

	if tok.AccessToken == "" {
		return nil, fmt.Errorf("vimeo: token response missing access_token")
	}

	c.logger.Info("access token issued", slog.String("scope", tok.Scope))

	return &tok, nil
}

// normalizeScopes cleans a scope list: elements may themselves be
// space-joined lists, blanks are dropped, and an empty result defaults to
// "public".
func normalizeScopes(scopes []string) []string {
	var out []string

	for _, s := range scopes {
		for _, part := range strings.Fields(s) {
			out = append(out, part)
		}
	}

	if len(out) == 0 {
		return []string{defaultScope}
	}

	return out
}
