package vimeo

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScopes(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil defaults to public", nil, []string{"public"}},
		{"empty defaults to public", []string{}, []string{"public"}},
		{"blank elements dropped", []string{"", "  "}, []string{"public"}},
		{"separate elements kept", []string{"public", "upload"}, []string{"public", "upload"}},
		{"space-joined string split", []string{"public upload edit"}, []string{"public", "upload", "edit"}},
		{"mixed", []string{"public upload", "edit"}, []string{"public", "upload", "edit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeScopes(tt.in))
		})
	}
}

func TestAuthCodeURL(t *testing.T) {
	c := NewClient(Credentials{ClientID: "app-id", ClientSecret: "app-secret"})

	raw := c.AuthCodeURL("https://example.com/cb", []string{"upload", "edit"}, "st-1")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "app-id", q.Get("client_id"))
	assert.Equal(t, "https://example.com/cb", q.Get("redirect_uri"))
	assert.Equal(t, "upload edit", q.Get("scope"))
	assert.Equal(t, "st-1", q.Get("state"))
}

func TestAuthCodeURL_ScopeDefaultsToPublic(t *testing.T) {
	c := NewClient(Credentials{ClientID: "app-id"})

	u, err := url.Parse(c.AuthCodeURL("https://example.com/cb", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, "public", u.Query().Get("scope"))
}

func TestAuthCodeURL_SpaceJoinedScopeEqualsSlice(t *testing.T) {
	c := NewClient(Credentials{ClientID: "app-id"})

	joined := c.AuthCodeURL("https://example.com/cb", []string{"public upload"}, "")
	sliced := c.AuthCodeURL("https://example.com/cb", []string{"public", "upload"}, "")

	assert.Equal(t, joined, sliced)
}

func TestAuthCodeURL_StateOmittedWhenEmpty(t *testing.T) {
	c := NewClient(Credentials{ClientID: "app-id"})

	u, err := url.Parse(c.AuthCodeURL("https://example.com/cb", nil, ""))
	require.NoError(t, err)

	_, present := u.Query()["state"]
	assert.False(t, present, "state parameter must be absent when empty")
}

func TestExchangeCode(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK,
		`{"access_token":"tok-new","token_type":"bearer","scope":"public upload","user":{"uri":"/users/42","name":"Alice"}}`)
	c := newTestClient(t, srv.URL, Credentials{ClientID: "id", ClientSecret: "secret"})

	tok, err := c.ExchangeCode(context.Background(), "the-code", "https://example.com/cb")
	require.NoError(t, err)

	assert.Equal(t, "tok-new", tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, "public upload", tok.Scope)
	require.NotNil(t, tok.User)
	assert.Equal(t, "/users/42", tok.User.URI)

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/oauth/access_token", got.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", got.Header.Get("Content-Type"))

	form, err := url.ParseQuery(string(got.Body))
	require.NoError(t, err)
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "the-code", form.Get("code"))
	assert.Equal(t, "https://example.com/cb", form.Get("redirect_uri"))
}

func TestExchangeCode_UsesBasicAuthEvenWithToken(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{"access_token":"t","token_type":"bearer"}`)
	c := newTestClient(t, srv.URL, Credentials{ClientID: "id", ClientSecret: "secret", AccessToken: "existing"})

	_, err := c.ExchangeCode(context.Background(), "code", "https://example.com/cb")
	require.NoError(t, err)

	want := "basic " + base64.StdEncoding.EncodeToString([]byte("id:secret"))
	assert.Equal(t, want, (*seen)[0].Header.Get("Authorization"))
}

func TestExchangeCode_TransportErrorPropagates(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusUnauthorized, `{"error":"invalid code"}`)
	c := newTestClient(t, srv.URL, Credentials{ClientID: "id", ClientSecret: "secret"})

	_, err := c.ExchangeCode(context.Background(), "bad", "https://example.com/cb")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClientCredentialsToken(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK,
		`{"access_token":"app-tok","token_type":"bearer","scope":"public"}`)
	c := newTestClient(t, srv.URL, Credentials{ClientID: "id", ClientSecret: "secret"})

	tok, err := c.ClientCredentialsToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "app-tok", tok.AccessToken)

	got := (*seen)[0]
	assert.Equal(t, "/oauth/authorize/client", got.Path)

	form, err := url.ParseQuery(string(got.Body))
	require.NoError(t, err)
	assert.Equal(t, "client_credentials", form.Get("grant_type"))
	assert.Equal(t, "public", form.Get("scope"))
}

func TestClientCredentialsToken_ScopeNormalization(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{"access_token":"t","token_type":"bearer"}`)
	c := newTestClient(t, srv.URL, Credentials{ClientID: "id", ClientSecret: "secret"})

	_, err := c.ClientCredentialsToken(context.Background(), "public upload", "stats")
	require.NoError(t, err)

	form, err := url.ParseQuery(string((*seen)[0].Body))
	require.NoError(t, err)
	assert.Equal(t, "public upload stats", form.Get("scope"))
}

func TestTokenRequest_MissingCredentials(t *testing.T) {
	c := NewClient(Credentials{AccessToken: "only-a-token"})

	_, err := c.ExchangeCode(context.Background(), "code", "https://example.com/cb")
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestTokenRequest_MissingAccessTokenInResponse(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusOK, `{"token_type":"bearer"}`)
	c := newTestClient(t, srv.URL, Credentials{ClientID: "id", ClientSecret: "secret"})

	_, err := c.ClientCredentialsToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing access_token")
}

func TestTokenOAuth2Bridge(t *testing.T) {
	tok := &Token{AccessToken: "a", TokenType: "bearer", Scope: "public"}

	o := tok.OAuth2()
	assert.Equal(t, "a", o.AccessToken)
	assert.Equal(t, "bearer", o.TokenType)
	assert.True(t, o.Valid())
}

func TestOAuth2Config_EndpointFollowsBaseURL(t *testing.T) {
	c := NewClient(Credentials{ClientID: "id"}, WithBaseURL("https://stub.example"))

	cfg := c.OAuth2Config("https://example.com/cb")
	assert.Equal(t, "https://stub.example/oauth/authorize", cfg.Endpoint.AuthURL)
	assert.Equal(t, "https://stub.example/oauth/access_token", cfg.Endpoint.TokenURL)
	assert.Equal(t, []string{"public"}, cfg.Scopes)
}
