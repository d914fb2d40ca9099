package desk

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicAuthTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "agent@example.com", user)
		assert.Equal(t, "p@ss:word", pass)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewBasicClient(server.URL, "agent@example.com", "p@ss:word")
	require.NoError(t, err)

	resp, err := client.Call(context.Background(), "users/me", http.MethodGet)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOAuth1Transport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "OAuth "), "got %q", auth)
		assert.Contains(t, auth, `oauth_consumer_key="key"`)
		assert.Contains(t, auth, `oauth_token="token"`)
		assert.Contains(t, auth, `oauth_signature_method="HMAC-SHA1"`)
		assert.Contains(t, auth, "oauth_signature=")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := NewOAuthClient(server.URL, "key", "secret", "token", "token-secret")
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), NewRequest(http.MethodPost, "cases").withJSONBody(`{"subject":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr string
	}{
		{name: "basic", creds: BasicCredentials{Username: "agent"}},
		{name: "basic without password", creds: BasicCredentials{Username: "agent"}},
		{name: "basic without username", creds: BasicCredentials{Password: "x"}, wantErr: "username is required"},
		{name: "oauth", creds: OAuth1Credentials{APIKey: "k", APISecret: "s", Token: "t", TokenSecret: "ts"}},
		{name: "oauth without key", creds: OAuth1Credentials{APISecret: "s", Token: "t", TokenSecret: "ts"}, wantErr: "api key and secret"},
		{name: "oauth without token secret", creds: OAuth1Credentials{APIKey: "k", APISecret: "s", Token: "t"}, wantErr: "token secret"},
		{name: "nil", creds: nil, wantErr: "credentials are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCredentials(tt.creds)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTLSConfig(t *testing.T) {
	modern := tlsConfig(false)
	assert.Equal(t, uint16(tls.VersionTLS12), modern.MinVersion)
	assert.Zero(t, modern.MaxVersion)

	legacy := tlsConfig(true)
	assert.Equal(t, uint16(tls.VersionTLS10), legacy.MinVersion)
	assert.Equal(t, uint16(tls.VersionTLS12), legacy.MaxVersion)
}
