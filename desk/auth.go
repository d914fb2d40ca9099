package desk

import (
	"context"
	"net/http"

	"github.com/dghubble/oauth1"
)

// Credentials authenticate every request a client sends.
// The set of implementations is closed: BasicCredentials or OAuth1Credentials.
type Credentials interface {
	credentials()
}

// BasicCredentials authenticate as an agent with username and password
type BasicCredentials struct {
	Username string
	Password string
}

func (BasicCredentials) credentials() {}

// OAuth1Credentials sign requests as a registered API application.
// The values are listed under Admin > Settings > API Applications in desk.
type OAuth1Credentials struct {
	APIKey      string
	APISecret   string
	Token       string
	TokenSecret string
}

func (OAuth1Credentials) credentials() {}

// newAuthTransport wraps base so that each outgoing request carries creds
func newAuthTransport(creds Credentials, base http.RoundTripper) http.RoundTripper {
	switch c := creds.(type) {
	case BasicCredentials:
		return &basicAuthTransport{username: c.Username, password: c.Password, base: base}
	case OAuth1Credentials:
		config := oauth1.NewConfig(c.APIKey, c.APISecret)
		token := oauth1.NewToken(c.Token, c.TokenSecret)
		// oauth1 takes its base transport from the context client
		ctx := context.WithValue(context.Background(), oauth1.HTTPClient, &http.Client{Transport: base})
		return config.Client(ctx, token).Transport
	default:
		return base
	}
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(r)
}

func validateCredentials(creds Credentials) error {
	switch c := creds.(type) {
	case BasicCredentials:
		if c.Username == "" {
			return errorf("username is required for basic authentication")
		}
	case OAuth1Credentials:
		if c.APIKey == "" || c.APISecret == "" {
			return errorf("api key and secret are required for oauth authentication")
		}
		if c.Token == "" || c.TokenSecret == "" {
			return errorf("access token and token secret are required for oauth authentication")
		}
	default:
		return errorf("credentials are required")
	}
	return nil
}
