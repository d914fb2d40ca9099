package desk

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
)

// Transport performs exactly one exchange with the API. It never retries and
// never interprets status codes; failures are reported in Response.Err.
type Transport interface {
	Send(ctx context.Context, req *Request) *Response
}

// restTransport sends requests through resty
type restTransport struct {
	client *resty.Client
}

func newRestTransport(baseURL string, creds Credentials, timeout time.Duration, legacyTLS bool, logger zerolog.Logger) *restTransport {
	base := cleanhttp.DefaultTransport()
	base.TLSClientConfig = tlsConfig(legacyTLS)

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTransport(newAuthTransport(creds, base)).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetLogger(restyLogger{logger: logger})

	return &restTransport{client: client}
}

// tlsConfig returns the protocol settings for API connections.
// TLS 1.0 and 1.1 are only accepted when legacy is set.
func tlsConfig(legacy bool) *tls.Config {
	if legacy {
		return &tls.Config{
			MinVersion: tls.VersionTLS10,
			MaxVersion: tls.VersionTLS12,
		}
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// Send performs the request and collects the outcome
func (t *restTransport) Send(ctx context.Context, req *Request) *Response {
	r := t.client.R().
		SetContext(ctx).
		SetHeaderMultiValues(req.Header)
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Resource)

	out := &Response{}
	if resp != nil && resp.RawResponse != nil {
		out.StatusCode = resp.StatusCode()
		out.Status = resp.Status()
		out.Header = resp.Header()
		out.Body = resp.Body()
	}
	if err != nil {
		out.Err = &TransportError{Method: req.Method, Resource: req.Resource, Err: err}
	}
	return out
}

// restyLogger routes resty's own messages into zerolog
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error().Msgf("resty: "+format, v...)
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn().Msgf("resty: "+format, v...)
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug().Msgf("resty: "+format, v...)
}

var _ Transport = (*restTransport)(nil)

// TransportFunc adapts a function to the Transport interface
type TransportFunc func(ctx context.Context, req *Request) *Response

func (f TransportFunc) Send(ctx context.Context, req *Request) *Response {
	return f(ctx, req)
}
