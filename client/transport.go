package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Transport executes a single attempt. It returns either a response or an
// error describing why no response was received.
type Transport interface {
	Execute(ctx context.Context, req *Request) (*http.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*http.Response, error)

func (f TransportFunc) Execute(ctx context.Context, req *Request) (*http.Response, error) {
	return f(ctx, req)
}

// HTTPTransport sends requests with an *http.Client, resolving paths
// against a base URL.
type HTTPTransport struct {
	baseURL *url.URL
	client  *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

func NewHTTPTransport(baseURL string, httpClient *http.Client) (*HTTPTransport, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "NewHTTPTransport url.Parse")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("NewHTTPTransport: base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPTransport{baseURL: u, client: httpClient}, nil
}

func (t *HTTPTransport) Execute(ctx context.Context, req *Request) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), t.resolve(req), req.Body())
	if err != nil {
		return nil, errors.Wrap(err, "HTTPTransport.Execute NewRequest")
	}
	httpReq.Header = req.Headers()
	return t.client.Do(httpReq)
}

func (t *HTTPTransport) resolve(req *Request) string {
	u := t.baseURL.JoinPath(req.Path())
	u.RawQuery = req.Query().Encode()
	return u.String()
}
