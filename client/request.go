package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Request describes one outgoing call. It is immutable: every With* method
// returns a modified copy, so a descriptor can be re-sent on each retry
// without one attempt seeing another's changes.
type Request struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

// NewRequest creates a descriptor for target, which is resolved against the
// transport's base URL. The path is stored in canonical form so every stage
// sees the path the server will receive. A query string in target becomes
// the descriptor's query; malformed pairs are dropped.
func NewRequest(method, target string) *Request {
	target, _, _ = strings.Cut(target, "#")
	p, rawQuery, _ := strings.Cut(target, "?")

	query, _ := url.ParseQuery(rawQuery)
	if query == nil {
		query = url.Values{}
	}
	return &Request{
		method: method,
		path:   canonicalPath(p),
		query:  query,
		header: http.Header{},
	}
}

// canonicalPath roots and cleans p, keeping a trailing slash the caller gave.
func canonicalPath(p string) string {
	cleaned := path.Clean("/" + p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

func (r *Request) Method() string { return r.method }
func (r *Request) Path() string   { return r.path }

// Query returns a copy of the query parameters.
func (r *Request) Query() url.Values {
	q := make(url.Values, len(r.query))
	for k, v := range r.query {
		q[k] = append([]string(nil), v...)
	}
	return q
}

// Header returns the first value for key.
func (r *Request) Header(key string) string {
	return r.header.Get(key)
}

// HeaderValues returns every value for key.
func (r *Request) HeaderValues(key string) []string {
	return append([]string(nil), r.header.Values(key)...)
}

// Headers returns a copy of all headers.
func (r *Request) Headers() http.Header {
	return r.header.Clone()
}

// Body returns a fresh reader over the payload, nil when there is none.
func (r *Request) Body() io.Reader {
	if r.body == nil {
		return nil
	}
	return bytes.NewReader(r.body)
}

func (r *Request) ContentLength() int64 {
	return int64(len(r.body))
}

// WithHeader returns a copy with key set to value, replacing existing values.
func (r *Request) WithHeader(key, value string) *Request {
	c := r.clone()
	c.header.Set(key, value)
	return c
}

// WithoutHeader returns a copy with key removed.
func (r *Request) WithoutHeader(key string) *Request {
	c := r.clone()
	c.header.Del(key)
	return c
}

func (r *Request) WithQuery(key, value string) *Request {
	c := r.clone()
	c.query.Add(key, value)
	return c
}

// WithBody returns a copy carrying body. The slice is copied.
func (r *Request) WithBody(body []byte, contentType string) *Request {
	c := r.clone()
	c.body = append([]byte(nil), body...)
	if contentType != "" {
		c.header.Set("Content-Type", contentType)
	}
	return c
}

// WithJSON returns a copy carrying v encoded as JSON.
func (r *Request) WithJSON(v any) (*Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "Request.WithJSON Marshal")
	}
	return r.WithBody(data, "application/json"), nil
}

func (r *Request) clone() *Request {
	return &Request{
		method: r.method,
		path:   r.path,
		query:  r.Query(),
		header: r.header.Clone(),
		body:   r.body,
	}
}
