package client_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/client"
)

type trackedBody struct {
	io.Reader
	mu     sync.Mutex
	closed bool
}

func (b *trackedBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *trackedBody) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// step is one scripted attempt result: either err, or a response.
type step struct {
	status int
	body   string
	header http.Header
	err    error
}

// scriptedTransport replays steps in order, repeating the last one.
type scriptedTransport struct {
	mu     sync.Mutex
	steps  []step
	calls  []*client.Request
	bodies []*trackedBody
}

func newScripted(steps ...step) *scriptedTransport {
	return &scriptedTransport{steps: steps}
}

func (s *scriptedTransport) Execute(_ context.Context, req *client.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := len(s.calls)
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	s.calls = append(s.calls, req)

	st := s.steps[i]
	if st.err != nil {
		return nil, st.err
	}
	body := &trackedBody{Reader: strings.NewReader(st.body)}
	s.bodies = append(s.bodies, body)
	header := st.header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: st.status, Header: header, Body: body}, nil
}

func (s *scriptedTransport) attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *scriptedTransport) call(i int) *client.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

func (s *scriptedTransport) body(i int) *trackedBody {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[i]
}

// sleepRecorder records backoff delays without waiting.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

type staticTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	saved   int
}

func (s *staticTokens) AccessToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, s.access != ""
}

func (s *staticTokens) RefreshToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh, s.refresh != ""
}

func (s *staticTokens) Save(_ context.Context, access, refresh string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access, s.refresh = access, refresh
	s.saved++
	return nil
}

func (s *staticTokens) saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}
