package client

import (
	"context"
	"io"
	"net/http"
)

// Handler runs a request through the rest of the pipeline.
type Handler func(ctx context.Context, req *Request) (*http.Response, error)

// Interceptor wraps a Handler with one pipeline stage.
type Interceptor func(next Handler) Handler

// Chain wraps final with interceptors. The first interceptor is the
// outermost one, so it sees the request first and the response last.
func Chain(final Handler, interceptors ...Interceptor) Handler {
	chained := final
	// Apply interceptors in reverse order
	for i := len(interceptors) - 1; i >= 0; i-- {
		if interceptors[i] == nil {
			continue
		}
		chained = interceptors[i](chained)
	}
	return chained
}

// discard drains and closes a response that will not reach the caller, so
// its connection can be reused.
func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
