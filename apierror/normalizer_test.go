package apierror_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"testing"

	"github.com/jrsteele09/go-auth-client/apierror"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestFromResponse(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
	}{
		{
			name:    "structured body",
			status:  http.StatusBadRequest,
			body:    `{"message":"Custom error","code":"X"}`,
			code:    "X",
			message: "Custom error",
		},
		{
			name:    "empty body on 500",
			status:  http.StatusInternalServerError,
			body:    "",
			code:    apierror.CodeServer,
			message: apierror.MessageForStatus(http.StatusInternalServerError),
		},
		{
			name:    "malformed json",
			status:  http.StatusUnauthorized,
			body:    `{"message":`,
			code:    apierror.CodeAuthentication,
			message: apierror.MessageForStatus(http.StatusUnauthorized),
		},
		{
			name:    "html error page",
			status:  http.StatusBadGateway,
			body:    "<html>bad gateway</html>",
			code:    apierror.CodeServer,
			message: apierror.MessageForStatus(http.StatusBadGateway),
		},
		{
			name:    "message without code",
			status:  http.StatusUnprocessableEntity,
			body:    `{"message":"Email is taken"}`,
			code:    apierror.CodeValidation,
			message: "Email is taken",
		},
		{
			name:    "code without message",
			status:  http.StatusForbidden,
			body:    `{"code":"ACCOUNT_LOCKED"}`,
			code:    "ACCOUNT_LOCKED",
			message: apierror.MessageForStatus(http.StatusForbidden),
		},
		{
			name:    "error string alias",
			status:  http.StatusNotFound,
			body:    `{"error":"Invoice not found"}`,
			code:    apierror.CodeNotFound,
			message: "Invoice not found",
		},
		{
			name:    "nested error object",
			status:  http.StatusConflict,
			body:    `{"error":{"message":"Already exists","code":"DUPLICATE"}}`,
			code:    "DUPLICATE",
			message: "Already exists",
		},
		{
			name:    "numeric code",
			status:  http.StatusBadRequest,
			body:    `{"message":"bad","code":4001}`,
			code:    "4001",
			message: "bad",
		},
		{
			name:    "json array body",
			status:  http.StatusBadRequest,
			body:    `["a","b"]`,
			code:    apierror.CodeValidation,
			message: apierror.MessageForStatus(http.StatusBadRequest),
		},
		{
			name:    "unknown status",
			status:  418,
			body:    "",
			code:    apierror.CodeValidation,
			message: apierror.MessageForStatus(418),
		},
		{
			name:    "unlisted 5xx",
			status:  507,
			body:    "",
			code:    apierror.CodeServer,
			message: apierror.MessageForStatus(http.StatusInternalServerError),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := apierror.FromResponse(tc.status, []byte(tc.body))
			require.Equal(t, tc.code, got.Code)
			require.Equal(t, tc.message, got.Message)
			require.NotNil(t, got.HTTPStatus)
			require.Equal(t, tc.status, *got.HTTPStatus)
		})
	}
}

func TestFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"dial refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, apierror.CodeNetwork},
		{"dns", &url.Error{Op: "Get", URL: "http://x", Err: &net.DNSError{Err: "no such host", Name: "x"}}, apierror.CodeNetwork},
		{"deadline", context.DeadlineExceeded, apierror.CodeNetwork},
		{"unexpected eof", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), apierror.CodeNetwork},
		{"reset", fmt.Errorf("write: %w", syscall.ECONNRESET), apierror.CodeNetwork},
		{"cancelled", context.Canceled, apierror.CodeCancelled},
		{"other", errors.New("boom: internal detail"), apierror.CodeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := apierror.FromError(tc.err)
			require.Equal(t, tc.code, got.Code)
			require.Nil(t, got.HTTPStatus)
			require.NotContains(t, got.Message, "internal detail")
		})
	}

	t.Run("already normalized passes through", func(t *testing.T) {
		orig := apierror.FromResponse(http.StatusNotFound, nil)
		require.Same(t, orig, apierror.FromError(fmt.Errorf("wrapped: %w", orig)))
	})
}

func TestIsConnectivityError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("i/o failure")}, true},
		{"read", &url.Error{Op: "Get", URL: "https://x", Err: &net.OpError{Op: "read", Net: "tcp", Err: errors.New("broken")}}, true},
		{"errno on other op", &net.OpError{Op: "accept", Net: "tcp", Err: syscall.ECONNRESET}, true},
		{"tls alert", &url.Error{Op: "Get", URL: "https://x", Err: &net.OpError{Op: "remote error", Err: errors.New("tls: bad certificate")}}, false},
		{"cancelled", context.Canceled, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, apierror.IsConnectivityError(tc.err))
		})
	}

	t.Run("tls alert is not a network error", func(t *testing.T) {
		err := &net.OpError{Op: "remote error", Err: errors.New("tls: bad certificate")}
		require.Equal(t, apierror.CodeUnknown, apierror.FromError(err).Code)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("response body is read and closed", func(t *testing.T) {
		body := &closeRecorder{Reader: strings.NewReader(`{"message":"nope","code":"DENIED"}`)}
		got := apierror.Normalize(&http.Response{StatusCode: http.StatusForbidden, Body: body}, nil)
		require.True(t, body.closed)
		require.Equal(t, "DENIED", got.Code)
		require.Equal(t, http.StatusForbidden, got.Status())
	})

	t.Run("error wins over response", func(t *testing.T) {
		body := &closeRecorder{Reader: strings.NewReader("")}
		got := apierror.Normalize(&http.Response{StatusCode: 200, Body: body}, &net.OpError{Op: "read", Err: syscall.ECONNRESET})
		require.True(t, body.closed)
		require.Equal(t, apierror.CodeNetwork, got.Code)
	})

	t.Run("nothing to go on", func(t *testing.T) {
		got := apierror.Normalize(nil, nil)
		require.Equal(t, apierror.CodeUnknown, got.Code)
	})
}

func TestIsRetryable(t *testing.T) {
	require.True(t, apierror.IsRetryable(&apierror.Error{Code: apierror.CodeNetwork}))
	require.True(t, apierror.IsRetryable(&apierror.Error{Code: apierror.CodeServer, HTTPStatus: utils.Ptr(502)}))
	require.True(t, apierror.IsRetryable(&apierror.Error{HTTPStatus: utils.Ptr(500)}))
	require.True(t, apierror.IsRetryable(&apierror.Error{HTTPStatus: utils.Ptr(503)}))
	require.False(t, apierror.IsRetryable(&apierror.Error{HTTPStatus: utils.Ptr(404)}))
	require.False(t, apierror.IsRetryable(&apierror.Error{Code: apierror.CodeServer, HTTPStatus: utils.Ptr(504)}))
	require.False(t, apierror.IsRetryable(nil))
}

func TestError(t *testing.T) {
	e := apierror.FromResponse(http.StatusNotFound, nil)
	require.Equal(t, "NOT_FOUND (404): "+apierror.MessageForStatus(404), e.Error())
	require.True(t, errors.Is(fmt.Errorf("x: %w", e), &apierror.Error{Code: apierror.CodeNotFound}))
	require.False(t, errors.Is(e, &apierror.Error{Code: apierror.CodeNetwork}))

	n := apierror.FromError(context.DeadlineExceeded)
	require.Equal(t, 0, n.Status())
	require.True(t, strings.HasPrefix(n.Error(), "NETWORK_ERROR: "))
}
