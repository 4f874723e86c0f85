package apierror

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// IsConnectivityError reports transport failures that say nothing about the
// request itself: timeouts, refused or reset connections, DNS failures and
// truncated reads. A cancelled context is not one of them.
func IsConnectivityError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && isConnectivityOp(opErr) {
		return true
	}

	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH)
}

// isConnectivityOp accepts socket-level failures. Protocol rejections such as
// a TLS alert ("remote error") also arrive as *net.OpError and are terminal.
func isConnectivityOp(opErr *net.OpError) bool {
	switch opErr.Op {
	case "dial", "read", "write":
		return true
	}
	var errno syscall.Errno
	if errors.As(opErr.Err, &errno) {
		return true
	}
	return opErr.Timeout()
}
