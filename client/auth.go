package client

import (
	"context"
	"net/http"
	"strings"
)

// DefaultPublicPaths never receive an Authorization header.
var DefaultPublicPaths = []string{
	"/auth/login",
	"/auth/register",
	"/auth/verify-otp",
	"/auth/resend-otp",
	"/auth/forgot-password",
	"/health",
	"/api-docs",
}

// TokenReader supplies the access token for the auth stage.
type TokenReader interface {
	AccessToken() (string, bool)
}

// IsPublicPath reports whether path equals an allowlisted path or lies
// beneath one. Matching is case-sensitive and respects segment boundaries.
func IsPublicPath(path string, publicPaths []string) bool {
	for _, p := range publicPaths {
		p = strings.TrimRight(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// AuthInterceptor attaches "Authorization: Bearer <token>" to every request
// outside publicPaths. Without a token the request goes out unmodified and
// the server decides. It never fails and never waits on a refresh.
func AuthInterceptor(tokens TokenReader, publicPaths []string) Interceptor {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*http.Response, error) {
			if IsPublicPath(req.Path(), publicPaths) {
				return next(ctx, req)
			}
			accessToken, ok := tokens.AccessToken()
			if !ok {
				return next(ctx, req)
			}
			return next(ctx, req.WithHeader("Authorization", "Bearer "+accessToken))
		}
	}
}
