package client

import (
	"context"
	"net/http"
	"time"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Refresher exchanges a refresh token for a new token set.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

func (f RefreshFunc) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return f(ctx, refreshToken)
}

// OAuth2Refresher runs the standard refresh_token grant against tokenURL.
type OAuth2Refresher struct {
	config     *oauth2.Config
	httpClient *http.Client
}

var _ Refresher = (*OAuth2Refresher)(nil)

func NewOAuth2Refresher(tokenURL, clientID, clientSecret string, httpClient *http.Client) *OAuth2Refresher {
	return &OAuth2Refresher{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
	}
}

func (r *OAuth2Refresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, autherrors.ErrInvalidRefreshToken
	}
	if r.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	}
	// Without an access token the source always goes to the token endpoint.
	tok, err := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, errors.Wrap(err, "OAuth2Refresher.Refresh")
	}
	return tok, nil
}

// TokenStore is the Token Store as the client sees it.
type TokenStore interface {
	TokenReader
	RefreshToken() (string, bool)
	Save(ctx context.Context, access, refresh string, expiresAt time.Time) error
}

// refreshCoordinator refreshes the access token after a 401 and re-issues the
// request once. Concurrent 401s share one refresh.
type refreshCoordinator struct {
	store       TokenStore
	refresher   Refresher
	publicPaths []string
	timeout     time.Duration
	logger      zerolog.Logger
	metrics     *Metrics
	group       singleflight.Group
}

// Interceptor must run outside the auth stage so the re-issued request picks
// up the new token.
func (c *refreshCoordinator) Interceptor() Interceptor {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*http.Response, error) {
			sentToken, _ := c.store.AccessToken()

			resp, err := next(ctx, req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized || IsPublicPath(req.Path(), c.publicPaths) {
				return resp, err
			}
			if _, ok := c.store.RefreshToken(); !ok {
				return resp, nil
			}

			if rerr := c.refresh(ctx, sentToken); rerr != nil {
				c.logger.Warn().Err(rerr).
					Str("path", req.Path()).
					Str("request_id", req.Header(RequestIDHeader)).
					Msg("Token refresh failed")
				return resp, nil
			}

			discard(resp)
			return next(ctx, req)
		}
	}
}

func (c *refreshCoordinator) refresh(ctx context.Context, staleToken string) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		if current, ok := c.store.AccessToken(); ok && current != staleToken {
			// Another request already replaced the token.
			return nil, nil
		}
		refreshToken, ok := c.store.RefreshToken()
		if !ok {
			return nil, autherrors.ErrInvalidRefreshToken
		}

		// Shared by every waiter, so one caller's cancellation must not
		// abort it for the rest.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		tok, err := c.refresher.Refresh(rctx, refreshToken)
		if err != nil {
			c.metrics.refreshed("failure")
			return nil, autherrors.Wrapf(autherrors.ErrRefreshFailed, "%v", err)
		}
		if tok == nil || tok.AccessToken == "" {
			c.metrics.refreshed("failure")
			return nil, autherrors.ErrRefreshFailed
		}

		newRefresh := tok.RefreshToken
		if newRefresh == "" {
			newRefresh = refreshToken
		}
		if err := c.store.Save(rctx, tok.AccessToken, newRefresh, tok.Expiry); err != nil {
			c.metrics.refreshed("failure")
			return nil, errors.Wrap(err, "refreshCoordinator.refresh Save")
		}

		c.metrics.refreshed("success")
		c.logger.Info().Time("expires_at", tok.Expiry).Msg("Access token refreshed")
		return nil, nil
	})
	return err
}
