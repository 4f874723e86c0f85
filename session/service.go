// Package session drives the Token Record lifecycle: login creates it,
// logout clears it.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-client/apierror"
	"github.com/jrsteele09/go-auth-client/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	LoginPath  = "/auth/login"
	LogoutPath = "/auth/logout"
)

// Doer is the part of client.Client the session needs.
type Doer interface {
	DoJSON(ctx context.Context, req *client.Request, out any) error
}

// Tokens is the part of token.Store the session needs.
type Tokens interface {
	Save(ctx context.Context, access, refresh string, expiresAt time.Time) error
	Clear(ctx context.Context) error
}

type Service struct {
	client  Doer
	tokens  Tokens
	logger  zerolog.Logger
	nowFunc func() time.Time
}

type Option func(*Service)

func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		s.nowFunc = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(c Doer, tokens Tokens, options ...Option) *Service {
	s := &Service{
		client:  c,
		tokens:  tokens,
		logger:  log.Logger,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for tokens and stores them. Failures are
// *apierror.Error values.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	req, err := client.NewRequest(http.MethodPost, LoginPath).WithJSON(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, apierror.FromError(err)
	}

	var resp TokenResponse
	if err := s.client.DoJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		s.logger.Error().Msg("Login response carried no access token")
		return nil, apierror.FromResponse(http.StatusBadGateway, nil)
	}

	// A zero expiry lets the store fall back to the JWT exp claim.
	if err := s.tokens.Save(ctx, resp.AccessToken, resp.RefreshToken, resp.ExpiresAt(s.nowFunc())); err != nil {
		s.logger.Err(err).Msg("Failed to save tokens after login")
		return nil, apierror.FromError(err)
	}
	return &resp, nil
}

// Logout tells the server (best effort) and always clears local tokens.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.DoJSON(ctx, client.NewRequest(http.MethodPost, LogoutPath), nil); err != nil {
		s.logger.Warn().Err(err).Msg("Server logout failed, clearing local tokens anyway")
	}
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Err(err).Msg("Failed to clear tokens")
		return apierror.FromError(err)
	}
	return nil
}
