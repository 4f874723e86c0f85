package token

import (
	"context"
	"sync"
	"time"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Record is the session's credential set. Empty strings and a zero ExpiresAt
// stand for "not set".
type Record struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Store owns the current Record. Every read and write is serialized, so one
// Store can back any number of concurrent requests.
type Store struct {
	mu      sync.RWMutex
	record  Record
	repo    Repo
	nowFunc func() time.Time
}

var _ oauth2.TokenSource = (*Store)(nil)

type StoreOption func(*Store)

func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowFunc = now
	}
}

// NewStore creates a Store over repo and loads any previously persisted record.
func NewStore(ctx context.Context, repo Repo, options ...StoreOption) (*Store, error) {
	s := &Store{repo: repo}
	for _, opt := range options {
		opt(s)
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}

	record, err := load(ctx, repo)
	if err != nil {
		return nil, errors.Wrap(err, "token.NewStore load")
	}
	s.record = s.withDecidableExpiry(record)
	return s, nil
}

// AccessToken returns the current access token, false if none is set.
func (s *Store) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.AccessToken, s.record.AccessToken != ""
}

func (s *Store) RefreshToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.RefreshToken, s.record.RefreshToken != ""
}

// IsExpired reports true when the expiry is unknown or not in the future.
func (s *Store) IsExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record.ExpiresAt.IsZero() {
		return true
	}
	return !s.record.ExpiresAt.After(s.nowFunc())
}

// Snapshot returns a consistent copy of all three fields.
func (s *Store) Snapshot() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

// Save replaces all three fields at once. A missing expiry on a non-empty
// access token is taken from its JWT exp claim, or set to now when the token
// carries none.
func (s *Store) Save(ctx context.Context, access, refresh string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.withDecidableExpiry(Record{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	})

	if err := s.repo.SetAll(ctx, encode(record)); err != nil {
		return errors.Wrap(err, "Store.Save SetAll")
	}
	s.record = record
	return nil
}

// Clear resets every field, used on logout.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return errors.Wrap(err, "Store.Clear")
	}
	s.record = Record{}
	return nil
}

// Token exposes the record to golang.org/x/oauth2.
func (s *Store) Token() (*oauth2.Token, error) {
	r := s.Snapshot()
	if r.AccessToken == "" {
		return nil, autherrors.ErrNoAccessToken
	}
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: r.RefreshToken,
		Expiry:       r.ExpiresAt,
	}, nil
}

func (s *Store) withDecidableExpiry(r Record) Record {
	if r.AccessToken == "" || !r.ExpiresAt.IsZero() {
		return r
	}
	if exp, ok := ExpiryFromJWT(r.AccessToken); ok {
		r.ExpiresAt = exp
		return r
	}
	r.ExpiresAt = s.nowFunc()
	return r
}

func encode(r Record) map[string]string {
	values := map[string]string{
		KeyAccessToken:  r.AccessToken,
		KeyRefreshToken: r.RefreshToken,
		KeyExpiresAt:    "",
	}
	if !r.ExpiresAt.IsZero() {
		values[KeyExpiresAt] = r.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}
	return values
}

func load(ctx context.Context, repo Repo) (Record, error) {
	var r Record
	var err error
	if r.AccessToken, err = getOptional(ctx, repo, KeyAccessToken); err != nil {
		return Record{}, err
	}
	if r.RefreshToken, err = getOptional(ctx, repo, KeyRefreshToken); err != nil {
		return Record{}, err
	}
	expiresAt, err := getOptional(ctx, repo, KeyExpiresAt)
	if err != nil {
		return Record{}, err
	}
	if expiresAt != "" {
		// An unreadable expiry is left zero, which reads as expired.
		if t, perr := time.Parse(time.RFC3339Nano, expiresAt); perr == nil {
			r.ExpiresAt = t
		}
	}
	return r, nil
}

func getOptional(ctx context.Context, repo Repo, key string) (string, error) {
	v, err := repo.Get(ctx, key)
	if autherrors.Is(err, autherrors.ErrNotFound) {
		return "", nil
	}
	return v, err
}
