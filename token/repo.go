package token

import "context"

// Persisted keys of a Record.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyExpiresAt    = "expires_at"
)

// Repo is the persisted key-value capability behind a Store.
// Get returns errors.ErrNotFound for an absent key. SetAll must replace the
// given keys in one atomic write.
type Repo interface {
	Get(ctx context.Context, key string) (string, error)
	SetAll(ctx context.Context, values map[string]string) error
	Clear(ctx context.Context) error
}
