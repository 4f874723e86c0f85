package tokenfakerepo

import (
	"context"
	"sync"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/token"
)

var _ token.Repo = (*FakeTokenRepo)(nil)

type FakeTokenRepo struct {
	values map[string]string
	writes int
	lock   sync.RWMutex

	// FailWith, when set, is returned by SetAll and Clear.
	FailWith error
}

func NewFakeTokensRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		values: make(map[string]string),
	}
}

func (tr *FakeTokenRepo) Get(_ context.Context, key string) (string, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	v, ok := tr.values[key]
	if !ok {
		return "", autherrors.ErrNotFound
	}
	return v, nil
}

func (tr *FakeTokenRepo) SetAll(_ context.Context, values map[string]string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if tr.FailWith != nil {
		return tr.FailWith
	}
	for k, v := range values {
		tr.values[k] = v
	}
	tr.writes++
	return nil
}

func (tr *FakeTokenRepo) Clear(_ context.Context) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if tr.FailWith != nil {
		return tr.FailWith
	}
	tr.values = make(map[string]string)
	tr.writes++
	return nil
}

// Writes counts successful SetAll and Clear calls.
func (tr *FakeTokenRepo) Writes() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.writes
}

// Len is the number of stored keys.
func (tr *FakeTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.values)
}
