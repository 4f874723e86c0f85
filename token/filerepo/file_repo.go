// Package filerepo persists token records in a single file encrypted with
// XChaCha20-Poly1305 under an Argon2id-derived key.
package filerepo

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltSize = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var _ token.Repo = (*FileRepo)(nil)

type FileRepo struct {
	path       string
	passphrase []byte
	lock       sync.Mutex

	// salt and key cache the last Argon2id derivation; guarded by lock.
	salt      []byte
	key       []byte
	deriveKey func(passphrase, salt []byte) []byte
}

func New(path, passphrase string) (*FileRepo, error) {
	if path == "" {
		return nil, errors.Wrap(autherrors.ErrInvalidRequest, "filerepo.New")
	}
	if passphrase == "" {
		return nil, errors.Wrap(autherrors.ErrInvalidRequest, "filerepo.New: empty passphrase")
	}
	return &FileRepo{path: path, passphrase: []byte(passphrase), deriveKey: argon2Key}, nil
}

func (r *FileRepo) Get(_ context.Context, key string) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	values, err := r.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", autherrors.ErrNotFound
	}
	return v, nil
}

func (r *FileRepo) SetAll(_ context.Context, values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	current, err := r.read()
	if err != nil && !autherrors.Is(err, autherrors.ErrCorruptTokenFile) {
		return err
	}
	if current == nil {
		current = make(map[string]string, len(values))
	}
	for k, v := range values {
		current[k] = v
	}
	return r.write(current)
}

func (r *FileRepo) Clear(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "FileRepo.Clear")
	}
	r.salt, r.key = nil, nil
	return nil
}

func (r *FileRepo) read() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "FileRepo.read")
	}
	if len(data) < saltSize+chacha20poly1305.NonceSizeX {
		return nil, autherrors.ErrCorruptTokenFile
	}

	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	ciphertext := data[saltSize+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(r.keyFor(salt))
	if err != nil {
		return nil, errors.Wrap(err, "FileRepo.read NewX")
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, autherrors.ErrCorruptTokenFile
	}

	values := make(map[string]string)
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return nil, autherrors.ErrCorruptTokenFile
	}
	return values, nil
}

func (r *FileRepo) write(values map[string]string) error {
	plaintext, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "FileRepo.write Marshal")
	}

	salt := r.salt
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return errors.Wrap(err, "FileRepo.write salt")
		}
	}

	buf := make([]byte, saltSize+chacha20poly1305.NonceSizeX, saltSize+chacha20poly1305.NonceSizeX+len(plaintext)+chacha20poly1305.Overhead)
	copy(buf, salt)
	nonce := buf[saltSize:]
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(err, "FileRepo.write nonce")
	}

	aead, err := chacha20poly1305.NewX(r.keyFor(salt))
	if err != nil {
		return errors.Wrap(err, "FileRepo.write NewX")
	}
	data := aead.Seal(buf, nonce, plaintext, nil)

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "FileRepo.write MkdirAll")
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".tokens-*")
	if err != nil {
		return errors.Wrap(err, "FileRepo.write CreateTemp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "FileRepo.write Write")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "FileRepo.write Chmod")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "FileRepo.write Close")
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return errors.Wrap(err, "FileRepo.write Rename")
	}
	return nil
}

// keyFor derives the key for salt, reusing the previous derivation when the
// salt is unchanged. Callers hold lock.
func (r *FileRepo) keyFor(salt []byte) []byte {
	if r.key != nil && bytes.Equal(r.salt, salt) {
		return r.key
	}
	r.salt = append([]byte(nil), salt...)
	r.key = r.deriveKey(r.passphrase, r.salt)
	return r.key
}

func argon2Key(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}
