// Package storage persists client-side session material: the access
// token and the cached user profile, encrypted at rest with an integrity
// hash and a maximum storage age. The encryption is obfuscation for
// shared machines, not an access boundary; the server verifies every
// presented token regardless.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/connexa-app/connexa/encryption"
)

const (
	tokenKey = "connexa_token"
	userKey  = "connexa_user"

	// DefaultMaxAge is how long a stored token blob stays usable
	// regardless of the token's own expiry.
	DefaultMaxAge = 24 * time.Hour
)

var (
	// ErrIntegrity reports a stored blob whose integrity hash no longer
	// matches its contents.
	ErrIntegrity = errors.New("storage: integrity check failed")

	// ErrTooOld reports a blob past the maximum storage age.
	ErrTooOld = errors.New("storage: stored token too old")
)

// envelope is the persisted tuple: the value, when it was stored, and a
// hash binding the two together.
type envelope struct {
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
	Integrity string `json:"integrity"`
}

// SecureStore encrypts session material into a primary and a fallback
// backend. Any read failure, a blob that will not decrypt, a broken
// integrity hash or an over-age token, actively clears the key from both
// backends before reporting the error.
type SecureStore struct {
	enc      encryption.Encryptor
	key      string
	primary  Backend
	fallback Backend
	maxAge   time.Duration
	now      func() time.Time
}

// Option customizes a SecureStore.
type Option func(*SecureStore)

// WithMaxAge overrides the maximum storage age.
func WithMaxAge(d time.Duration) Option {
	return func(s *SecureStore) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

// WithClock overrides the time source. Tests use this to age blobs.
func WithClock(now func() time.Time) Option {
	return func(s *SecureStore) { s.now = now }
}

// New creates a SecureStore keyed by the given secret. The fallback
// backend may be nil.
func New(key string, primary, fallback Backend, opts ...Option) (*SecureStore, error) {
	enc, err := encryption.New(key, encryption.AlgorithmAESGCM)
	if err != nil {
		return nil, err
	}
	s := &SecureStore{
		enc:      enc,
		key:      key,
		primary:  primary,
		fallback: fallback,
		maxAge:   DefaultMaxAge,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// integrity binds a value and its storage timestamp to the store's key.
func (s *SecureStore) integrity(value string, ts int64) string {
	sum := sha256.Sum256([]byte(value + strconv.FormatInt(ts, 10) + s.key))
	return hex.EncodeToString(sum[:])
}

func (s *SecureStore) save(key, value string) error {
	ts := s.now().UnixMilli()
	env := envelope{
		Value:     value,
		Timestamp: ts,
		Integrity: s.integrity(value, ts),
	}
	plain, err := json.Marshal(env)
	if err != nil {
		return err
	}
	blob, err := s.enc.Encrypt(string(plain))
	if err != nil {
		return err
	}

	perr := s.primary.Save(key, blob)
	if s.fallback != nil {
		if ferr := s.fallback.Save(key, blob); ferr != nil && perr == nil {
			perr = ferr
		}
	}
	return perr
}

// load reads the blob from the primary backend, falling back to the
// secondary, and validates it. checkAge applies the max-age rule; the
// user blob carries no age limit.
func (s *SecureStore) load(key string, checkAge bool) (string, error) {
	blob, err := s.primary.Load(key)
	if err != nil && s.fallback != nil {
		blob, err = s.fallback.Load(key)
	}
	if err != nil {
		return "", err
	}

	plain, err := s.enc.Decrypt(blob)
	if err != nil {
		s.remove(key)
		return "", err
	}
	var env envelope
	if err := json.Unmarshal([]byte(plain), &env); err != nil {
		s.remove(key)
		return "", err
	}
	if env.Integrity != s.integrity(env.Value, env.Timestamp) {
		s.remove(key)
		return "", ErrIntegrity
	}
	if checkAge {
		stored := time.UnixMilli(env.Timestamp)
		if s.now().Sub(stored) > s.maxAge {
			s.remove(key)
			return "", ErrTooOld
		}
	}
	return env.Value, nil
}

func (s *SecureStore) remove(key string) {
	_ = s.primary.Delete(key)
	if s.fallback != nil {
		_ = s.fallback.Delete(key)
	}
}

// SetToken stores the access token.
func (s *SecureStore) SetToken(token string) error {
	return s.save(tokenKey, token)
}

// Token retrieves the access token. A validation failure clears the
// stored blob and returns the cause; an absent token returns ErrNotFound.
func (s *SecureStore) Token() (string, error) {
	return s.load(tokenKey, true)
}

// RemoveToken clears the access token from both backends.
func (s *SecureStore) RemoveToken() {
	s.remove(tokenKey)
}

// SetUser caches the user profile, serialized as JSON.
func (s *SecureStore) SetUser(user interface{}) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.save(userKey, string(data))
}

// User decodes the cached user profile into out.
func (s *SecureStore) User(out interface{}) error {
	data, err := s.load(userKey, false)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), out)
}

// RemoveUser clears the cached profile.
func (s *SecureStore) RemoveUser() {
	s.remove(userKey)
}

// Clear wipes all session material.
func (s *SecureStore) Clear() {
	s.RemoveToken()
	s.RemoveUser()
}
