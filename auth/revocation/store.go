// Package revocation tracks tokens invalidated before their natural
// expiry. The store is in-memory only: a process restart forgets all
// revocations, which is an accepted limitation of the single-process
// deployment, not something to paper over here.
package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/connexa-app/connexa/logger"
)

// Store is the revocation contract consumed by the auth middleware.
// Implementations must tolerate arbitrary interleaving of Revoke and
// IsRevoked calls.
type Store interface {
	// Revoke marks the token string invalid. Unconditional insert.
	Revoke(token string)

	// IsRevoked reports whether the token has been revoked. The auth
	// middleware consults this before signature verification, so a
	// revoked-but-cryptographically-valid token is still rejected.
	IsRevoked(token string) bool

	// Len returns the current number of revoked entries.
	Len() int
}

// Config configures the in-memory store's background sweep.
type Config struct {
	// SweepInterval is how often the sweeper runs (default: 1h).
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// MemoryStore is a mutex-guarded in-memory revocation set.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
	log    *logger.Logger
}

// NewMemoryStore creates an empty in-memory revocation store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]struct{}),
		log:    log.WithComponent("revocation"),
	}
}

// Revoke marks the token string invalid.
func (s *MemoryStore) Revoke(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	s.tokens[token] = struct{}{}
	s.mu.Unlock()
}

// IsRevoked reports whether the token has been revoked.
func (s *MemoryStore) IsRevoked(token string) bool {
	s.mu.RLock()
	_, ok := s.tokens[token]
	s.mu.RUnlock()
	return ok
}

// Len returns the current number of revoked entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// StartSweeper runs a periodic sweep until ctx is cancelled. Each sweep
// logs the set size and evicts entries whose underlying token has passed
// its own expiry (reported by isExpired): an expired token no longer needs
// a revocation entry to be rejected, so dropping it bounds memory without
// changing what callers observe.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration, isExpired func(token string) bool) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(isExpired)
			}
		}
	}()
}

func (s *MemoryStore) sweep(isExpired func(token string) bool) {
	// Snapshot under the read lock; the expiry check decodes tokens and
	// must not hold up request-path lookups.
	s.mu.RLock()
	snapshot := make([]string, 0, len(s.tokens))
	for t := range s.tokens {
		snapshot = append(snapshot, t)
	}
	s.mu.RUnlock()

	var stale []string
	if isExpired != nil {
		for _, t := range snapshot {
			if isExpired(t) {
				stale = append(stale, t)
			}
		}
	}

	if len(stale) > 0 {
		s.mu.Lock()
		for _, t := range stale {
			delete(s.tokens, t)
		}
		s.mu.Unlock()
	}

	s.log.Info("Revocation sweep", map[string]interface{}{
		"size":    s.Len(),
		"evicted": len(stale),
	})
}
