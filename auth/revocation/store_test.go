package revocation_test

import (
	"sync"
	"testing"

	"github.com/connexa-app/connexa/auth/revocation"
	"github.com/connexa-app/connexa/logger"
)

func newStore() *revocation.MemoryStore {
	return revocation.NewMemoryStore(logger.NewDefault("test"))
}

func TestRevoke_IsRevoked(t *testing.T) {
	s := newStore()

	if s.IsRevoked("tok-1") {
		t.Error("unknown token reported revoked")
	}

	s.Revoke("tok-1")
	if !s.IsRevoked("tok-1") {
		t.Error("revoked token not reported")
	}
	if s.IsRevoked("tok-2") {
		t.Error("unrelated token reported revoked")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Len())
	}

	// Revoking again is a no-op, not an error.
	s.Revoke("tok-1")
	if s.Len() != 1 {
		t.Errorf("duplicate revoke changed size: %d", s.Len())
	}
}

func TestRevoke_EmptyTokenIgnored(t *testing.T) {
	s := newStore()
	s.Revoke("")
	if s.Len() != 0 {
		t.Error("empty token was stored")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := newStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Revoke(string(rune('a' + n%26)))
		}(i)
		go func(n int) {
			defer wg.Done()
			s.IsRevoked(string(rune('a' + n%26)))
		}(i)
	}
	wg.Wait()

	if s.Len() == 0 {
		t.Error("expected entries after concurrent revokes")
	}
}
