package client

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/connexa-app/connexa/auth/token"
	"github.com/connexa-app/connexa/client/storage"
)

const (
	// DefaultCheckInterval is how often the stored token is examined.
	DefaultCheckInterval = time.Minute

	// DefaultRefreshThreshold is the remaining validity below which a
	// renewal is attempted.
	DefaultRefreshThreshold = 5 * time.Minute
)

// ErrRefreshInProgress reports a renewal attempt while another is already
// running. The losing caller gets this error and no side effects.
var ErrRefreshInProgress = errors.New("client: refresh already in progress")

// Refresher exchanges the current access token for a fresh one. *Client
// satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, current string) (string, error)
}

// ManagerOptions configures a TokenManager.
type ManagerOptions struct {
	// CheckInterval between periodic examinations (default: 1 minute).
	CheckInterval time.Duration

	// RefreshThreshold of remaining validity that triggers renewal
	// (default: 5 minutes).
	RefreshThreshold time.Duration

	// OnExpired fires when the session has ended: the token expired
	// outright or a renewal attempt failed. Storage is already cleared.
	OnExpired func()

	// OnRefreshed fires with the new access token after a renewal.
	OnRefreshed func(newToken string)

	// OnError fires on failures that did not end the session.
	OnError func(err error)
}

// TokenManager watches the stored access token and renews it before it
// expires. One renewal runs at a time; checks triggered while a renewal
// is in flight are dropped rather than queued.
type TokenManager struct {
	store      *storage.SecureStore
	refresher  Refresher
	interval   time.Duration
	threshold  time.Duration
	opts       ManagerOptions
	refreshing atomic.Bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewTokenManager wires a manager; Start begins monitoring.
func NewTokenManager(store *storage.SecureStore, refresher Refresher, opts ManagerOptions) *TokenManager {
	interval := opts.CheckInterval
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	threshold := opts.RefreshThreshold
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}
	return &TokenManager{
		store:     store,
		refresher: refresher,
		interval:  interval,
		threshold: threshold,
		opts:      opts,
	}
}

// Start performs an immediate check, then checks on every interval tick
// until Stop is called or ctx is cancelled. The interval tick is the
// server analog of the browser's visibility and focus re-checks: any
// wake-up path simply calls CheckNow.
func (m *TokenManager) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	m.CheckNow(ctx)

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CheckNow(ctx)
			}
		}
	}()
}

// Stop ends monitoring and waits for the loop to exit.
func (m *TokenManager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
}

// CheckNow examines the stored token once: an expired token ends the
// session, a near-expiry token is renewed, anything else is left alone.
func (m *TokenManager) CheckNow(ctx context.Context) {
	current, err := m.store.Token()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return
		}
		// The store already cleared the bad blob.
		m.expire()
		return
	}

	if token.Expired(current) {
		m.store.Clear()
		m.expire()
		return
	}

	if token.RemainingValidity(current) <= m.threshold {
		if err := m.ForceRefresh(ctx); err != nil && !errors.Is(err, ErrRefreshInProgress) {
			m.store.Clear()
			m.expire()
		}
	}
}

// ForceRefresh renews the token immediately. While one renewal is in
// flight every other caller fails with ErrRefreshInProgress and causes no
// side effects.
func (m *TokenManager) ForceRefresh(ctx context.Context) error {
	if !m.refreshing.CompareAndSwap(false, true) {
		return ErrRefreshInProgress
	}
	defer m.refreshing.Store(false)

	current, err := m.store.Token()
	if err != nil {
		m.fail(err)
		return err
	}

	fresh, err := m.refresher.Refresh(ctx, current)
	if err != nil {
		m.fail(err)
		return err
	}
	if err := m.store.SetToken(fresh); err != nil {
		m.fail(err)
		return err
	}

	if m.opts.OnRefreshed != nil {
		m.opts.OnRefreshed(fresh)
	}
	return nil
}

// IsRefreshing reports whether a renewal is in flight.
func (m *TokenManager) IsRefreshing() bool {
	return m.refreshing.Load()
}

func (m *TokenManager) expire() {
	if m.opts.OnExpired != nil {
		m.opts.OnExpired()
	}
}

func (m *TokenManager) fail(err error) {
	if m.opts.OnError != nil {
		m.opts.OnError(err)
	}
}
