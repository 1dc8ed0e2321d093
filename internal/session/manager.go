// Package session keeps the vqd token the translation endpoint requires.
//
// A Manager acquires the token lazily on first use and replaces it wholesale
// when the service rejects it. Readers never observe a partially written
// token: the value is published through an atomic pointer swap, and
// concurrent fetches of the same kind are collapsed into one request.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	keyInit    = "init"
	keyRefresh = "refresh"
)

// Manager owns one session token.
type Manager struct {
	source TokenSource
	logger *zap.Logger
	token  atomic.Pointer[string]
	group  singleflight.Group
}

// NewManager returns a Manager that fetches tokens from source.
// A nil logger disables logging.
func NewManager(source TokenSource, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{source: source, logger: logger}
}

var (
	defaultOnce    sync.Once
	defaultManager *Manager
)

// Default returns the process-wide Manager backed by the DuckDuckGo page.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager(NewPageSource("", "", 0), nil)
	})
	return defaultManager
}

// Current returns the stored token, fetching one first if none is stored.
func (m *Manager) Current(ctx context.Context) (string, error) {
	if t := m.token.Load(); t != nil {
		return *t, nil
	}
	return m.do(ctx, keyInit, func(fetchCtx context.Context) (string, error) {
		// another caller may have published a token while we queued
		if t := m.token.Load(); t != nil {
			return *t, nil
		}
		return m.fetchAndStore(fetchCtx)
	})
}

// Refresh fetches a new token unconditionally and replaces the stored one.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	return m.do(ctx, keyRefresh, m.fetchAndStore)
}

// RefreshIfStale replaces the stored token only while it still equals
// rejected. When another caller has already swapped it out, the stored token
// is returned without contacting the service.
func (m *Manager) RefreshIfStale(ctx context.Context, rejected string) (string, error) {
	if t := m.token.Load(); t != nil && *t != rejected {
		return *t, nil
	}
	return m.do(ctx, keyRefresh, func(fetchCtx context.Context) (string, error) {
		// a refresh that finished while we queued already replaced it
		if t := m.token.Load(); t != nil && *t != rejected {
			return *t, nil
		}
		return m.fetchAndStore(fetchCtx)
	})
}

// Set replaces the stored token without contacting the service.
func (m *Manager) Set(token string) {
	m.token.Store(&token)
}

// Reset drops the stored token; the next Current call fetches a new one.
func (m *Manager) Reset() {
	m.token.Store(nil)
}

func (m *Manager) fetchAndStore(ctx context.Context) (string, error) {
	token, err := m.source.FetchToken(ctx)
	if err != nil {
		m.logger.Warn("failed to fetch session token", zap.Error(err))
		return "", err
	}
	m.token.Store(&token)
	m.logger.Debug("session token stored", zap.Int("length", len(token)))
	return token, nil
}

// do runs fn once per key for all concurrent callers. The shared fetch is
// detached from the first caller's cancellation; each caller still stops
// waiting when its own ctx is done.
func (m *Manager) do(ctx context.Context, key string, fn func(context.Context) (string, error)) (string, error) {
	fetchCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (interface{}, error) {
		return fn(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
