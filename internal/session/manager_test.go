package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mockSource struct {
	fetchFunc func(ctx context.Context) (string, error)
	callCount atomic.Int32
}

func (m *mockSource) FetchToken(ctx context.Context) (string, error) {
	n := m.callCount.Add(1)
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx)
	}
	return fmt.Sprintf("token-%d", n), nil
}

func TestManager_Current_Lazy(t *testing.T) {
	src := &mockSource{}
	m := NewManager(src, nil)

	if src.callCount.Load() != 0 {
		t.Fatal("expected no fetch before first use")
	}

	tok, err := m.Current(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "token-1" {
		t.Errorf("expected token-1, got %q", tok)
	}

	tok, err = m.Current(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "token-1" {
		t.Errorf("expected cached token-1, got %q", tok)
	}
	if src.callCount.Load() != 1 {
		t.Errorf("expected 1 fetch, got %d", src.callCount.Load())
	}
}

func TestManager_Current_ConcurrentFirstUse(t *testing.T) {
	release := make(chan struct{})
	src := &mockSource{
		fetchFunc: func(ctx context.Context) (string, error) {
			<-release
			return "shared", nil
		},
	}
	m := NewManager(src, nil)

	const callers = 50
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = m.Current(context.Background())
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range tokens {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
		}
		if tokens[i] != "shared" {
			t.Fatalf("caller %d: expected shared, got %q", i, tokens[i])
		}
	}
	if src.callCount.Load() != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", src.callCount.Load())
	}
}

func TestManager_Refresh(t *testing.T) {
	src := &mockSource{}
	m := NewManager(src, nil)

	if _, err := m.Current(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tok, err := m.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "token-2" {
		t.Errorf("expected token-2, got %q", tok)
	}

	cur, _ := m.Current(context.Background())
	if cur != "token-2" {
		t.Errorf("expected Current to return refreshed token, got %q", cur)
	}
}

func TestManager_Refresh_ConcurrentWithReaders(t *testing.T) {
	src := &mockSource{
		fetchFunc: func(ctx context.Context) (string, error) {
			return "fresh-token-value", nil
		},
	}
	m := NewManager(src, nil)
	m.Set("stale-token-value")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := m.Refresh(context.Background()); err != nil {
				t.Errorf("refresh failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			tok, err := m.Current(context.Background())
			if err != nil {
				t.Errorf("current failed: %v", err)
				return
			}
			if tok != "stale-token-value" && tok != "fresh-token-value" {
				t.Errorf("observed torn token %q", tok)
			}
		}()
	}
	wg.Wait()
}

func TestManager_RefreshIfStale_SkipsReplacedToken(t *testing.T) {
	src := &mockSource{}
	m := NewManager(src, nil)
	m.Set("stale")

	tok, err := m.RefreshIfStale(context.Background(), "stale")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "token-1" {
		t.Errorf("expected token-1, got %q", tok)
	}

	// a second caller rejected by the old token must not fetch again
	tok, err = m.RefreshIfStale(context.Background(), "stale")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "token-1" {
		t.Errorf("expected token-1, got %q", tok)
	}
	if src.callCount.Load() != 1 {
		t.Errorf("expected 1 fetch, got %d", src.callCount.Load())
	}
}

func TestManager_RefreshIfStale_ConcurrentRejections(t *testing.T) {
	src := &mockSource{
		fetchFunc: func(ctx context.Context) (string, error) {
			time.Sleep(5 * time.Millisecond)
			return "fresh", nil
		},
	}
	m := NewManager(src, nil)
	m.Set("stale")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := m.RefreshIfStale(context.Background(), "stale")
			if err != nil {
				t.Errorf("refresh failed: %v", err)
				return
			}
			if tok != "fresh" {
				t.Errorf("expected fresh, got %q", tok)
			}
		}()
	}
	wg.Wait()

	if src.callCount.Load() != 1 {
		t.Errorf("expected 1 fetch for one rejected token, got %d", src.callCount.Load())
	}
}

func TestManager_RefreshIfStale_NoToken(t *testing.T) {
	src := &mockSource{}
	m := NewManager(src, nil)

	tok, err := m.RefreshIfStale(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "token-1" {
		t.Errorf("expected token-1, got %q", tok)
	}
}

func TestManager_FetchError(t *testing.T) {
	src := &mockSource{
		fetchFunc: func(ctx context.Context) (string, error) {
			return "", ErrTokenNotFound
		},
	}
	m := NewManager(src, nil)

	_, err := m.Current(context.Background())
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}

	// nothing was published, so the next call tries again
	_, _ = m.Current(context.Background())
	if src.callCount.Load() != 2 {
		t.Errorf("expected 2 fetches, got %d", src.callCount.Load())
	}
}

func TestManager_Refresh_ErrorKeepsOldToken(t *testing.T) {
	src := &mockSource{
		fetchFunc: func(ctx context.Context) (string, error) {
			return "", &TransportError{Op: "fetch token", Err: errors.New("connection refused")}
		},
	}
	m := NewManager(src, nil)
	m.Set("old")

	_, err := m.Refresh(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}

	tok, err := m.Current(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "old" {
		t.Errorf("expected old token to survive a failed refresh, got %q", tok)
	}
}

func TestManager_SetAndReset(t *testing.T) {
	src := &mockSource{}
	m := NewManager(src, nil)

	m.Set("seeded")
	tok, _ := m.Current(context.Background())
	if tok != "seeded" {
		t.Errorf("expected seeded, got %q", tok)
	}
	if src.callCount.Load() != 0 {
		t.Error("expected no fetch for a seeded token")
	}

	m.Reset()
	tok, _ = m.Current(context.Background())
	if tok != "token-1" {
		t.Errorf("expected token-1 after reset, got %q", tok)
	}
}

func TestManager_Current_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	src := &mockSource{
		fetchFunc: func(ctx context.Context) (string, error) {
			<-release
			return "late", nil
		},
	}
	m := NewManager(src, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Current(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestDefault(t *testing.T) {
	if Default() != Default() {
		t.Error("expected Default to return the same Manager")
	}
}
