package goGate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestConcurrentAdmitNeverExceedsLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Limit = 5
	cfg.RateLimit.Window = time.Minute
	gateway, _ := newTestGateway(t, cfg, nil, nil)

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := gateway.Admit(context.Background(), "alice")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	allowed := 0
	denied := 0
	for err := range results {
		switch {
		case err == nil:
			allowed++
		case errors.Is(err, ErrRateLimited):
			denied++
		default:
			t.Fatalf("unexpected admit error: %v", err)
		}
	}

	if allowed != 5 {
		t.Fatalf("allowed = %d, want exactly 5", allowed)
	}
	if denied != n-5 {
		t.Fatalf("denied = %d, want %d", denied, n-5)
	}
}

func TestConcurrentAuthenticate(t *testing.T) {
	gateway, _ := newTestGateway(t, testConfig(), nil, nil)

	token, _, err := gateway.Login(context.Background(), "alice", "s")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)

	var failures atomic.Int64
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			principal, err := gateway.Authenticate(context.Background(), token)
			if err != nil || principal.ID != "alice" {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d concurrent authentications failed", failures.Load())
	}
	if got := gateway.Metrics().Value(MetricAuthSuccess); got != n {
		t.Fatalf("auth success metric = %d, want %d", got, n)
	}
}

func TestConcurrentDoSameKey(t *testing.T) {
	gateway, _ := newTestGateway(t, testConfig(), nil, nil)

	var fetches atomic.Int64
	fetcher := FetcherFunc(func(context.Context, Principal, string) ([]byte, error) {
		fetches.Add(1)
		return []byte("v"), nil
	})

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			value, err := gateway.Do(context.Background(), Principal{ID: "a"}, "meter:1:unit", 0, 0, fetcher)
			if err != nil {
				t.Errorf("do: %v", err)
				return
			}
			if string(value) != "v" {
				t.Errorf("value = %q", value)
			}
		}()
	}
	wg.Wait()

	// Cache-aside without request coalescing: concurrent misses may each
	// fetch, but every caller must get the value and later reads must hit.
	if fetches.Load() < 1 || fetches.Load() > n {
		t.Fatalf("fetch count = %d", fetches.Load())
	}

	before := fetches.Load()
	if _, err := gateway.Do(context.Background(), Principal{ID: "a"}, "meter:1:unit", 0, 0, fetcher); err != nil {
		t.Fatalf("do: %v", err)
	}
	if fetches.Load() != before {
		t.Fatal("settled key should be served from cache")
	}
}

func TestConcurrentMixedOperations(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = true
	gateway, _ := newTestGateway(t, cfg, nil, &countingSink{})

	token, _, err := gateway.Login(context.Background(), "alice", "s")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	fetcher := FetcherFunc(func(_ context.Context, _ Principal, key string) ([]byte, error) {
		return []byte(key), nil
	})

	const n = 8
	var wg sync.WaitGroup
	wg.Add(4 * n)

	for i := 0; i < n; i++ {
		id := i
		go func() {
			defer wg.Done()
			if _, err := gateway.Authenticate(context.Background(), token); err != nil {
				t.Errorf("authenticate: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := gateway.Admit(context.Background(), fmt.Sprintf("p-%d", id)); err != nil {
				t.Errorf("admit: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("meter:%d:unit", id)
			if _, err := gateway.Do(context.Background(), Principal{ID: "a"}, key, 0, 0, fetcher); err != nil {
				t.Errorf("do: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := gateway.Invalidate(context.Background(), fmt.Sprintf("meter:%d:*", id)); err != nil {
				t.Errorf("invalidate: %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := gateway.StatsSnapshot(context.Background()); err != nil {
		t.Fatalf("stats after mixed load: %v", err)
	}
}
