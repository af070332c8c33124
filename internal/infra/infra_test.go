package infra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ── Cache ──

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Second)
	c.Set("key1", "value1")
	v, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v != "value1" {
		t.Fatalf("got %v, want value1", v)
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewCache(time.Second)
	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.SetClock(func() time.Time { return now })
	c.Set("key", "val")

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("key"); !ok {
		t.Fatal("expected hit before TTL")
	}
	now = now.Add(2 * time.Second)
	if _, ok := c.Get("key"); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	c := NewCache(0)
	c.SetClock(func() time.Time { return now })
	c.Set("key", "val")
	now = now.Add(1000 * time.Hour)
	if _, ok := c.Get("key"); !ok {
		t.Fatal("expected session-scoped entry to survive")
	}
}

func TestCacheInvalidateAndFlush(t *testing.T) {
	c := NewCache(time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected cache miss after invalidation")
	}
	c.Flush()
	if c.Len() != 0 {
		t.Fatalf("Len after Flush = %d, want 0", c.Len())
	}
}

func TestCacheCleanup(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.SetClock(func() time.Time { return now })
	c.Set("expired", "val")
	now = now.Add(2 * time.Minute)
	c.Set("fresh", "val2")

	if removed := c.Cleanup(); removed != 1 {
		t.Errorf("Cleanup removed %d, want 1", removed)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Fatal("expected fresh entry to survive cleanup")
	}
}

func TestCacheBoundedEvictsOldest(t *testing.T) {
	c := NewBoundedCache(time.Hour, 2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected oldest entry a to be evicted")
	}
	for _, k := range []string{"b", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to remain", k)
		}
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestCacheBoundedPrefersExpired(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	c := NewBoundedCache(time.Hour, 2)
	c.SetClock(func() time.Time { return now })
	c.Set("old", 1)
	c.SetWithTTL("short", 2, time.Second)
	now = now.Add(time.Minute)
	c.Set("new", 3)

	if _, ok := c.Get("old"); !ok {
		t.Error("expected live entry to survive when an expired one can go")
	}
}

func TestCacheAddIsWriteOnce(t *testing.T) {
	c := NewCache(time.Hour)
	if _, stored := c.Add("k", "first"); !stored {
		t.Fatal("expected first Add to store")
	}
	v, stored := c.Add("k", "second")
	if stored {
		t.Error("expected second Add to be ignored")
	}
	if v != "first" {
		t.Errorf("Add returned %v, want first", v)
	}
}

func TestCacheGetOrLoad(t *testing.T) {
	c := NewCache(time.Hour)
	calls := 0
	load := func() (any, error) {
		calls++
		return "payload", nil
	}

	v, cached, err := c.GetOrLoad("k", load)
	if err != nil || cached || v != "payload" {
		t.Fatalf("first load = (%v, %v, %v)", v, cached, err)
	}
	v, cached, err = c.GetOrLoad("k", load)
	if err != nil || !cached || v != "payload" {
		t.Fatalf("second load = (%v, %v, %v)", v, cached, err)
	}
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}
}

func TestCacheGetOrLoadErrorNotCached(t *testing.T) {
	c := NewCache(time.Hour)
	boom := errors.New("boom")
	if _, _, err := c.GetOrLoad("k", func() (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Error("failed load must not be cached")
	}
}

func TestCacheGetOrLoadCollapsesConcurrentCalls(t *testing.T) {
	c := NewCache(time.Hour)
	var calls int32
	release := make(chan struct{})
	load := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, _, err := c.GetOrLoad("k", load); err != nil || v != 42 {
				t.Errorf("GetOrLoad = (%v, %v)", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("load called %d times, want 1", n)
	}
}

// ── Rate limiter ──

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(3, time.Second)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait() #%d failed: %v", i, err)
		}
	}
}

func TestRateLimiterCancelledContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestRateLimiterRefillsPerWindow(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	now := start
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }
	rl.windowStart = start

	if rl.reserve() != 0 || rl.reserve() != 0 {
		t.Fatal("burst of 2 should pass")
	}
	if d := rl.reserve(); d != time.Second {
		t.Errorf("third call waits %v, want 1s", d)
	}
	now = start.Add(2500 * time.Millisecond)
	if d := rl.reserve(); d != 0 {
		t.Errorf("after refill wait = %v", d)
	}
	if !rl.windowStart.Equal(start.Add(2 * time.Second)) {
		t.Errorf("window start = %v", rl.windowStart)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() #%d failed: %v", i, err)
		}
	}
}

// ── HTTP client ──

func fastClient(retries int) *HTTPClient {
	return NewHTTPClient(HTTPOptions{
		Timeout:         time.Second,
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}, nil)
}

func TestHTTPClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept header = %q", r.Header.Get("Accept"))
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "stockdash") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	body, err := fastClient(0).Get(context.Background(), srv.URL, map[string]string{"Accept": "application/json"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestHTTPClientRetriesTemporaryFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	body, err := fastClient(3).Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "ok" || atomic.LoadInt32(&hits) != 3 {
		t.Errorf("body=%s hits=%d", body, hits)
	}
}

func TestHTTPClientDoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := fastClient(3).Get(context.Background(), srv.URL, nil)
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected *HTTPError, got %T %v", err, err)
	}
	if herr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", herr.StatusCode)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}

func TestHTTPClientGivesUpAfterMaxRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := fastClient(2).Get(context.Background(), srv.URL, nil)
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 HTTPError, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Errorf("hits = %d, want 3", hits)
	}
}

func TestHTTPClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPOptions{Timeout: 20 * time.Millisecond}, nil)
	if _, err := c.Get(context.Background(), srv.URL, nil); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestHTTPErrorMessage(t *testing.T) {
	e := &HTTPError{StatusCode: 404, Status: "404 Not Found", Body: "page not found"}
	if e.Error() != "HTTP 404: 404 Not Found: page not found" {
		t.Fatalf("unexpected error message: %s", e.Error())
	}
}

func TestRedactURL(t *testing.T) {
	got := RedactURL("https://example.com/api/v3/stock_market/losers?apikey=secret123")
	if strings.Contains(got, "secret123") {
		t.Errorf("key leaked: %s", got)
	}
	if RedactURL("https://example.com/x?symbol=AAPL") != "https://example.com/x?symbol=AAPL" {
		t.Error("URL without secrets should be unchanged")
	}
}

// ── Logger ──

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		l, err := NewLogger("debug", format)
		if err != nil {
			t.Fatalf("NewLogger(%s): %v", format, err)
		}
		if !l.Core().Enabled(-1) { // debug
			t.Errorf("%s logger should enable debug", format)
		}
	}
}
