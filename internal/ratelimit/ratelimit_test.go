package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

var epoch = time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)

func newTestLimiter(rate int, window time.Duration) (*Limiter, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(epoch)
	return New(rate, window, clock), clock
}

func TestAllowBasic(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if l.Allow("10.0.0.1") {
		t.Fatal("4th request should be denied")
	}
}

func TestAllowDifferentKeys(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	if !l.Allow("a") {
		t.Fatal("first request for key 'a' should be allowed")
	}
	if l.Allow("a") {
		t.Fatal("second request for key 'a' should be denied")
	}
	if !l.Allow("b") {
		t.Fatal("first request for key 'b' should be allowed")
	}
}

func TestTokenRefill(t *testing.T) {
	// 60 tokens per minute = 1 token per second.
	l, clock := newTestLimiter(60, time.Minute)

	for i := 0; i < 60; i++ {
		l.Allow("k")
	}
	if l.Allow("k") {
		t.Fatal("should be denied after exhausting tokens")
	}

	clock.Advance(time.Second)
	if !l.Allow("k") {
		t.Fatal("should be allowed after 1 second refill")
	}
	if l.Allow("k") {
		t.Fatal("should be denied again after consuming refilled token")
	}

	clock.Advance(5 * time.Second)
	for i := 0; i < 5; i++ {
		if !l.Allow("k") {
			t.Fatalf("request %d should be allowed after 5s refill", i+1)
		}
	}
	if l.Allow("k") {
		t.Fatal("should be denied after consuming 5 refilled tokens")
	}
}

func TestTokenRefillCap(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute)

	l.Allow("k")
	l.Allow("k")

	clock.Advance(10 * time.Minute)

	_, remaining, _ := l.Status("k")
	if remaining != 5 {
		t.Fatalf("remaining should cap at 5, got %d", remaining)
	}
}

func TestConcurrentAccess(t *testing.T) {
	l, _ := newTestLimiter(100, time.Minute)

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Allow("concurrent")
		}()
	}

	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}

	if count != 100 {
		t.Fatalf("expected exactly 100 allowed, got %d", count)
	}
}

func TestStatus(t *testing.T) {
	l, clock := newTestLimiter(10, time.Minute)

	limit, remaining, resetAt := l.Status("s")
	if limit != 10 || remaining != 10 {
		t.Fatalf("fresh bucket: got limit %d remaining %d, want 10/10", limit, remaining)
	}
	if !resetAt.Equal(clock.Now()) {
		t.Fatalf("full bucket resetAt should equal now, got diff %v", resetAt.Sub(clock.Now()))
	}

	l.Allow("s")
	l.Allow("s")
	l.Allow("s")

	_, remaining, resetAt = l.Status("s")
	if remaining != 7 {
		t.Fatalf("expected remaining 7, got %d", remaining)
	}
	// 3 tokens at 10/min is 18 seconds.
	if d := resetAt.Sub(clock.Now()); d < 18*time.Second-time.Millisecond || d > 18*time.Second+time.Millisecond {
		t.Fatalf("resetAt in %v, want 18s", d)
	}
}

func TestSweep(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)

	l.Allow("idle")
	l.Allow("busy")
	l.Allow("busy")
	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}

	// 30s refills one token: "idle" is full again, "busy" is not.
	clock.Advance(30 * time.Second)
	if dropped := l.Sweep(); dropped != 1 {
		t.Fatalf("Sweep dropped %d, want 1", dropped)
	}
	if l.Len() != 1 {
		t.Fatalf("Len after sweep = %d, want 1", l.Len())
	}

	clock.Advance(time.Minute)
	l.Sweep()
	if l.Len() != 0 {
		t.Fatalf("Len after second sweep = %d, want 0", l.Len())
	}
}

// --- middleware ---

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(2, time.Minute)
	rejected := 0
	h := Middleware(l, func(r *http.Request) string { return r.RemoteAddr }, func() { rejected++ })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	tests := []struct {
		name          string
		addr          string
		wantStatus    int
		wantRemaining string
	}{
		{"first request", "10.0.0.1", http.StatusNoContent, "2"},
		{"second request", "10.0.0.1", http.StatusNoContent, "1"},
		{"over quota", "10.0.0.1", http.StatusTooManyRequests, "0"},
		{"other client", "10.0.0.2", http.StatusNoContent, "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(tt.addr)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("X-RateLimit-Remaining"); got != tt.wantRemaining {
				t.Errorf("X-RateLimit-Remaining = %q, want %q", got, tt.wantRemaining)
			}
			if got := rec.Header().Get("X-RateLimit-Limit"); got != "2" {
				t.Errorf("X-RateLimit-Limit = %q, want 2", got)
			}
		})
	}

	if rejected != 1 {
		t.Fatalf("onReject called %d times, want 1", rejected)
	}
}
