package coach

import (
	"testing"
	"time"
)

func TestRequestFenceSerializesSessions(t *testing.T) {
	t.Parallel()

	f := newRequestFence()

	tok, ok := f.Begin("u:s")
	if !ok {
		t.Fatal("first Begin() rejected")
	}
	if _, ok := f.Begin("u:s"); ok {
		t.Error("second Begin() on the same session must be rejected")
	}
	// Other sessions are unaffected.
	if _, ok := f.Begin("u:other"); !ok {
		t.Error("Begin() on a different session rejected")
	}

	if !f.End("u:s", tok) {
		t.Error("End() with the current token must allow persistence")
	}
	if _, ok := f.Begin("u:s"); !ok {
		t.Error("Begin() after End() rejected")
	}
}

func TestRequestFenceStaleToken(t *testing.T) {
	t.Parallel()

	f := newRequestFence()

	tok1, _ := f.Begin("u:s")
	f.End("u:s", tok1)
	tok2, _ := f.Begin("u:s")

	if f.End("u:s", tok1) {
		t.Error("stale token must not allow persistence")
	}
	if !f.End("u:s", tok2) {
		t.Error("current token must allow persistence")
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, 50*time.Millisecond)

	if !rl.Allow("u") || !rl.Allow("u") {
		t.Fatal("requests within the limit rejected")
	}
	if rl.Allow("u") {
		t.Error("request over the limit allowed")
	}
	// Another user has an independent window.
	if !rl.Allow("v") {
		t.Error("independent user throttled")
	}
}
