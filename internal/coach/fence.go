package coach

import (
	"sync"
)

// requestFence serializes chat requests per session and hands out monotonic
// tokens. While a request is in flight, further sends for the same session
// are rejected; and if a request somehow resolves after a newer one was
// issued, its token no longer matches and its transcript write is discarded.
type requestFence struct {
	mu     sync.Mutex
	latest map[string]uint64
	active map[string]bool
}

func newRequestFence() *requestFence {
	return &requestFence{
		latest: make(map[string]uint64),
		active: make(map[string]bool),
	}
}

// Begin claims the session for a new request. It returns false if another
// request is already in flight.
func (f *requestFence) Begin(key string) (uint64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.active[key] {
		return 0, false
	}
	f.latest[key]++
	f.active[key] = true
	return f.latest[key], true
}

// End releases the session and reports whether the finishing request is
// still the latest one (i.e. its result may be persisted).
func (f *requestFence) End(key string, token uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.active, key)
	return f.latest[key] == token
}
