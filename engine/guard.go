package engine

import "sync"

// runtimeGuard is the scope token for entering the embedded runtime. The
// guest module instance is not safe for concurrent use from multiple native
// threads, so every call into it happens inside an acquisition. The state
// mutex protects Engine fields; the guard protects the runtime entry itself.
type runtimeGuard struct {
	mu sync.Mutex
}

// Acquire takes the token and returns its release. The release is safe to
// call exactly once per acquisition; the sync.Once keeps a doubled deferred
// call from unlocking someone else's acquisition.
func (g *runtimeGuard) Acquire() (release func()) {
	g.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(g.mu.Unlock)
	}
}
