package match

import "sync/atomic"

// Handle is a swappable reference to the current engine. The read path is a
// single atomic load, so request handlers never contend with a corpus reload:
// reloading builds a fresh corpus and engine off to the side, then Swap
// publishes it. In-flight calls keep using the engine they loaded.
type Handle struct {
	current atomic.Pointer[Engine]
}

// NewHandle wraps an initial engine.
func NewHandle(e *Engine) *Handle {
	h := &Handle{}
	h.current.Store(e)
	return h
}

// Get returns the current engine.
func (h *Handle) Get() *Engine {
	return h.current.Load()
}

// Swap atomically replaces the current engine and returns the previous one.
func (h *Handle) Swap(e *Engine) *Engine {
	return h.current.Swap(e)
}
