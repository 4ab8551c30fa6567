package credentials

import (
	"strings"
	"sync"
)

// Holder keeps the user's Gemini API key in process memory for the session.
// It is never persisted and never rendered by fmt.
type Holder struct {
	mu  sync.RWMutex
	key string
}

func NewHolder() *Holder {
	return &Holder{}
}

// Set stores the trimmed key and reports whether it is non-empty.
func (h *Holder) Set(key string) bool {
	key = strings.TrimSpace(key)
	h.mu.Lock()
	h.key = key
	h.mu.Unlock()
	return key != ""
}

// Get returns the stored key, or "" when none is set.
func (h *Holder) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.key
}

func (h *Holder) Present() bool {
	return h.Get() != ""
}

func (h *Holder) Clear() {
	h.mu.Lock()
	h.key = ""
	h.mu.Unlock()
}

// String redacts the key.
func (h *Holder) String() string {
	if !h.Present() {
		return "credential(unset)"
	}
	return "credential(redacted)"
}

// GoString keeps %#v from leaking the key.
func (h *Holder) GoString() string {
	return h.String()
}
