package taskmanager

import "sync"

// SharedContext carries values produced by one task to the ones after it.
type SharedContext struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

// NewSharedContext creates a new SharedContext.
func NewSharedContext() *SharedContext {
	return &SharedContext{
		data: make(map[string]interface{}),
	}
}

// Set adds or updates a value in the context.
func (sc *SharedContext) Set(key string, value interface{}) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.data[key] = value
}

// Get retrieves a value from the context.
func (sc *SharedContext) Get(key string) (interface{}, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	val, ok := sc.data[key]
	return val, ok
}

// GetString returns the value for key if it is a string.
func (sc *SharedContext) GetString(key string) (string, bool) {
	val, ok := sc.Get(key)
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}
