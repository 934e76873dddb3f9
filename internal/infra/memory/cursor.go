package memory

import (
	"context"
	"sync"
)

// Cursor is a process-local round-robin counter. It does not survive restarts;
// production uses the Redis cursor.
type Cursor struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewCursor() *Cursor {
	return &Cursor{values: make(map[string]int64)}
}

func (c *Cursor) Next(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key]++
	return c.values[key], nil
}
