package session

import "sync"

// lockedConn serializes writes to one socket. The websocket library permits
// at most one concurrent writer per connection, and two goroutines write to
// the same socket: the read loop (error frames) and the result subscriber
// (terminal payloads).
type lockedConn struct {
	mu    sync.Mutex
	inner Conn
}

// WrapConn makes a connection safe for concurrent WriteJSON calls. Every
// socket handed to the manager must go through this.
func WrapConn(inner Conn) Conn {
	return &lockedConn{inner: inner}
}

func (c *lockedConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.WriteJSON(v)
}

func (c *lockedConn) Close() error {
	return c.inner.Close()
}
