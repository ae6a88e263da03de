package server

import "sync"

// presenceRegistry maps a userId to its single live relay channel. The last
// register call wins; a replaced channel is left open and only drops out of
// the registry when its own close fires.
type presenceRegistry struct {
	mu    sync.Mutex
	conns map[string]*wsConn
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{conns: make(map[string]*wsConn)}
}

func (r *presenceRegistry) register(userID string, conn *wsConn) {
	r.mu.Lock()
	r.conns[userID] = conn
	r.mu.Unlock()
}

func (r *presenceRegistry) lookup(userID string) (*wsConn, bool) {
	r.mu.Lock()
	conn, ok := r.conns[userID]
	r.mu.Unlock()
	return conn, ok
}

// unregister removes the binding only if it still points at conn. A stale
// close arriving after a rebind must not evict the newer connection.
func (r *presenceRegistry) unregister(userID string, conn *wsConn) {
	r.mu.Lock()
	if r.conns[userID] == conn {
		delete(r.conns, userID)
	}
	r.mu.Unlock()
}

func (r *presenceRegistry) closeAll() {
	r.mu.Lock()
	for _, conn := range r.conns {
		conn.close()
	}
	r.conns = make(map[string]*wsConn)
	r.mu.Unlock()
}
