package chat

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeDeadline = 5 * time.Second

// WsConn is one live websocket with its identity. Writes are serialized
// through the per-connection mutex; gorilla allows at most one concurrent
// writer.
type WsConn struct {
	ConnID string
	UserID string

	Conn   *websocket.Conn
	Remote net.Addr

	CreatedAt time.Time

	writeMu sync.Mutex
}

// WriteFrame encodes and sends one event frame. Errors are returned but
// callers treat delivery as best-effort.
func (w *WsConn) WriteFrame(event string, data any) error {
	raw, err := EncodeFrameJSON(event, data)
	if err != nil {
		return err
	}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if err := w.Conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return err
	}
	return w.Conn.WriteMessage(websocket.TextMessage, raw)
}

// ConnManager owns every live connection of this gateway node, keyed by
// connection id. It is the audience for broadcasts; who is addressable
// per user is the Registry's business, not the manager's.
type ConnManager struct {
	mu   sync.RWMutex
	byID map[string]*WsConn
}

func NewConnManager() *ConnManager {
	return &ConnManager{byID: make(map[string]*WsConn)}
}

func (m *ConnManager) Add(connID, userID string, conn *websocket.Conn) *WsConn {
	w := &WsConn{
		ConnID:    connID,
		UserID:    userID,
		Conn:      conn,
		Remote:    conn.RemoteAddr(),
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.byID[connID] = w
	m.mu.Unlock()
	return w
}

func (m *ConnManager) Get(connID string) (*WsConn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.byID[connID]
	return w, ok
}

func (m *ConnManager) Remove(connID string) {
	m.mu.Lock()
	delete(m.byID, connID)
	m.mu.Unlock()
}

// Snapshot returns the current connections; safe to iterate without the
// lock held.
func (m *ConnManager) Snapshot() []*WsConn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*WsConn, 0, len(m.byID))
	for _, w := range m.byID {
		out = append(out, w)
	}
	return out
}

func (m *ConnManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Close tears down every connection, for shutdown.
func (m *ConnManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, w := range m.byID {
		closeQuiet(w.Conn)
		delete(m.byID, id)
	}
}

func closeQuiet(c *websocket.Conn) {
	if c != nil {
		_ = c.Close()
	}
}
