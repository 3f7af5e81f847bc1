package chat

import "sync"

// Registry is the authoritative record of which users are currently
// reachable and through which connection. The gateway is the only writer;
// application code reads it through the gateway's emit operations.
//
// The value is a single connection id per user: a later registration for
// the same user silently overwrites the earlier one, so only the newest
// tab/device receives targeted events. Known limitation, kept on purpose.
type Registry interface {
	Register(userID, connID string)
	Unregister(userID string)
	Lookup(userID string) (connID string, ok bool)
	ListOnline() []string
}

// MemoryRegistry is the single-node, in-process registry. Process restart
// clears it; clients are expected to reconnect.
type MemoryRegistry struct {
	mu    sync.RWMutex
	slots map[string]string // userID -> connID
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{slots: make(map[string]string)}
}

func (r *MemoryRegistry) Register(userID, connID string) {
	if userID == "" || connID == "" {
		return
	}
	r.mu.Lock()
	r.slots[userID] = connID
	r.mu.Unlock()
}

func (r *MemoryRegistry) Unregister(userID string) {
	r.mu.Lock()
	delete(r.slots, userID)
	r.mu.Unlock()
}

func (r *MemoryRegistry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.slots[userID]
	return connID, ok
}

// ListOnline returns a snapshot of registered user ids in unspecified
// order. Never nil, so it serializes as [] rather than null.
func (r *MemoryRegistry) ListOnline() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.slots))
	for userID := range r.slots {
		out = append(out, userID)
	}
	return out
}
