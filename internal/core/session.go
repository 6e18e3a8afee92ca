package core

import "sync"

// Session is one live voice-client connection.
type Session struct {
	ID       string // clid
	StableID string // client unique identifier
	Nickname string
}

// SessionCache maps transient session ids to stable client identities.
// At most one live session id points to a given identity: a reconnect under
// a new session id evicts every prior mapping to that identity.
type SessionCache struct {
	mu        sync.RWMutex
	bySession map[string]string
}

// NewSessionCache constructs an empty cache.
func NewSessionCache() *SessionCache {
	return &SessionCache{bySession: make(map[string]string)}
}

// RecordConnect registers a session for an identity, evicting stale sessions
// of the same identity first (latest-session-wins).
func (c *SessionCache) RecordConnect(sessionID, stableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for sid, uid := range c.bySession {
		if uid == stableID {
			delete(c.bySession, sid)
		}
	}
	c.bySession[sessionID] = stableID
}

// Lookup returns the stable identity recorded for a session id.
func (c *SessionCache) Lookup(sessionID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	uid, ok := c.bySession[sessionID]
	return uid, ok
}

// Evict removes a single session entry. Only called when disconnect
// eviction is enabled; by default stale entries persist until the same
// identity reconnects.
func (c *SessionCache) Evict(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bySession, sessionID)
}

// Len reports the number of live entries.
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bySession)
}

// Clear drops all entries.
func (c *SessionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bySession = make(map[string]string)
}
