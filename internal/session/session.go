package session

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxSessions bounds how many MCP sessions remember a current tenant.
const maxSessions = 4096

// Sessions holds the current tenant of each MCP session, keyed by session id.
// Transports without session ids (stdio, in-memory) share the "" key.
type Sessions struct {
	// mu orders writes against the ClearTenant sweep.
	mu      sync.Mutex
	current *lru.Cache[string, string]
}

// New creates an empty session table.
func New() *Sessions {
	c, err := lru.New[string, string](maxSessions)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Sessions{current: c}
}

// Switch makes tenantID the current tenant of the session.
func (s *Sessions) Switch(sessionID, tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Add(sessionID, tenantID)
}

// Current returns the session's current tenant, if one is set.
func (s *Sessions) Current(sessionID string) (string, bool) {
	return s.current.Get(sessionID)
}

// Clear forgets the session's current tenant.
func (s *Sessions) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Remove(sessionID)
}

// ClearTenant forgets tenantID in every session that has it selected, used
// when the tenant's store is deleted.
func (s *Sessions) ClearTenant(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.current.Keys() {
		if v, ok := s.current.Peek(k); ok && v == tenantID {
			s.current.Remove(k)
		}
	}
}
