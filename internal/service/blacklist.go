package service

import "sync"

// Blacklist is the process-wide revocation set for logged-out tokens. It is
// constructed once at startup and shared by reference; it holds exact token
// strings, never persists, and resets to empty on restart.
type Blacklist struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewBlacklist() *Blacklist {
	return &Blacklist{tokens: make(map[string]struct{})}
}

// Revoke adds the token to the set. Revoking an already-revoked token is a
// no-op.
func (b *Blacklist) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = struct{}{}
}

func (b *Blacklist) IsRevoked(token string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.tokens[token]
	return ok
}
