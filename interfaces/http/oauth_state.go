package http

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// oauthStates tracks the state values issued to OAuth authorize URLs so the
// callback can be tied back to a request we started. States are single-use
// and expire after ttl.
type oauthStates struct {
	mu     sync.Mutex
	ttl    time.Duration
	states map[string]time.Time // state -> expiry
	now    func() time.Time
}

func newOAuthStates() *oauthStates {
	return &oauthStates{ttl: 10 * time.Minute, states: map[string]time.Time{}, now: time.Now}
}

func (s *oauthStates) issue() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state := hex.EncodeToString(b)
	s.mu.Lock()
	s.states[state] = s.now().Add(s.ttl)
	s.mu.Unlock()
	return state
}

func (s *oauthStates) consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.states[state]
	if ok && s.now().After(exp) {
		ok = false
	}
	if ok {
		delete(s.states, state)
	}
	return ok
}
