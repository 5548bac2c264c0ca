// ABOUTME: Conversation state machine nodes and the per-phone session store
// ABOUTME: Mutated only by the conversational engine

package session

import (
	"sync"
	"time"

	"github.com/lmv-credia/cobranza-gateway/internal/agents"
)

// State is one node of the conversation state machine. The string values are
// the legacy names and appear in exports, keep them stable.
type State string

const (
	StateInitial      State = "inicial"
	StateMenu         State = "menu"
	StatePayOptions   State = "opciones_pago"
	StateArrangement  State = "convenio"
	StateExcuses      State = "excusas"
	StateWaitingAgent State = "esperando_gestor"
)

// Session is the conversational state for one phone.
type Session struct {
	Phone       string
	State       State
	Agent       *agents.Agent
	LastUpdated time.Time
}

// Store keeps one session per phone. Entries are never removed.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]Session), now: time.Now}
}

// Get returns the session for a phone, defaulting to the initial state for
// phones never seen before.
func (s *Store) Get(phone string) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[phone]; ok {
		return sess
	}
	return Session{Phone: phone, State: StateInitial}
}

// Set moves a phone to the given state, dropping any assigned agent.
func (s *Store) Set(phone string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[phone] = Session{Phone: phone, State: state, LastUpdated: s.now()}
}

// SetWithAgent moves a phone to the given state with a collector attached.
func (s *Store) SetWithAgent(phone string, state State, agent agents.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[phone] = Session{Phone: phone, State: state, Agent: &agent, LastUpdated: s.now()}
}

// Len returns the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// All returns a copy of every active session.
func (s *Store) All() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}
