// Package history keeps per-session conversation turns for prompt
// context. Sessions are ephemeral, capped, and never shared.
package history

import (
	"strings"
	"sync"
)

const (
	// maxTurns is the per-session retention cap; older turns are
	// evicted first.
	maxTurns = 10
	// promptTurns is how many recent turns are rendered into prompts.
	promptTurns = 5
)

// Turn is one completed question/answer exchange. Turns are appended
// only after a fully successful pipeline run.
type Turn struct {
	Question  string
	Narrative string
	Query     string
}

// Store holds session histories behind a single-writer-per-key
// discipline: mutations on one session serialize, different sessions
// never contend past the map lookup.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex
	turns []Turn
}

// NewStore creates an empty history store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*session)}
}

func (s *Store) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

// Append records a successful turn, evicting the oldest beyond the cap.
func (s *Store) Append(id string, turn Turn) {
	sess := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns, turn)
	if len(sess.turns) > maxTurns {
		sess.turns = sess.turns[len(sess.turns)-maxTurns:]
	}
}

// Turns returns a copy of the session's retained turns, oldest first.
func (s *Store) Turns(id string) []Turn {
	sess := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := make([]Turn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// Reset drops a session's history entirely.
func (s *Store) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Render formats the most recent turns for inclusion in a prompt:
// at most five, oldest first, alternating question/answer lines.
func (s *Store) Render(id string) string {
	turns := s.Turns(id)
	if len(turns) == 0 {
		return "None"
	}
	if len(turns) > promptTurns {
		turns = turns[len(turns)-promptTurns:]
	}

	blocks := make([]string, len(turns))
	for i, t := range turns {
		blocks[i] = "User: " + t.Question + "\nAgent: " + t.Narrative
	}
	return strings.Join(blocks, "\n---\n")
}
