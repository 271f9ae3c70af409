package ws

import "sync"

type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// Session binds one transport connection to its room membership. The
// registry is shared by every connection goroutine, so access goes
// through the mutex; nothing here is persisted.
type Session struct {
	ConnID   string
	Room     string
	PlayerID string
	Role     Role
}

type Sessions struct {
	mu   sync.Mutex
	byID map[string]Session
}

func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string]Session)}
}

func (s *Sessions) Register(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[sess.ConnID] = sess
}

func (s *Sessions) Unregister(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, connID)
}

func (s *Sessions) Get(connID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[connID]
	return sess, ok
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
