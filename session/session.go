// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/slotserver/logger"
	"github.com/wfunc/slotserver/network"
)

// Session 一个客户端连接，加入后绑定到一个玩家。
type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	playerID   string
	lastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
}

// Bind attaches this session to a player. A session binds at most once;
// a second bind is rejected.
func (s *Session) Bind(playerID string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.playerID != "" {
		return false
	}
	s.playerID = playerID
	return true
}

func (s *Session) PlayerID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.playerID
}

func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActive = time.Now()
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

func (s *Session) Send(frameType string, payload interface{}) error {
	return s.Conn.Send(frameType, payload)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager 已加入会话的集合（未加入的连接只由读循环持有）。
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// All returns a snapshot of the attached sessions.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Broadcast delivers one frame to every attached session except the one
// whose id matches exclude (empty string excludes nobody). Delivery is
// best-effort per session; a failed enqueue is logged and skipped.
// Returns the number of sessions the frame could not be queued for.
func (m *Manager) Broadcast(frameType string, payload interface{}, exclude string) int {
	dropped := 0
	for _, s := range m.All() {
		if s.ID == exclude {
			continue
		}
		if err := s.Send(frameType, payload); err != nil {
			logger.Log.Debugf("Dropped %s frame for session %s: %v", frameType, s.ID, err)
			dropped++
		}
	}
	return dropped
}
