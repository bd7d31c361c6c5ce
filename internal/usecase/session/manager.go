package session

import (
	"sync"

	"github.com/google/uuid"
)

// Manager tracks the live locker session of each authenticated user so
// logout can cancel whatever that session is doing.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	registry  Registry
	actuator  Actuator
	channelOf map[int]int
	events    EventSink
	broadcast Broadcaster
}

func NewManager(registry Registry, actuator Actuator, channelOf map[int]int, events EventSink, broadcast Broadcaster) *Manager {
	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		registry:  registry,
		actuator:  actuator,
		channelOf: channelOf,
		events:    events,
		broadcast: broadcast,
	}
}

// Open starts a session for the user, replacing any existing one. The
// replaced session is closed first, which waits out its in-flight
// actuation.
func (m *Manager) Open(userID uuid.UUID, username string) *Session {
	s := newSession(userID, username, m.registry, m.actuator, m.channelOf, m.events, m.broadcast)

	m.mu.Lock()
	old := m.sessions[userID]
	m.sessions[userID] = s
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}

	return s
}

func (m *Manager) Get(userID uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Close ends the user's session. It returns only after any in-flight
// actuation has released its channel.
func (m *Manager) Close(userID uuid.UUID) {
	m.mu.Lock()
	s := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if s != nil {
		s.Close()
	}
}

// CloseAll ends every session; used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
