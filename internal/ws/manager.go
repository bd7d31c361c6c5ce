package ws

import (
	"encoding/json"
	"sync"

	domainLocker "smart-locker/internal/domain/locker"
	"smart-locker/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Manager keeps track of connected dashboard clients and pushes them
// the occupancy ledger after every transition.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

func NewManager() *Manager {
	return &Manager{connections: make(map[string]*websocket.Conn)}
}

// Register adds a client connection and returns its ID.
func (m *Manager) Register(conn *websocket.Conn) string {
	id := uuid.New().String()
	m.mu.Lock()
	m.connections[id] = conn
	m.mu.Unlock()
	return id
}

// Unregister removes and closes a client connection.
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conn, ok := m.connections[id]; ok {
		_ = conn.Close()
		delete(m.connections, id)
	}
}

// BroadcastState sends the ledger to every connected client. Clients
// whose write fails are dropped.
func (m *Manager) BroadcastState(states []domainLocker.State) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":    "locker_state",
		"lockers": states,
	})
	if err != nil {
		logger.Error("Failed to marshal locker state", zap.Error(err))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conn := range m.connections {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Warn("Dropping dashboard client",
				zap.String("client_id", id),
				zap.Error(err),
			)
			_ = conn.Close()
			delete(m.connections, id)
		}
	}
}

// Count returns the number of connected clients.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}
