// Package stream pushes practice session events to browsers over WebSocket.
package stream

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// ConnManager tracks the active WebSocket connection of each learner tab.
type ConnManager struct {
	mu     sync.RWMutex
	active map[string]map[string]*websocket.Conn
}

// NewConnManager creates a new connection manager.
func NewConnManager() *ConnManager {
	return &ConnManager{
		active: make(map[string]map[string]*websocket.Conn),
	}
}

// GetActive returns the active connection for a user and session.
func (m *ConnManager) GetActive(userID, sessionID string) *websocket.Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sessions, ok := m.active[userID]; ok {
		return sessions[sessionID]
	}
	return nil
}

// Count returns the number of registered connections.
func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, sessions := range m.active {
		n += len(sessions)
	}
	return n
}

// Register adds a connection for a user/session, closing any connection it replaces.
func (m *ConnManager) Register(userID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[userID]; !exists {
		m.active[userID] = make(map[string]*websocket.Conn)
	}

	if existing, exists := m.active[userID][sessionID]; exists && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "session replaced")
	}

	m.active[userID][sessionID] = conn
	slog.Info("Practice stream registered", "user_id", userID, "session_id", sessionID)
}

// Unregister removes a connection for a user/session if it is still the active one.
func (m *ConnManager) Unregister(userID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessions, ok := m.active[userID]; ok {
		if current, exists := sessions[sessionID]; exists && current == conn {
			delete(sessions, sessionID)
			if len(sessions) == 0 {
				delete(m.active, userID)
			}
			slog.Info("Practice stream unregistered", "user_id", userID, "session_id", sessionID)
		}
	}
}

// Close terminates the active connection of a user/session, if any, so the
// client reconnects to a fresh session.
func (m *ConnManager) Close(userID, sessionID string) {
	conn := m.GetActive(userID, sessionID)
	if conn == nil {
		return
	}
	_ = conn.Close(websocket.StatusNormalClosure, "session expired")
	m.Unregister(userID, sessionID, conn)
}

// CloseAll terminates every active connection, used on shutdown.
func (m *ConnManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, sessions := range m.active {
		for sid, conn := range sessions {
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			slog.Info("Practice stream closed", "user_id", userID, "session_id", sid)
		}
	}
	m.active = make(map[string]map[string]*websocket.Conn)
}
