package ws

import (
	"sync"
	"time"

	"portal-notification-service/internal/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Payload is the minimal notification view pushed to live inbox clients.
type Payload struct {
	ID        int64                  `json:"id"`
	EventKind string                 `json:"event_kind"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Severity  string                 `json:"severity,omitempty"`
	ActionURL string                 `json:"action_url,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Connection wraps websocket.Conn with metadata.
type Connection struct {
	Conn     *websocket.Conn
	UserID   string
	LastSeen time.Time

	mu sync.Mutex // serializes writes per connection
}

type Manager struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{} // userID -> set of connections
	log         *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string]map[*Connection]struct{}),
		log:         log,
	}
}

// Add registers a connection for a user.
func (m *Manager) Add(userID string, conn *websocket.Conn) *Connection {
	c := &Connection{Conn: conn, UserID: userID, LastSeen: time.Now()}

	m.mu.Lock()
	if _, ok := m.connections[userID]; !ok {
		m.connections[userID] = make(map[*Connection]struct{})
	}
	m.connections[userID][c] = struct{}{}
	total := len(m.connections[userID])
	m.mu.Unlock()

	m.log.Info("ws connected", zap.String("user_id", userID), zap.Int("total", total))
	return c
}

// Remove disconnects and removes a connection.
func (m *Manager) Remove(c *Connection) {
	m.mu.Lock()
	if conns, ok := m.connections[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(m.connections, c.UserID)
		}
	}
	m.mu.Unlock()

	_ = c.Conn.Close()
	m.log.Info("ws disconnected", zap.String("user_id", c.UserID))
}

// Publish pushes a freshly written notification to all of the user's live
// connections. Best-effort: a dead connection is dropped, nothing else.
func (m *Manager) Publish(userID string, n *domain.Notification) {
	payload := Payload{
		ID:        n.ID,
		EventKind: n.EventKind,
		Title:     n.Title,
		Body:      n.Body,
		Severity:  n.Severity,
		ActionURL: n.ActionURL,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if conns, ok := m.connections[userID]; ok {
		for c := range conns {
			c.mu.Lock()
			err := c.Conn.WriteJSON(payload)
			c.mu.Unlock()
			if err != nil {
				m.log.Warn("ws push failed", zap.String("user_id", userID), zap.Error(err))
				go m.Remove(c)
			}
		}
	}
}

// Heartbeat pings all connections periodically and reaps stale ones.
func (m *Manager) Heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	for range ticker.C {
		m.mu.RLock()
		for _, conns := range m.connections {
			for c := range conns {
				if time.Since(c.LastSeen) > 2*interval {
					go m.Remove(c)
					continue
				}
				c.mu.Lock()
				_ = c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
				c.mu.Unlock()
			}
		}
		m.mu.RUnlock()
	}
}
