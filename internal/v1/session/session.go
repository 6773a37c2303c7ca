// Package session owns the WebSocket edge: one Session per connection, the
// Registry that tracks them, the heartbeat walk, and the origin check. It
// knows nothing about game modes; inbound frames are handed to a message
// handler the dispatcher installs at boot.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/metrics"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// wsConnection defines the interface for WebSocket connection operations.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetReadLimit(limit int64)
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
}

// maxMessageSize caps one inbound frame; larger frames kill the connection.
const maxMessageSize = 64 * 1024

// Profile is the optional public identity a session may publish.
type Profile struct {
	Name    string
	Icon    string
	Private bool
}

// Session represents a single player's connection. Liveness fields belong to
// the registry's heartbeat walk; everything else is connection plumbing.
type Session struct {
	registry *Registry
	conn     wsConnection

	mu           sync.RWMutex
	id           types.SessionIdType
	alive        bool
	lastActivity time.Time
	profile      Profile
	closed       bool
	closeReason  string

	closeOnce sync.Once
	send      chan []byte
}

// ID returns the session's current id. Reconnect adoption can rename a
// session, so callers must not cache this across handler invocations.
func (s *Session) ID() types.SessionIdType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *Session) setID(id types.SessionIdType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

// Profile returns the session's public profile.
func (s *Session) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetProfile replaces the session's public profile.
func (s *Session) SetProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// markAlive records heartbeat life. Any inbound traffic counts.
func (s *Session) markAlive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alive = true
	s.lastActivity = time.Now()
}

// sweepAlive clears the alive flag and reports the previous value plus how
// long the session has been silent. Called only by the heartbeat walk.
func (s *Session) sweepAlive() (wasAlive bool, silentFor time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasAlive = s.alive
	s.alive = false
	return wasAlive, time.Since(s.lastActivity)
}

// Disconnect closes the send channel exactly once; the write pump drains,
// sends a close frame, and the read pump unwinds from there.
func (s *Session) Disconnect(reason string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.closeReason = reason
	s.mu.Unlock()

	s.closeOnce.Do(func() { close(s.send) })
}

func (s *Session) disconnectReason() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closeReason != "" {
		return s.closeReason
	}
	return "disconnect"
}

// marshalFrame serializes an outbound frame once, so room-wide fan-out pays
// for encoding a single time.
func marshalFrame(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error(context.Background(), "Failed to marshal outbound frame", zap.Error(err))
	}
	return data, err
}

// Send marshals v once and queues it. Returns false if the session is closed
// or its buffer is full; sends are best-effort by contract.
func (s *Session) Send(v any) bool {
	data, err := marshalFrame(v)
	if err != nil {
		return false
	}
	return s.SendRaw(data)
}

// SendRaw queues pre-serialized bytes, dropping when closed or full.
func (s *Session) SendRaw(data []byte) bool {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return false
	}
	s.mu.RUnlock()

	// The channel can be closed between the check and the send.
	defer func() {
		if r := recover(); r != nil {
			logging.GetLogger().Debug("Dropped frame for closing session", zap.String("sessionId", string(s.ID())))
		}
	}()

	select {
	case s.send <- data:
		return true
	default:
		logging.Warn(context.Background(), "Session send buffer full - dropping frame",
			zap.String("sessionId", string(s.ID())))
		return false
	}
}

// readPump processes inbound frames until the connection dies, then reports
// the disconnect to the registry.
func (s *Session) readPump() {
	defer func() {
		s.Disconnect(s.disconnectReason())
		_ = s.conn.Close()
		s.registry.remove(s)
		metrics.DecConnection()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetPongHandler(func(string) error {
		// native WS pong counts the same as an application-level pong
		s.markAlive()
		return nil
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		s.markAlive()
		s.registry.dispatch(s, data)
	}
}

func (s *Session) writePump() {
	defer func() { _ = s.conn.Close() }()
	writeWait := 10 * time.Second

	for message := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logging.GetLogger().Debug("error writing message", zap.Error(err))
			return
		}
	}
	_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
