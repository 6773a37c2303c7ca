package session

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/metrics"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// MessageHandler receives every inbound text frame after the session has
// been marked alive. The dispatcher installs itself here at boot.
type MessageHandler func(sid types.SessionIdType, raw []byte)

// DisconnectHandler fires exactly once when a session leaves the registry.
// Reason is "disconnect", "timeout", or "shutdown".
type DisconnectHandler func(sid types.SessionIdType, reason string)

// Registry owns every live WebSocket session: the upgrade path, the
// read/write pumps, the heartbeat walk, and best-effort fan-out. It is the
// sole owner of connection handles; room managers only ever see session ids.
type Registry struct {
	mu       sync.RWMutex
	sessions map[types.SessionIdType]*Session

	checker  *OriginChecker
	upgrader websocket.Upgrader

	heartbeatInterval time.Duration
	clientTimeout     time.Duration

	onMessage    MessageHandler
	onDisconnect DisconnectHandler

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRegistry builds a registry with the given origin allow-list and
// heartbeat timings. Handlers must be set before the first upgrade.
func NewRegistry(allowedOrigins string, heartbeatInterval, clientTimeout time.Duration) *Registry {
	checker := NewOriginChecker(allowedOrigins)
	r := &Registry{
		sessions:          make(map[types.SessionIdType]*Session),
		checker:           checker,
		heartbeatInterval: heartbeatInterval,
		clientTimeout:     clientTimeout,
		stop:              make(chan struct{}),
		done:              make(chan struct{}),
	}
	r.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     checker.Allowed,
	}
	return r
}

// SetHandlers installs the inbound frame and disconnect callbacks.
func (r *Registry) SetHandlers(onMessage MessageHandler, onDisconnect DisconnectHandler) {
	r.onMessage = onMessage
	r.onDisconnect = onDisconnect
}

// ServeWs upgrades an HTTP request, assigns a session id, greets the client
// with a connected frame, and starts the pumps.
func (r *Registry) ServeWs(c *gin.Context) {
	conn, err := r.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error (403 on origin rejection).
		logging.Warn(c.Request.Context(), "WebSocket upgrade failed", zap.Error(err))
		return
	}

	s := &Session{
		registry:     r,
		conn:         conn,
		id:           types.SessionIdType(NewSessionID()),
		alive:        true,
		lastActivity: time.Now(),
		send:         make(chan []byte, 256),
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	count := len(r.sessions)
	r.mu.Unlock()

	metrics.IncConnection()
	logging.Info(c.Request.Context(), "Session connected",
		zap.String("sessionId", string(s.id)),
		zap.Int("online", count))

	go s.writePump()
	go s.readPump()

	s.Send(protocol.NewConnected(s.id, time.Now().UnixMilli()))
	r.broadcastOnlineCount(count)
}

// dispatch hands an inbound frame to the installed message handler.
func (r *Registry) dispatch(s *Session, raw []byte) {
	if r.onMessage != nil {
		r.onMessage(s.ID(), raw)
	}
}

// remove drops a session after its read pump unwinds and raises the
// disconnect exactly once.
func (r *Registry) remove(s *Session) {
	sid := s.ID()

	r.mu.Lock()
	if _, ok := r.sessions[sid]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.sessions, sid)
	count := len(r.sessions)
	r.mu.Unlock()

	reason := s.disconnectReason()
	metrics.Disconnects.WithLabelValues(reason).Inc()
	logging.Info(context.Background(), "Session disconnected",
		zap.String("sessionId", string(sid)),
		zap.String("reason", reason),
		zap.Int("online", count))

	if r.onDisconnect != nil {
		r.onDisconnect(sid, reason)
	}
	r.broadcastOnlineCount(count)
}

// Send marshals v once and queues it for one session. Unknown or closed
// sessions are a no-op by contract.
func (r *Registry) Send(sid types.SessionIdType, v any) bool {
	r.mu.RLock()
	s, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return s.Send(v)
}

// SendRaw queues pre-serialized bytes for one session.
func (r *Registry) SendRaw(sid types.SessionIdType, data []byte) bool {
	r.mu.RLock()
	s, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return s.SendRaw(data)
}

// MarkAlive flips a session back to alive; the dispatcher calls this when an
// application-level pong arrives.
func (r *Registry) MarkAlive(sid types.SessionIdType) {
	r.mu.RLock()
	s, ok := r.sessions[sid]
	r.mu.RUnlock()
	if ok {
		s.markAlive()
	}
}

// SetSessionProfile publishes a session's public profile.
func (r *Registry) SetSessionProfile(sid types.SessionIdType, p Profile) {
	r.mu.RLock()
	s, ok := r.sessions[sid]
	r.mu.RUnlock()
	if ok {
		s.SetProfile(p)
	}
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ConnectionCount satisfies the health endpoint's stats source.
func (r *Registry) ConnectionCount() int { return r.Count() }

// snapshot returns the current sessions without holding the lock during
// fan-out.
func (r *Registry) snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// BroadcastAll serializes v once and queues it for every session.
func (r *Registry) BroadcastAll(v any) {
	sessions := r.snapshot()
	data, err := marshalFrame(v)
	if err != nil {
		return
	}
	for _, s := range sessions {
		s.SendRaw(data)
	}
}

// OnlineUsers lists the public profiles of sessions that opted in.
func (r *Registry) OnlineUsers() []protocol.PublicUser {
	sessions := r.snapshot()
	users := make([]protocol.PublicUser, 0, len(sessions))
	for _, s := range sessions {
		p := s.Profile()
		if p.Private || p.Name == "" {
			continue
		}
		users = append(users, protocol.PublicUser{SessionID: s.ID(), Name: p.Name, Icon: p.Icon})
	}
	return users
}

func (r *Registry) broadcastOnlineCount(count int) {
	r.BroadcastAll(protocol.NewOnlineCount(count))
}

// StartHeartbeat begins the liveness walk. Every interval a session that
// failed to answer the previous ping is terminated with reason "timeout";
// everyone else has their alive flag cleared and receives a fresh ping.
func (r *Registry) StartHeartbeat() {
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.sweep()
			}
		}
	}()
}

func (r *Registry) sweep() {
	for _, s := range r.snapshot() {
		wasAlive, silentFor := s.sweepAlive()
		if !wasAlive && silentFor >= r.clientTimeout {
			logging.Info(context.Background(), "Heartbeat timeout - terminating session",
				zap.String("sessionId", string(s.ID())),
				zap.Duration("silentFor", silentFor))
			s.Disconnect("timeout")
			continue
		}
		s.Send(protocol.NewPing(time.Now().UnixMilli()))
	}
}

// Shutdown broadcasts server_shutdown, closes every session with a normal
// closure, and stops the heartbeat. It returns once the heartbeat goroutine
// has exited or the context expires.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.BroadcastAll(protocol.NewServerShutdown("server shutting down"))

	for _, s := range r.snapshot() {
		s.Disconnect("shutdown")
	}

	r.stopOnce.Do(func() { close(r.stop) })
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
