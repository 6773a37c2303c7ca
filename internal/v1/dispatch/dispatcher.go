// Package dispatch routes parsed client frames to the room manager that owns
// their tag prefix. It also terminates the protocol-level control messages
// (ping/pong, reconnect) that no single mode owns.
package dispatch

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/game"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/metrics"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/ratelimit"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/reconnect"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Manager is the surface every mode's room manager exposes to the router.
type Manager interface {
	// Handle processes one frame; false means the tag is not recognized by
	// this manager.
	Handle(ctx context.Context, sid types.SessionIdType, tag string, raw []byte) bool
	// HandleDisconnect marks the session's player disconnected and starts
	// the grace timer. Sessions not seated in this manager are a no-op.
	HandleDisconnect(sid types.SessionIdType)
	// TransferPlayer moves the seat owned by oldSID under newSID and sends
	// the reconnected snapshot; false when the seat is gone.
	TransferPlayer(oldSID, newSID types.SessionIdType) bool
}

type route struct {
	prefix  string
	manager Manager
}

// Dispatcher owns the tag→manager table. Messages from one client arrive in
// order because each session has a single read pump.
type Dispatcher struct {
	index    *game.Index
	broker   *reconnect.Broker
	sender   types.Sender
	liveness types.Liveness
	limiter  *ratelimit.Limiter

	routes   []route
	byMode   map[types.ModeType]Manager
	fallback Manager
}

// New builds an empty dispatcher; modes are attached with Register and
// SetFallback before the registry starts accepting.
func New(index *game.Index, broker *reconnect.Broker, sender types.Sender, liveness types.Liveness, limiter *ratelimit.Limiter) *Dispatcher {
	return &Dispatcher{
		index:    index,
		broker:   broker,
		sender:   sender,
		liveness: liveness,
		limiter:  limiter,
		byMode:   make(map[types.ModeType]Manager),
	}
}

// Register attaches a manager to a tag prefix. The same manager may serve
// several prefixes (fps_ and arena_ are aliases).
func (d *Dispatcher) Register(prefix string, mode types.ModeType, m Manager) {
	d.routes = append(d.routes, route{prefix: prefix, manager: m})
	d.byMode[mode] = m
}

// SetFallback installs the manager that serves unprefixed tags.
func (d *Dispatcher) SetFallback(mode types.ModeType, m Manager) {
	d.fallback = m
	d.byMode[mode] = m
}

// OnMessage is the registry's inbound frame callback.
func (d *Dispatcher) OnMessage(sid types.SessionIdType, raw []byte) {
	ctx := context.WithValue(context.Background(), logging.SessionIDKey, string(sid))

	if d.limiter != nil && !d.limiter.AllowMessage(ctx, sid) {
		// flood: drop the frame, keep the connection
		return
	}

	tag, err := protocol.Tag(raw)
	if err != nil {
		metrics.MessagesReceived.WithLabelValues("invalid", "error").Inc()
		d.sender.Send(sid, protocol.NewError(protocol.CodeFor(err), "malformed frame"))
		return
	}

	start := time.Now()
	status := d.route(ctx, sid, tag, raw)
	metrics.MessagesReceived.WithLabelValues(tag, status).Inc()
	metrics.MessageProcessingDuration.WithLabelValues(tag).Observe(time.Since(start).Seconds())
}

func (d *Dispatcher) route(ctx context.Context, sid types.SessionIdType, tag string, raw []byte) string {
	switch tag {
	case "pong":
		d.liveness.MarkAlive(sid)
		return "handled"
	case "ping":
		d.sender.Send(sid, protocol.NewPong(time.Now().UnixMilli()))
		return "handled"
	case "reconnect":
		d.handleReconnect(ctx, sid, raw)
		return "handled"
	}

	for _, r := range d.routes {
		if strings.HasPrefix(tag, r.prefix) {
			if r.manager.Handle(ctx, sid, tag, raw) {
				return "handled"
			}
			d.sender.Send(sid, protocol.NewError(protocol.CodeUnknownType, "unknown message type: "+tag))
			return "unknown"
		}
	}

	if d.fallback != nil && d.fallback.Handle(ctx, sid, tag, raw) {
		return "handled"
	}
	d.sender.Send(sid, protocol.NewError(protocol.CodeUnknownType, "unknown message type: "+tag))
	return "unknown"
}

// OnDisconnect is the registry's disconnect callback; it forwards to the
// manager seating the session, if any.
func (d *Dispatcher) OnDisconnect(sid types.SessionIdType, reason string) {
	entry, ok := d.index.Lookup(sid)
	if !ok {
		return
	}
	m, ok := d.byMode[entry.Mode]
	if !ok {
		return
	}
	logging.Info(context.Background(), "Player disconnected from room",
		zap.String("sessionId", string(sid)),
		zap.String("roomCode", string(entry.Code)),
		zap.String("reason", reason))
	m.HandleDisconnect(sid)
}

type reconnectMsg struct {
	Token string `json:"token"`
}

func (d *Dispatcher) handleReconnect(ctx context.Context, sid types.SessionIdType, raw []byte) {
	var msg reconnectMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Token == "" {
		d.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "reconnect requires a token"))
		return
	}

	oldSID, err := d.broker.Consume(msg.Token)
	if err != nil {
		metrics.Reconnects.WithLabelValues("rejected").Inc()
		d.sender.Send(sid, protocol.NewError(protocol.CodeReconnectFailed, "reconnect token invalid or expired"))
		return
	}

	entry, ok := d.index.Lookup(oldSID)
	if !ok {
		// token was valid but the seat is gone; Consume already deleted it
		metrics.Reconnects.WithLabelValues("room_gone").Inc()
		d.sender.Send(sid, protocol.NewError(protocol.CodeRoomGone, "the room no longer exists"))
		return
	}

	m, ok := d.byMode[entry.Mode]
	if !ok || !m.TransferPlayer(oldSID, sid) {
		metrics.Reconnects.WithLabelValues("rejected").Inc()
		d.sender.Send(sid, protocol.NewError(protocol.CodeReconnectFailed, "seat could not be restored"))
		return
	}

	metrics.Reconnects.WithLabelValues("success").Inc()
	logging.Info(ctx, "Session reconnected",
		zap.String("oldSessionId", string(oldSID)),
		zap.String("roomCode", string(entry.Code)))
}
