package types

// --- Core Domain Types ---

// SessionIdType represents a unique identifier for a connected client session.
// Session ids are server-generated and opaque to clients.
type SessionIdType string

// RoomCodeType represents a 5-character room join code.
type RoomCodeType string

// DisplayNameType represents the human-readable name for a player.
type DisplayNameType string

// TeamIdType represents a team identifier inside a room.
type TeamIdType string

// ModeType identifies one of the hosted game modes.
type ModeType string

// Mode constants map one-to-one to the message tag namespaces.
const (
	ModeRhythm    ModeType = "rhythm"
	ModeBoard     ModeType = "board"
	ModeOpenWorld ModeType = "openworld"
	ModeArena     ModeType = "arena"
	ModeWarfront  ModeType = "warfront"
	ModeSwitch    ModeType = "switch"
)

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

const (
	StatusWaiting   RoomStatus = "waiting"
	StatusCountdown RoomStatus = "countdown"
	StatusPlaying   RoomStatus = "playing"
	StatusFinished  RoomStatus = "finished"
)

// --- Warfront Roles ---

// RoleType defines the cross-mode role a warfront player occupies.
type RoleType string

const (
	RoleDefender  RoleType = "defender"
	RoleSoldier   RoleType = "soldier"
	RoleEngineer  RoleType = "engineer"
	RoleCommander RoleType = "commander"
	RoleUnknown   RoleType = "unknown"
)

// Occupies3DView reports whether the role plays inside the shared 3D sub-view.
// Soldiers and engineers move through the voxel battlefield; defenders and
// commanders act from their own 2D surfaces.
func (r RoleType) Occupies3DView() bool {
	return r == RoleSoldier || r == RoleEngineer
}

// --- Fan-out Interfaces ---

// Sender delivers outbound frames to sessions. Sends are best-effort: a send
// to a closed or unknown session returns false and is otherwise a no-op.
//
// Room managers depend on this interface rather than the concrete connection
// registry so they can be exercised against an in-memory fake.
type Sender interface {
	// Send marshals v to JSON and queues it for the session.
	Send(sid SessionIdType, v any) bool
	// SendRaw queues pre-serialized bytes for the session.
	SendRaw(sid SessionIdType, data []byte) bool
}

// Liveness lets the dispatcher flip a session back to alive when an
// application-level pong arrives.
type Liveness interface {
	MarkAlive(sid SessionIdType)
}
