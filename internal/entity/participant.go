package entity

const RoleSpectator = "spectator"

// Conn is an opaque handle for one client connection. The transport layer
// supplies it; the core only compares handles for identity.
type Conn interface{}

// Participant is one connected client inside a room: its connection handle,
// the display name it asserted on join, and the role it was assigned.
type Participant struct {
	Conn Conn
	Name string
	Role string
}

// Snapshot is the serializable view of a session that gets broadcast to the
// room after every accepted join, move or leave.
type Snapshot struct {
	Board Board   `json:"board"`
	Turn  string  `json:"turn"`
	Black *string `json:"black"`
	White *string `json:"white"`
}
