package websocket

import "github.com/trainboard/othello-backend/internal/entity"

const (
	messageTypeJoin = "join"
	messageTypeMove = "move"

	messageTypeJoined = "joined"
	messageTypeState  = "state"
)

// Message is the inbound wire format. R and C are pointers so a move with a
// missing coordinate can be told apart from a move on row/column 0.
type Message struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Name   string `json:"name,omitempty"`
	R      *int   `json:"r,omitempty"`
	C      *int   `json:"c,omitempty"`
	Color  string `json:"color,omitempty"`
}

// joinedMessage is the reply sent to the joining connection only.
type joinedMessage struct {
	Type   string `json:"type"`
	Color  string `json:"color"`
	RoomID string `json:"roomId"`
}

// stateMessage is broadcast to every connection in a room after any accepted
// join, move or leave.
type stateMessage struct {
	Type string `json:"type"`
	*entity.Snapshot
}
