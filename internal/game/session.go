package game

import (
	"fmt"
	"sync"

	"github.com/trainboard/othello-backend/internal/apperror"
	"github.com/trainboard/othello-backend/internal/entity"
)

// Session owns the authoritative state of one room: the board, whose turn it
// is, the two player slots and any number of spectators. Every method takes
// the session mutex, so a room is mutated by at most one message at a time
// regardless of which connection the message came from.
type Session struct {
	id string

	mu         sync.Mutex
	board      entity.Board
	turn       string
	black      *entity.Participant
	white      *entity.Participant
	spectators []*entity.Participant

	// closed is set by the registry while it removes the session, so no join
	// can seat a player in a room that is being dropped.
	closed bool
}

// NewSession creates a session with a fresh board. Black moves first.
func NewSession(id string) *Session {
	return &Session{
		id:    id,
		board: entity.NewBoard(),
		turn:  entity.ColorBlack,
	}
}

func (that *Session) ID() string {
	return that.id
}

// Join assigns the connection a role: black if that slot is free, else white,
// else spectator. There is no cap on spectators. Joining a session the
// registry has already removed fails with ErrRoomClosed; the caller should
// fetch a fresh session and retry.
func (that *Session) Join(conn entity.Conn, name string) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return "", apperror.ErrRoomClosed
	}

	switch {
	case that.black == nil:
		that.black = &entity.Participant{Conn: conn, Name: name, Role: entity.ColorBlack}
		return entity.ColorBlack, nil
	case that.white == nil:
		that.white = &entity.Participant{Conn: conn, Name: name, Role: entity.ColorWhite}
		return entity.ColorWhite, nil
	default:
		that.spectators = append(that.spectators, &entity.Participant{Conn: conn, Name: name, Role: entity.RoleSpectator})
		return entity.RoleSpectator, nil
	}
}

// Leave frees whichever slot the connection held, or drops it from the
// spectator list. Unknown connections are a no-op.
func (that *Session) Leave(conn entity.Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch {
	case that.black != nil && that.black.Conn == conn:
		that.black = nil
	case that.white != nil && that.white.Conn == conn:
		that.white = nil
	default:
		for i, spectator := range that.spectators {
			if spectator.Conn == conn {
				that.spectators = append(that.spectators[:i], that.spectators[i+1:]...)
				break
			}
		}
	}
}

// Move applies a move for color at (r, c). The move is rejected when it is
// not that color's turn or when the board rejects the placement; a rejected
// move leaves the session untouched. On success the turn passes to the
// opponent.
func (that *Session) Move(color string, r, c int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if color != that.turn {
		return apperror.ErrNotYourTurn
	}

	if _, err := that.board.ApplyMove(r, c, color); err != nil {
		return fmt.Errorf("failed to apply move: %w", err)
	}

	that.turn = entity.Opponent(that.turn)

	return nil
}

// IsEmpty reports whether both player slots are free. Spectators do not keep
// a room alive.
func (that *Session) IsEmpty() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.black == nil && that.white == nil
}

// closeIfEmpty atomically checks the player slots and marks the session
// closed when both are free. Only the registry calls this, under its own
// lock, so the empty-check and the removal cannot interleave with a join.
func (that *Session) closeIfEmpty() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.black != nil || that.white != nil {
		return false
	}

	that.closed = true

	return true
}

// Snapshot returns the serializable view of the session. Player names are nil
// while a slot is empty.
func (that *Session) Snapshot() *entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	snapshot := &entity.Snapshot{
		Board: that.board,
		Turn:  that.turn,
	}

	if that.black != nil {
		snapshot.Black = &that.black.Name
	}
	if that.white != nil {
		snapshot.White = &that.white.Name
	}

	return snapshot
}

// Conns returns the connection handles of every participant in the room, in
// black, white, spectators order. The transport uses it to fan out snapshots;
// the session itself never performs delivery.
func (that *Session) Conns() []entity.Conn {
	that.mu.Lock()
	defer that.mu.Unlock()

	conns := make([]entity.Conn, 0, len(that.spectators)+2)

	if that.black != nil {
		conns = append(conns, that.black.Conn)
	}
	if that.white != nil {
		conns = append(conns, that.white.Conn)
	}
	for _, spectator := range that.spectators {
		conns = append(conns, spectator.Conn)
	}

	return conns
}
