package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trainboard/othello-backend/internal/apperror"
	"github.com/trainboard/othello-backend/internal/entity"
)

func mustJoin(t *testing.T, session *Session, conn entity.Conn, name string) string {
	t.Helper()

	role, err := session.Join(conn, name)
	require.NoError(t, err)

	return role
}

func TestSession_Join(t *testing.T) {
	t.Run("Assigns roles in black, white, spectator order", func(t *testing.T) {
		// Given: a fresh session
		session := NewSession("R1")

		// When: four connections join
		first := mustJoin(t, session, "conn-1", "Alice")
		second := mustJoin(t, session, "conn-2", "Bob")
		third := mustJoin(t, session, "conn-3", "Carol")
		fourth := mustJoin(t, session, "conn-4", "Dave")

		// Then: the first two get the player slots, the rest spectate
		assert.Equal(t, entity.ColorBlack, first)
		assert.Equal(t, entity.ColorWhite, second)
		assert.Equal(t, entity.RoleSpectator, third)
		assert.Equal(t, entity.RoleSpectator, fourth)
	})

	t.Run("Concurrent joins fill each slot exactly once", func(t *testing.T) {
		// Given: a fresh session
		session := NewSession("R1")

		// When: ten connections join concurrently
		roles := make([]string, 10)
		errs := make([]error, 10)
		var wg sync.WaitGroup
		for i := range roles {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				roles[i], errs[i] = session.Join(i, "player")
			}(i)
		}
		wg.Wait()

		// Then: exactly one black, one white and eight spectators were assigned
		counts := make(map[string]int)
		for i, role := range roles {
			require.NoError(t, errs[i])
			counts[role]++
		}
		assert.Equal(t, 1, counts[entity.ColorBlack])
		assert.Equal(t, 1, counts[entity.ColorWhite])
		assert.Equal(t, 8, counts[entity.RoleSpectator])
	})

	t.Run("Error when the session is closed", func(t *testing.T) {
		// Given: a session the registry has removed
		registry := NewRegistry()
		session := registry.GetOrCreate("R1")
		require.True(t, registry.RemoveIfEmpty("R1"))

		// When: a connection joins through the stale session handle
		_, err := session.Join("conn-late", "Alice")

		// Then: the join is refused
		require.ErrorIs(t, err, apperror.ErrRoomClosed)
	})
}

func TestSession_Leave(t *testing.T) {
	t.Run("Freeing the black slot lets the next joiner take it", func(t *testing.T) {
		// Given: a session with both player slots taken and a spectator
		session := NewSession("R1")
		mustJoin(t, session, "conn-black", "Alice")
		mustJoin(t, session, "conn-white", "Bob")
		mustJoin(t, session, "conn-spec", "Carol")

		// When: the black connection leaves and a new connection joins
		session.Leave("conn-black")
		role := mustJoin(t, session, "conn-new", "Dave")

		// Then: the newcomer takes black, white and the spectator are untouched
		assert.Equal(t, entity.ColorBlack, role)

		snapshot := session.Snapshot()
		require.NotNil(t, snapshot.Black)
		assert.Equal(t, "Dave", *snapshot.Black)
		require.NotNil(t, snapshot.White)
		assert.Equal(t, "Bob", *snapshot.White)
		assert.Len(t, session.Conns(), 4)
	})

	t.Run("Removes a spectator from the broadcast list", func(t *testing.T) {
		// Given: a session with two players and a spectator
		session := NewSession("R1")
		mustJoin(t, session, "conn-black", "Alice")
		mustJoin(t, session, "conn-white", "Bob")
		mustJoin(t, session, "conn-spec", "Carol")

		// When: the spectator leaves
		session.Leave("conn-spec")

		// Then: only the players remain in the broadcast list
		assert.Equal(t, []entity.Conn{"conn-black", "conn-white"}, session.Conns())
	})

	t.Run("Unknown connection is a no-op", func(t *testing.T) {
		// Given: a session with one player
		session := NewSession("R1")
		mustJoin(t, session, "conn-black", "Alice")

		// When: a connection that never joined leaves
		session.Leave("conn-stranger")

		// Then: the session is unchanged
		snapshot := session.Snapshot()
		require.NotNil(t, snapshot.Black)
		assert.Equal(t, "Alice", *snapshot.Black)
	})
}

func TestSession_Move(t *testing.T) {
	t.Run("Error when playing out of turn", func(t *testing.T) {
		// Given: a fresh session, black to move
		session := NewSession("R1")
		before := session.Snapshot()

		// When: white plays first
		err := session.Move(entity.ColorWhite, 2, 3)

		// Then: the move is rejected and nothing changes
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, before, session.Snapshot())
	})

	t.Run("Error on occupied cell", func(t *testing.T) {
		// Given: a fresh session
		session := NewSession("R1")

		// When: black plays onto a center disk
		err := session.Move(entity.ColorBlack, 3, 3)

		// Then: the move is rejected and it is still black's turn
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, entity.ColorBlack, session.Snapshot().Turn)
	})

	t.Run("Error on zero-capture move", func(t *testing.T) {
		// Given: a fresh session
		session := NewSession("R1")

		// When: black plays an isolated cell
		err := session.Move(entity.ColorBlack, 0, 0)

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrNoCaptures)
		assert.Equal(t, entity.ColorBlack, session.Snapshot().Turn)
	})

	t.Run("Accepted move flips the capture and passes the turn", func(t *testing.T) {
		// Given: a fresh session
		session := NewSession("R1")

		// When: black plays the standard opening at (2,3)
		err := session.Move(entity.ColorBlack, 2, 3)

		// Then: the board updates and it is white's turn
		require.NoError(t, err)
		snapshot := session.Snapshot()
		assert.Equal(t, entity.ColorWhite, snapshot.Turn)
		assert.Equal(t, entity.ColorBlack, snapshot.Board[2][3])
		assert.Equal(t, entity.ColorBlack, snapshot.Board[3][3])

		// And: replaying the same cell as white is rejected as occupied
		err = session.Move(entity.ColorWhite, 2, 3)
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, entity.ColorWhite, session.Snapshot().Turn)
	})
}

func TestSession_IsEmpty(t *testing.T) {
	t.Run("True only when both player slots are free", func(t *testing.T) {
		// Given: a session with two players and a spectator
		session := NewSession("R1")
		mustJoin(t, session, "conn-black", "Alice")
		mustJoin(t, session, "conn-white", "Bob")
		mustJoin(t, session, "conn-spec", "Carol")

		// When: the players leave one by one
		assert.False(t, session.IsEmpty())
		session.Leave("conn-black")
		assert.False(t, session.IsEmpty())
		session.Leave("conn-white")

		// Then: the session is empty even though the spectator is still there
		assert.True(t, session.IsEmpty())
		assert.Len(t, session.Conns(), 1)
	})
}

func TestSession_Snapshot(t *testing.T) {
	t.Run("Fresh session has the opening layout and black to move", func(t *testing.T) {
		// Given: a fresh session
		session := NewSession("R1")

		// When: taking a snapshot
		snapshot := session.Snapshot()

		// Then: turn is black, names are nil and only the center is occupied
		assert.Equal(t, entity.ColorBlack, snapshot.Turn)
		assert.Nil(t, snapshot.Black)
		assert.Nil(t, snapshot.White)
		assert.Equal(t, entity.NewBoard(), snapshot.Board)
	})

	t.Run("Spectators never appear in the player name fields", func(t *testing.T) {
		// Given: a full room with a spectator
		session := NewSession("R1")
		mustJoin(t, session, "conn-black", "Alice")
		mustJoin(t, session, "conn-white", "Bob")
		mustJoin(t, session, "conn-spec", "Carol")

		// When: taking a snapshot
		snapshot := session.Snapshot()

		// Then: only the slot holders are named
		require.NotNil(t, snapshot.Black)
		require.NotNil(t, snapshot.White)
		assert.Equal(t, "Alice", *snapshot.Black)
		assert.Equal(t, "Bob", *snapshot.White)
	})
}
