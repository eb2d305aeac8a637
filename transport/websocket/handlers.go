package websocket

import (
	"encoding/json"

	"github.com/trainboard/othello-backend/internal/game"
)

// handleMessage dispatches one inbound payload. Malformed payloads and
// unknown types are dropped; the connection stays open.
func (that *Server) handleMessage(cl *client, data []byte) {
	log := that.logger.With("method", "handleMessage")

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debug("failed to unmarshal message", "error", err)
		return
	}

	switch msg.Type {
	case messageTypeJoin:
		that.handleJoin(cl, &msg)
	case messageTypeMove:
		that.handleMove(cl, &msg)
	default:
		log.Debug("unknown message type", "type", msg.Type)
	}
}

func (that *Server) handleJoin(cl *client, msg *Message) {
	log := that.logger.With("method", "handleJoin")

	if msg.RoomID == "" {
		log.Debug("join without room id")
		return
	}

	var (
		session *game.Session
		role    string
	)
	for {
		session = that.rooms.GetOrCreate(msg.RoomID)

		var err error
		role, err = session.Join(cl, msg.Name)
		if err == nil {
			break
		}
		// lost the race with the room's cleanup: the registry no longer
		// holds this session, so fetch a fresh one and retry
	}
	cl.roomID = msg.RoomID

	reply, err := json.Marshal(joinedMessage{
		Type:   messageTypeJoined,
		Color:  role,
		RoomID: msg.RoomID,
	})
	if err != nil {
		log.Error("failed to marshal joined message", "error", err)
		return
	}

	if !cl.enqueue(reply) {
		log.Warn("failed to send joined message", "roomID", msg.RoomID)
	}

	that.broadcastState(session)

	log.Info("participant joined", "roomID", msg.RoomID, "name", msg.Name, "color", role)
}

func (that *Server) handleMove(cl *client, msg *Message) {
	log := that.logger.With("method", "handleMove")

	if msg.R == nil || msg.C == nil {
		log.Debug("move without coordinates", "roomID", msg.RoomID)
		return
	}

	session, ok := that.rooms.Get(msg.RoomID)
	if !ok {
		log.Debug("move for unknown room", "roomID", msg.RoomID)
		return
	}

	if err := session.Move(msg.Color, *msg.R, *msg.C); err != nil {
		// illegal moves are rejected silently; the client infers rejection
		// from the absence of a new state broadcast
		log.Debug("move rejected", "roomID", msg.RoomID, "error", err)
		return
	}

	that.broadcastState(session)

	log.Info("move accepted", "roomID", msg.RoomID, "color", msg.Color, "r", *msg.R, "c", *msg.C)
}

// disconnect runs exactly once per connection, after its read loop exits. It
// removes the connection from the room it last joined, notifies the remaining
// participants and drops the room once both player slots are free.
func (that *Server) disconnect(cl *client) {
	log := that.logger.With("method", "disconnect")

	cl.close()

	if cl.roomID == "" {
		return
	}

	session, ok := that.rooms.Get(cl.roomID)
	if !ok {
		return
	}

	session.Leave(cl)
	that.broadcastState(session)

	if that.rooms.RemoveIfEmpty(cl.roomID) {
		log.Info("room removed", "roomID", cl.roomID)
	}

	log.Info("participant left", "roomID", cl.roomID)
}

// broadcastState fans the session snapshot out to every connection in the
// room. Clients whose buffers are full are disconnected rather than allowed
// to stall the room.
func (that *Server) broadcastState(session *game.Session) {
	log := that.logger.With("method", "broadcastState")

	data, err := json.Marshal(stateMessage{
		Type:     messageTypeState,
		Snapshot: session.Snapshot(),
	})
	if err != nil {
		log.Error("failed to marshal state message", "error", err)
		return
	}

	for _, conn := range session.Conns() {
		peer, ok := conn.(*client)
		if !ok {
			continue
		}

		if !peer.enqueue(data) {
			log.Warn("peer send buffer full, closing connection", "roomID", session.ID())
			peer.close()
		}
	}
}
