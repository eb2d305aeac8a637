package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/trainboard/othello-backend/internal/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBufferSize = 256

	shutdownTimeout = 5 * time.Second
)

type roomRegistry interface {
	GetOrCreate(roomID string) *game.Session
	Get(roomID string) (*game.Session, bool)
	RemoveIfEmpty(roomID string) bool
}

// Server is the connection gateway: it accepts websocket connections, parses
// inbound messages, routes them into the room registry and fans session
// snapshots back out to every connection in the room.
type Server struct {
	logger *slog.Logger
	rooms  roomRegistry

	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, rooms roomRegistry) *Server {
	return &Server{
		logger: logger,
		rooms:  rooms,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				// the board is served from a different origin than the socket port
				return true
			},
		},
	}
}

// Start - starts the WebSocket server and blocks until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// client is one websocket connection. Outbound messages go through a buffered
// send channel drained by writePump, so a slow reader never blocks the room
// that is broadcasting to it.
type client struct {
	conn *websocket.Conn
	send chan []byte

	// roomID is the room this connection last joined; only the client's own
	// read loop touches it.
	roomID string

	closeOnce sync.Once
	done      chan struct{}
}

// enqueue hands a message to the write pump without blocking. It reports
// false when the client's buffer is full.
func (that *client) enqueue(message []byte) bool {
	select {
	case that.send <- message:
		return true
	case <-that.done:
		return false
	default:
		return false
	}
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		_ = that.conn.Close()
	})
}

// serveWS upgrades the connection and runs its read loop. Handlers execute
// synchronously inside the loop, so messages from one connection are always
// processed in the order they were sent.
func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	cl := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}

	go that.writePump(cl)
	that.readLoop(cl)
}

func (that *Server) readLoop(cl *client) {
	log := that.logger.With("method", "readLoop")

	defer that.disconnect(cl)

	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("connection read failed", "error", err)
			}
			return
		}

		that.handleMessage(cl, data)
	}
}

func (that *Server) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.close()
	}()

	for {
		select {
		case message := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-cl.done:
			return
		}
	}
}
