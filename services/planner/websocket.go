package planner

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"defense-planner/internal/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// MessageHandler applies one inbound client message.
type MessageHandler func(message []byte) error

// SnapshotFunc returns the message a client receives right after it
// connects.
type SnapshotFunc func() ([]byte, error)

type WebSocketServer struct {
	clients  map[*websocket.Conn]bool
	mutex    sync.Mutex // guards clients and serializes writes
	handle   MessageHandler
	snapshot SnapshotFunc
	log      logger.Log
}

func NewWebSocketServer(handle MessageHandler, snapshot SnapshotFunc, log logger.Log) *WebSocketServer {
	return &WebSocketServer{
		clients:  make(map[*websocket.Conn]bool),
		handle:   handle,
		snapshot: snapshot,
		log:      log,
	}
}

func (w *WebSocketServer) HandleWebSocket(wr http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(wr, r, nil)
	if err != nil {
		w.log.Warn("failed to upgrade connection", logger.Error(err))
		return
	}
	defer conn.Close()

	w.mutex.Lock()
	w.clients[conn] = true
	w.mutex.Unlock()
	w.log.Debug("client connected", logger.Int("clients", w.Clients()))

	if w.snapshot != nil {
		if msg, err := w.snapshot(); err == nil {
			w.send(conn, msg)
		} else {
			w.log.Error("failed to build snapshot", logger.Error(err))
		}
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			w.log.Debug("client disconnected", logger.Error(err))
			w.mutex.Lock()
			delete(w.clients, conn)
			w.mutex.Unlock()
			break
		}

		if err := w.handle(message); err != nil {
			w.log.Warn("rejected client message", logger.Error(err))
			reply, _ := json.Marshal(map[string]string{"type": "error", "error": err.Error()})
			w.send(conn, reply)
		}
	}
}

func (w *WebSocketServer) send(conn *websocket.Conn, message []byte) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if _, ok := w.clients[conn]; !ok {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
		w.log.Warn("failed to send message to client", logger.Error(err))
		conn.Close()
		delete(w.clients, conn)
	}
}

func (w *WebSocketServer) BroadcastMessage(message []byte) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	for client := range w.clients {
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			w.log.Warn("failed to send message to client", logger.Error(err))
			client.Close()
			delete(w.clients, client)
		}
	}
}

// Clients returns the number of connected clients.
func (w *WebSocketServer) Clients() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.clients)
}

func (w *WebSocketServer) BroadcastLoop(broadcast <-chan []byte) {
	for message := range broadcast {
		w.BroadcastMessage(message)
	}
}

// CloseAll drops every client.
func (w *WebSocketServer) CloseAll() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	for client := range w.clients {
		client.Close()
		delete(w.clients, client)
	}
}
