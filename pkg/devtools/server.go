// Package devtools serves a read-only HTTP inspector for a reworm container.
//
// Routes:
//
//	GET /stores        every store with its phase, initial and current value
//	GET /stores/{id}   one store; 404 with an R002 error body when unknown
//	GET /stream        WebSocket; a snapshot event per store, then one
//	                   update event per broadcast
//
// Broadcasts are handed to each WebSocket client through a buffered
// channel, so a slow client never blocks Store.Set. Events for a client
// whose buffer is full are dropped and logged.
package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	rerrors "github.com/pedronauck/reworm/internal/errors"
	"github.com/pedronauck/reworm/pkg/reworm"
	"github.com/pedronauck/reworm/pkg/value"
)

// EventType distinguishes stream events.
type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventUpdate   EventType = "update"
)

// Event is sent to stream clients as JSON.
type Event struct {
	Type  EventType   `json:"type"`
	Store string      `json:"store"`
	Value value.Value `json:"value"`
	Time  time.Time   `json:"time"`
}

// StoreInfo describes one store in the /stores responses.
type StoreInfo struct {
	ID      string      `json:"id"`
	Phase   string      `json:"phase"`
	Initial value.Value `json:"initial"`
	Current value.Value `json:"current"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Default: the container's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBufferSize sets the per-client event buffer (default 64).
func WithBufferSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// WithCheckOrigin sets the WebSocket origin check. Default: allow all.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		if fn != nil {
			s.upgrader.CheckOrigin = fn
		}
	}
}

// streamClient is one WebSocket connection and its outbound queue.
type streamClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *streamClient) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Server is an http.Handler exposing a container for inspection.
type Server struct {
	container  *reworm.Container
	router     chi.Router
	upgrader   websocket.Upgrader
	logger     *slog.Logger
	bufferSize int
	token      reworm.Token

	mu      sync.RWMutex
	clients map[*streamClient]struct{}
	closed  bool
}

// New creates a server and starts following the container's broadcasts.
func New(c *reworm.Container, opts ...Option) *Server {
	s := &Server{
		container:  c,
		logger:     c.Logger(),
		bufferSize: 64,
		clients:    make(map[*streamClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "devtools")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/stores", s.handleList)
	r.Get("/stores/{id}", s.handleGet)
	r.Get("/stream", s.handleStream)
	s.router = r

	s.token = c.Emitter().Subscribe(reworm.ListenerFunc(s.handleBroadcast))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ClientCount returns the number of connected stream clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close stops following broadcasts and disconnects all clients.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	clients := s.clients
	s.clients = make(map[*streamClient]struct{})
	s.mu.Unlock()

	s.container.Emitter().Unsubscribe(s.token)
	for client := range clients {
		client.close()
	}
}

func (s *Server) info(id string) StoreInfo {
	initial, _ := s.container.Registry().Lookup(id)
	return StoreInfo{
		ID:      id,
		Phase:   s.container.Phase(id).String(),
		Initial: initial,
		Current: s.container.Use(id).Value(),
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids := s.storeIDs()
	out := make([]StoreInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.info(id))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, known := s.container.Snapshot()[id]; !known {
		err := rerrors.New("R002").WithStore(id)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(err.FormatJSON()))
		return
	}
	writeJSON(w, http.StatusOK, s.info(id))
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	client, ok := s.attach(conn)
	if !ok {
		conn.Close()
		return
	}

	go s.writeLoop(client)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.remove(client)
}

// attach queues one snapshot event per store and registers the client.
// Both happen under s.mu, which handleBroadcast also takes, so every
// broadcast either is reflected in the snapshot or is queued after it.
// The queue holds the whole snapshot plus the usual buffer.
func (s *Server) attach(conn *websocket.Conn) (*streamClient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}

	snapshot := s.container.Snapshot()
	client := &streamClient{conn: conn, send: make(chan []byte, len(snapshot)+s.bufferSize)}
	now := time.Now()
	for _, id := range sortedKeys(snapshot) {
		data, err := json.Marshal(Event{Type: EventSnapshot, Store: id, Value: snapshot[id], Time: now})
		if err != nil {
			s.logger.Warn("cannot encode snapshot", "store", id, "error", err)
			continue
		}
		select {
		case client.send <- data:
		default:
			s.logger.Warn("stream client queue full, dropping snapshot", "store", id)
		}
	}

	s.clients[client] = struct{}{}
	return client, true
}

func (s *Server) writeLoop(client *streamClient) {
	defer client.conn.Close()
	for data := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.remove(client)
			return
		}
	}
	_ = client.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) remove(client *streamClient) {
	s.mu.Lock()
	_, ok := s.clients[client]
	delete(s.clients, client)
	s.mu.Unlock()
	if ok {
		client.close()
	}
}

// handleBroadcast runs inside Store.Set; it must never block.
func (s *Server) handleBroadcast(id string, next value.Value) {
	data, err := json.Marshal(Event{Type: EventUpdate, Store: id, Value: next, Time: time.Now()})
	if err != nil {
		s.logger.Warn("cannot encode broadcast", "store", id, "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		select {
		case client.send <- data:
		default:
			s.logger.Warn("stream client too slow, dropping event", "store", id)
		}
	}
}

func (s *Server) storeIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, id := range s.container.Registry().IDs() {
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	extra := []string{}
	for id := range s.container.Snapshot() {
		if _, ok := seen[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(ids, extra...)
}

func sortedKeys(m map[string]value.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
