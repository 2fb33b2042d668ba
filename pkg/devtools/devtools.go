// Package devtools serves a live view of a reconciled platform tree: a
// websocket stream of dom mutations, an HTML snapshot, Prometheus metrics
// and a health check.
package devtools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/metrics"
	"github.com/vango-dev/weave/pkg/sched"
)

// MessageType is the type of a stream message.
type MessageType string

const (
	MessageSnapshot MessageType = "snapshot"
	MessageMutation MessageType = "mutation"
)

// Message is sent to stream clients as JSON.
type Message struct {
	Type     MessageType   `json:"type"`
	HTML     string        `json:"html,omitempty"`
	Mutation *dom.Mutation `json:"mutation,omitempty"`
}

// snapshotTimeout bounds how long a request waits for the loop.
const snapshotTimeout = 2 * time.Second

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Server streams mutations of one platform subtree.
type Server struct {
	loop     *sched.Loop
	root     *dom.Node
	logger   *slog.Logger
	recorder *metrics.Recorder
	gatherer prometheus.Gatherer

	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader

	stop func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRecorder counts streamed mutations and connected clients.
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New creates a Server for the subtree rooted at root. The tree is only
// touched from loop.
func New(loop *sched.Loop, root *dom.Node, opts ...Option) *Server {
	s := &Server{
		loop:     loop,
		root:     root,
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
		clients:  make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local tooling
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins observing the tree. It must run on the loop goroutine, or
// before the loop starts.
func (s *Server) Start() {
	if s.stop != nil {
		return
	}
	s.stop = s.root.Observe(func(m dom.Mutation) {
		if s.recorder != nil {
			s.recorder.MutationObserved(string(m.Op))
		}
		s.broadcast(Message{Type: MessageMutation, Mutation: &m})
	})
}

// Handler returns the devtools routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/tree", s.handleTree)
	r.Get("/ws", s.HandleWebSocket)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) handleTree(w http.ResponseWriter, req *http.Request) {
	html, err := s.snapshot(req.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// snapshot serializes the tree on the loop goroutine.
func (s *Server) snapshot(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	ch := make(chan string, 1)
	s.loop.Post(func() { ch <- s.root.OuterHTML() })
	select {
	case html := <-ch:
		return html, nil
	case <-ctx.Done():
		return "", errors.New(errors.CodeTransport).WithDetail("loop did not answer").Wrap(ctx.Err())
	}
}

// HandleWebSocket upgrades the connection, sends a snapshot and then
// streams every mutation until the client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}

	html, err := s.snapshot(req.Context())
	if err != nil {
		s.logger.Warn("devtools snapshot failed", "error", err)
		conn.Close()
		return
	}
	data, _ := json.Marshal(Message{Type: MessageSnapshot, HTML: html})
	if err := c.write(data); err != nil {
		conn.Close()
		return
	}

	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()
	s.updateClients()

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.remove(c)
}

// broadcast sends a message to all connected clients.
func (s *Server) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			s.logger.Debug("devtools client dropped", "error", err)
			s.remove(c)
		}
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.conn.Close()
		s.updateClients()
	}
}

func (s *Server) updateClients() {
	if s.recorder != nil {
		s.recorder.SetClients(s.ClientCount())
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close stops observing and closes all client connections. Like Start, it
// must run on the loop goroutine or after the loop has stopped.
func (s *Server) Close() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.conn.Close()
		delete(s.clients, c)
	}
}
