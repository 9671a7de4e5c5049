// Package feed serves a demo alert feed over WebSocket. Traffic is
// synthesised rather than captured; only pairs that hit the blocklist are
// broadcast.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cybersentry/sentry/internal/config"
	"github.com/cybersentry/sentry/internal/logging"
	"github.com/cybersentry/sentry/pkg/model"
)

const (
	sendBuffer      = 32
	writeWait       = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Status is the body of GET /status.
type Status struct {
	Status              string `json:"status"`
	MonitoringInterface string `json:"monitoring_interface"`
	ConnectedClients    int    `json:"connected_clients"`
	BlocklistSize       int    `json:"blocklist_size"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Server fans alerts out to every connected WebSocket client.
type Server struct {
	cfg      config.FeedConfig
	eval     *Evaluator
	logger   *zap.Logger
	upgrader websocket.Upgrader

	rand *rand.Rand
	now  func() time.Time

	mu      sync.RWMutex
	clients map[string]*client
}

// NewServer loads the blocklist and validates the watched network.
func NewServer(cfg config.FeedConfig, logger *zap.Logger) (*Server, error) {
	logger = logging.OrNop(logger).Named("feed")

	bl, fromFile, err := LoadBlocklist(cfg.Blocklist)
	if err != nil {
		return nil, err
	}
	if fromFile {
		logger.Info("loaded blocklist", zap.String("path", cfg.Blocklist), zap.Int("size", bl.Len()))
	} else {
		logger.Warn("blocklist file not found, using defaults",
			zap.String("path", cfg.Blocklist), zap.Strings("ips", bl.List()))
	}

	eval, err := NewEvaluator(cfg.WatchedNetwork, bl)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:    cfg,
		eval:   eval,
		logger: logger,
		upgrader: websocket.Upgrader{
			// the dashboard may be served from anywhere
			CheckOrigin: func(*http.Request) bool { return true },
		},
		rand:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:     time.Now,
		clients: make(map[string]*client),
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) Status() Status {
	return Status{
		Status:              "running",
		MonitoringInterface: s.cfg.Interface,
		ConnectedClients:    s.Clients(),
		BlocklistSize:       s.eval.Blocklist.Len(),
	}
}

func (s *Server) greeting() model.NetworkAlert {
	return model.NetworkAlert{
		SrcIP:     "0.0.0.0",
		DstIP:     "0.0.0.0",
		Timestamp: s.now().Format(timestampLayout),
		RiskLevel: 0,
		Reason:    "Connected to CyberSentry Network Monitor",
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		s.logger.Debug("upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	hello, err := json.Marshal(s.greeting())
	if err != nil {
		s.logger.Error("failed to encode greeting", zap.Error(err))
		_ = conn.Close()
		return
	}
	c.send <- hello

	s.mu.Lock()
	s.clients[c.id] = c
	n := len(s.clients)
	s.mu.Unlock()
	s.logger.Info("client connected", zap.String("client", c.id), zap.String("remote", r.RemoteAddr), zap.Int("clients", n))

	go s.writeLoop(c)
	s.readLoop(c)
}

// readLoop discards inbound frames and returns when the peer goes away.
func (s *Server) readLoop(c *client) {
	defer s.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
	}
}

func (s *Server) writeLoop(c *client) {
	defer s.drop(c)
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Warn("send failed, dropping client", zap.String("client", c.id), zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c.id]
	delete(s.clients, c.id)
	n := len(s.clients)
	s.mu.Unlock()

	c.close()
	if ok {
		s.logger.Info("client disconnected", zap.String("client", c.id), zap.Int("clients", n))
	}
}

// Broadcast queues the alert for every client and returns how many accepted
// it. A client whose queue is full misses this alert.
func (s *Server) Broadcast(a model.NetworkAlert) (int, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return 0, fmt.Errorf("failed to encode alert: %w", err)
	}

	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		select {
		case <-c.done:
		case c.send <- data:
			sent++
		default:
			s.logger.Warn("client queue full, alert dropped", zap.String("client", c.id))
		}
	}
	return sent, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Status()); err != nil {
		s.logger.Debug("status write failed", zap.Error(err))
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "CyberSentry Network Monitor\n\nws://%s/ws      alert stream\nhttp://%s/status  server status\n", r.Host, r.Host)
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server and the traffic generator on ln. On
// cancellation it stops accepting, closes every WebSocket client and waits
// for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	genCtx, stopGen := context.WithCancel(ctx)
	defer stopGen()
	go s.generate(genCtx, s.cfg.Interval.Duration)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("serving alert feed",
		zap.String("addr", ln.Addr().String()),
		zap.String("interface", s.cfg.Interface),
		zap.String("watched", s.eval.Watched.String()))

	select {
	case err := <-errc:
		return fmt.Errorf("feed server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("feed shutdown: %w", err)
	}
	s.logger.Info("feed stopped")
	return nil
}

// closeAll disconnects hijacked WebSocket connections, which Shutdown
// does not track.
func (s *Server) closeAll() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		s.drop(c)
	}
}
