package history

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrSourceClosed is returned by Broadcast after Close.
var ErrSourceClosed = errors.New("history: source closed")

// WebSocketConfig configures a WebSocketSource.
type WebSocketConfig struct {
	// ReadBufferSize and WriteBufferSize size the upgrader buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// MaxMessageSize bounds a single navigation frame.
	MaxMessageSize int64

	// WriteTimeout bounds each outbound frame.
	WriteTimeout time.Duration

	// CheckOrigin is passed to the upgrader. Nil accepts same-origin only.
	CheckOrigin func(r *http.Request) bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultWebSocketConfig returns the default configuration.
func DefaultWebSocketConfig() *WebSocketConfig {
	return &WebSocketConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		MaxMessageSize:  8 * 1024,
		WriteTimeout:    10 * time.Second,
	}
}

// WebSocketSource is a Source fed by browsers over WebSocket. Each text
// frame is a JSON Location:
//
//	{"pathname": "/users/42", "search": "?tab=posts"}
//
// It is an http.Handler; mount it on the endpoint clients dial.
type WebSocketSource struct {
	config   *WebSocketConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu        sync.Mutex
	conns     map[*wsConn]struct{}
	listeners listeners
	closed    bool
}

type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewWebSocketSource creates a source. A nil config uses the defaults.
func NewWebSocketSource(config *WebSocketConfig) *WebSocketSource {
	defaults := DefaultWebSocketConfig()
	if config == nil {
		config = defaults
	}
	if config.ReadBufferSize == 0 {
		config.ReadBufferSize = defaults.ReadBufferSize
	}
	if config.WriteBufferSize == 0 {
		config.WriteBufferSize = defaults.WriteBufferSize
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &WebSocketSource{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger.With("component", "history"),
		conns:  make(map[*wsConn]struct{}),
	}
}

// Listen implements Source.
func (s *WebSocketSource) Listen(l Listener) func() {
	s.mu.Lock()
	id := s.listeners.add(l)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.listeners.remove(id)
			s.mu.Unlock()
		})
	}
}

// ServeHTTP upgrades the request and reads navigations until the client
// disconnects.
func (s *WebSocketSource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		http.Error(w, "history source closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.config.MaxMessageSize)

	c := &wsConn{conn: conn}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	s.readLoop(c)
}

// readLoop blocks until the connection fails or is closed.
func (s *WebSocketSource) readLoop(c *wsConn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		c.conn.Close()
	}()

	for {
		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			s.logger.Warn("ignoring non-text frame", "type", msgType)
			continue
		}

		var loc Location
		if err := json.Unmarshal(msg, &loc); err != nil {
			s.logger.Warn("navigation decode error", "error", err)
			continue
		}
		if loc.Pathname == "" {
			loc.Pathname = "/"
		}

		s.notify(loc)
	}
}

func (s *WebSocketSource) notify(loc Location) {
	s.mu.Lock()
	fns := s.listeners.snapshot()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(loc)
	}
}

// Broadcast writes v as a JSON text frame to every connected client.
// Write failures drop the failing connection and are not returned.
func (s *WebSocketSource) Broadcast(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSourceClosed
	}
	conns := make([]*wsConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		err := c.conn.WriteMessage(websocket.TextMessage, data)
		c.writeMu.Unlock()
		if err != nil {
			s.logger.Warn("broadcast write failed", "error", err)
			c.conn.Close()
		}
	}
	return nil
}

// Connections returns the number of connected clients.
func (s *WebSocketSource) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close disconnects every client and rejects new ones.
func (s *WebSocketSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conns := s.conns
	s.conns = make(map[*wsConn]struct{})
	s.mu.Unlock()

	for c := range conns {
		c.writeMu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.conn.Close()
	}
	return nil
}
