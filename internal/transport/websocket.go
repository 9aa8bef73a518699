package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/synheart/synheart-monitor/internal/encoding"
	"github.com/synheart/synheart-monitor/internal/models"
)

// WebSocketPath is the display endpoint served by WebSocketServer
const WebSocketPath = "/monitor"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the server only binds to a local address
	},
}

// CommandHandler applies a command message sent by a display client and
// returns the reply to send back to that client
type CommandHandler interface {
	HandleCommand(msg []byte) []byte
}

// wsClient serializes writes to one connection; gorilla connections
// support a single concurrent writer
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

// WebSocketServer broadcasts frames to display clients and accepts
// override commands from them
type WebSocketServer struct {
	host     string
	port     int
	encoder  encoding.Encoder
	commands CommandHandler
	log      *zap.Logger
	clients  map[*wsClient]bool
	mu       sync.RWMutex
	server   *http.Server
}

// NewWebSocketServer creates a new WebSocket server. commands may be nil,
// in which case client messages are ignored.
func NewWebSocketServer(host string, port int, encoder encoding.Encoder, commands CommandHandler, log *zap.Logger) *WebSocketServer {
	if encoder == nil {
		encoder = encoding.NewJSONEncoder()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WebSocketServer{
		host:     host,
		port:     port,
		encoder:  encoder,
		commands: commands,
		log:      log,
		clients:  make(map[*wsClient]bool),
	}
}

// Start serves until ctx is cancelled
func (s *WebSocketServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, s.handleWebSocket)
	mux.HandleFunc("/", s.handleRoot)

	s.mu.Lock()
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.host, s.port),
		Handler: mux,
	}
	server := s.server
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("websocket server listening", zap.String("address", s.GetAddress()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("websocket server failed: %w", err)
		}
		return nil
	}
}

func (s *WebSocketServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "Synheart Monitor\n\n")
	fmt.Fprintf(w, "WebSocket endpoint: %s\n", s.GetAddress())
	fmt.Fprintf(w, "Connected clients: %d\n", s.GetClientCount())
}

func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &wsClient{conn: conn}

	s.mu.Lock()
	s.clients[client] = true
	clientCount := len(s.clients)
	s.mu.Unlock()

	s.log.Info("display connected",
		zap.String("remote", r.RemoteAddr),
		zap.Int("clients", clientCount))

	defer func() {
		s.mu.Lock()
		delete(s.clients, client)
		clientCount := len(s.clients)
		s.mu.Unlock()

		conn.Close()
		s.log.Info("display disconnected", zap.Int("clients", clientCount))
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if s.commands == nil {
			continue
		}
		reply := s.commands.HandleCommand(msg)
		if reply == nil {
			continue
		}
		if err := client.write(websocket.TextMessage, reply); err != nil {
			s.log.Debug("reply failed", zap.Error(err))
			break
		}
	}
}

// Broadcast sends a frame to all connected clients
func (s *WebSocketServer) Broadcast(frame models.Frame) error {
	data, err := s.encoder.Encode(frame)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	messageType := websocket.TextMessage
	if s.encoder.Binary() {
		messageType = websocket.BinaryMessage
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for client := range s.clients {
		if err := client.write(messageType, data); err != nil {
			// the read loop removes the client
			s.log.Debug("send failed", zap.Error(err))
		}
	}
	return nil
}

// BroadcastFromChannel reads frames from a channel and broadcasts them
func (s *WebSocketServer) BroadcastFromChannel(ctx context.Context, frames <-chan models.Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if err := s.Broadcast(frame); err != nil {
				s.log.Warn("broadcast failed", zap.Error(err))
			}
		}
	}
}

// GetClientCount returns the number of connected clients
func (s *WebSocketServer) GetClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Shutdown closes every client and stops the HTTP server
func (s *WebSocketServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.mu.Lock()
	for client := range s.clients {
		client.conn.Close()
	}
	s.clients = make(map[*wsClient]bool)
	server := s.server
	s.mu.Unlock()

	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

// GetAddress returns the server address
func (s *WebSocketServer) GetAddress() string {
	return fmt.Sprintf("ws://%s:%d%s", s.host, s.port, WebSocketPath)
}
