package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/synheart/synheart-monitor/internal/alert"
	"github.com/synheart/synheart-monitor/internal/encoding"
	"github.com/synheart/synheart-monitor/internal/models"
)

// SSEPath is the endpoint served by SSEServer
const SSEPath = "/monitor/sse"

// SSE event names
const (
	EventFrame = "frame"
	EventAlarm = "alarm"
)

// sseRetryMillis is the reconnect delay suggested to EventSource clients
const sseRetryMillis = 2000

// AlarmEvent is the payload of an alarm event, sent whenever the critical
// condition is raised or cleared
type AlarmEvent struct {
	Critical   bool          `json:"critical"`
	OutOfRange []alert.Field `json:"out_of_range,omitempty"`
	Sequence   int64         `json:"sequence"`
}

type sseMessage struct {
	id    int64
	event string
	data  []byte
}

func (m sseMessage) writeTo(w http.ResponseWriter) {
	fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", m.id, m.event, m.data)
}

// SSEServer streams frames to display clients via Server-Sent Events. Every
// frame is a "frame" event whose id is the frame sequence; changes of the
// critical condition are also announced as "alarm" events. A client that
// connects late gets the most recent frame at once. A client that falls
// behind loses its oldest queued messages, never the newest.
type SSEServer struct {
	host    string
	port    int
	encoder encoding.Encoder
	log     *zap.Logger

	mu       sync.RWMutex
	clients  map[chan sseMessage]struct{}
	server   *http.Server
	latest   *sseMessage
	critical bool
}

// NewSSEServer creates a new SSE server
func NewSSEServer(host string, port int, encoder encoding.Encoder, log *zap.Logger) *SSEServer {
	if encoder == nil {
		encoder = encoding.NewJSONEncoder()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SSEServer{
		host:    host,
		port:    port,
		encoder: encoder,
		log:     log,
		clients: make(map[chan sseMessage]struct{}),
	}
}

// Start serves until ctx is cancelled
func (s *SSEServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc(SSEPath, s.handleSSE)
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
		s.log.Info("sse server listening", zap.String("address", s.GetAddress()))
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
			return fmt.Errorf("SSE server failed: %w", err)
		}
		return nil
	}
}

func (s *SSEServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "Synheart Monitor SSE\n\nEndpoint: %s\nEvents: %s, %s\n", s.GetAddress(), EventFrame, EventAlarm)
}

func (s *SSEServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	messages := make(chan sseMessage, 64)
	latest := s.addClient(messages)
	defer s.removeClient(messages)

	fmt.Fprintf(w, "retry: %d\n\n", sseRetryMillis)
	if latest != nil {
		latest.writeTo(w)
	}
	flusher.Flush()

	fields := []zap.Field{zap.Int("clients", s.GetClientCount())}
	if last := r.Header.Get("Last-Event-ID"); last != "" {
		if seq, err := strconv.ParseInt(last, 10, 64); err == nil {
			fields = append(fields, zap.Int64("resumed_after", seq))
		}
	}
	s.log.Info("sse client connected", fields...)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			msg.writeTo(w)
			flusher.Flush()
		}
	}
}

// addClient registers ch and returns the most recent frame message
func (s *SSEServer) addClient(ch chan sseMessage) *sseMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[ch] = struct{}{}
	return s.latest
}

func (s *SSEServer) removeClient(ch chan sseMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[ch]; exists {
		delete(s.clients, ch)
		close(ch)
		s.log.Info("sse client disconnected", zap.Int("clients", len(s.clients)))
	}
}

// Broadcast sends a frame to all connected clients, preceded by an alarm
// event when the frame raises or clears the critical condition
func (s *SSEServer) Broadcast(frame models.Frame) error {
	data, err := s.encoder.Encode(frame)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	if s.encoder.Binary() {
		data = []byte(base64.StdEncoding.EncodeToString(data))
	}
	msg := sseMessage{id: frame.Meta.Sequence, event: EventFrame, data: data}

	s.mu.Lock()
	defer s.mu.Unlock()

	if frame.Alerts.Critical != s.critical {
		s.critical = frame.Alerts.Critical
		alarm, err := json.Marshal(AlarmEvent{
			Critical:   frame.Alerts.Critical,
			OutOfRange: frame.Alerts.OutOfRange,
			Sequence:   frame.Meta.Sequence,
		})
		if err != nil {
			return fmt.Errorf("failed to encode alarm: %w", err)
		}
		s.send(sseMessage{id: frame.Meta.Sequence, event: EventAlarm, data: alarm})
	}
	s.latest = &msg
	s.send(msg)
	return nil
}

// send must be called with the lock held
func (s *SSEServer) send(msg sseMessage) {
	for ch := range s.clients {
		select {
		case ch <- msg:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- msg:
		default:
		}
	}
}

// BroadcastFromChannel reads frames and broadcasts them
func (s *SSEServer) BroadcastFromChannel(ctx context.Context, frames <-chan models.Frame) error {
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

// GetClientCount returns connected client count
func (s *SSEServer) GetClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Shutdown stops the server and disconnects every client
func (s *SSEServer) Shutdown() error {
	s.mu.Lock()
	for ch := range s.clients {
		close(ch)
	}
	s.clients = make(map[chan sseMessage]struct{})
	server := s.server
	s.mu.Unlock()

	if server != nil {
		return server.Close()
	}
	return nil
}

// GetAddress returns the server address
func (s *SSEServer) GetAddress() string {
	return fmt.Sprintf("http://%s:%d%s", s.host, s.port, SSEPath)
}
