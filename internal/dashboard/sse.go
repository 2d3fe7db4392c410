package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"PulseboardSaaS/internal/logger"
)

// Event is one server-sent message pushed to connected scorecard clients.
type Event struct {
	Type        string      `json:"type"`
	ScorecardID string      `json:"scorecard_id,omitempty"`
	Payload     interface{} `json:"payload,omitempty"`
}

type SSEClient struct {
	userID   string
	events   chan Event
	done     chan struct{}
	lastPing time.Time
}

// SSEServer fans events out to connected clients. Clients that fall behind
// lose events rather than blocking the publisher.
type SSEServer struct {
	mu      sync.RWMutex
	clients map[string]*SSEClient
	stopCh  chan struct{}
}

var globalSSEServer *SSEServer

func NewSSEServer() *SSEServer {
	s := &SSEServer{
		clients: make(map[string]*SSEClient),
		stopCh:  make(chan struct{}),
	}
	globalSSEServer = s
	go s.pingClients()
	return s
}

func GetSSEServer() *SSEServer {
	return globalSSEServer
}

// HandleSSE upgrades the request to an event stream for the given user.
func (s *SSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	client := &SSEClient{
		userID:   userID,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
		lastPing: time.Now(),
	}
	s.mu.Lock()
	s.clients[userID] = client
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, userID)
		s.mu.Unlock()
	}()

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case ev := <-client.events:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}

// Broadcast pushes an event to every connected client.
func (s *SSEServer) Broadcast(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.events <- ev:
		default:
			// slow client, drop the event
		}
	}
}

// BroadcastGlobal publishes through the global server when one exists.
func BroadcastGlobal(ev Event) {
	if globalSSEServer != nil {
		globalSSEServer.Broadcast(ev)
	}
}

func (s *SSEServer) pingClients() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Broadcast(Event{Type: "ping"})
		}
	}
}

// Shutdown disconnects all clients and stops the ping loop.
func (s *SSEServer) Shutdown() {
	close(s.stopCh)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		close(c.done)
		delete(s.clients, id)
	}
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("SSE server shut down")
	}
}
