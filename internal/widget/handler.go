// Package widget hosts the embeddable scheduling widget: each browser
// session gets its own booking controller, receives rendered view models
// and sends user intents over WebSocket or the HTTP fallback.
package widget

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/zintasclinic/booking-widget/internal/observability/metrics"
	"github.com/zintasclinic/booking-widget/internal/schedule"
	"github.com/zintasclinic/booking-widget/pkg/logging"
)

// Handler manages widget sessions and their controllers.
type Handler struct {
	svc     schedule.BookingService
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id         string
	controller *schedule.Controller
	cancel     context.CancelFunc

	mu       sync.RWMutex
	conn     *websocket.Conn
	lastView schedule.View
	hasView  bool
}

// InboundMessage is what the widget frontend sends.
type InboundMessage struct {
	Type      string                  `json:"type"` // "select_date", "calendar_click", "select_slot", "submit", "ping"
	SessionID string                  `json:"session_id,omitempty"`
	Date      string                  `json:"date,omitempty"`
	Slot      string                  `json:"slot,omitempty"`
	Form      schedule.FormSubmission `json:"form,omitempty"`
}

// OutboundMessage is what we send to the widget frontend.
type OutboundMessage struct {
	Type      string         `json:"type"` // "view", "session", "error", "pong"
	SessionID string         `json:"session_id,omitempty"`
	View      *schedule.View `json:"view,omitempty"`
	Text      string         `json:"text,omitempty"`
}

// NewHandler creates a widget session handler. metrics may be nil.
func NewHandler(svc schedule.BookingService, m *metrics.SchedulingMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		svc:      svc,
		metrics:  m,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// startSession creates a session, starts its controller loop and kicks off
// the initial load for today's date.
func (h *Handler) startSession(id string) *session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{id: id, cancel: cancel}
	s.controller = schedule.NewController(h.svc, s.deliver, h.metrics, h.logger)

	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()

	go s.controller.Run(ctx)

	// New sessions start on today's date with both views loading.
	s.controller.Dispatch(schedule.LoadRequested{Date: time.Now().Format("2006-01-02")})
	return s
}

func (h *Handler) lookupSession(id string) (*session, bool) {
	h.mu.RLock()
	s, ok := h.sessions[id]
	h.mu.RUnlock()
	return s, ok
}

func (h *Handler) closeSession(s *session) {
	h.mu.Lock()
	if h.sessions[s.id] == s {
		delete(h.sessions, s.id)
	}
	h.mu.Unlock()
	s.cancel()
}

// deliver is the controller's onUpdate sink: it remembers the latest view
// for the HTTP fallback and pushes it to a connected socket.
func (s *session) deliver(v schedule.View) {
	s.mu.Lock()
	s.lastView = v
	s.hasView = true
	conn := s.conn
	s.mu.Unlock()

	if conn != nil {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "view", SessionID: s.id, View: &v})
	}
}

func (s *session) attach(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	v, has := s.lastView, s.hasView
	s.mu.Unlock()

	if has {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "view", SessionID: s.id, View: &v})
	}
}

func (s *session) detach(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
}

// Close stops every active session. Called on server shutdown.
func (h *Handler) Close() {
	h.mu.Lock()
	sessions := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.cancel()
	}
}

// HandleWebSocket upgrades to WebSocket and streams view models while
// receiving intents.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	s, resumed := (*session)(nil), false
	if sessionID != "" {
		s, resumed = h.lookupSession(sessionID)
	}
	if s == nil {
		if sessionID == "" {
			sessionID = generateSessionID()
		}
		s = h.startSession(sessionID)
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: s.id})
	s.attach(conn)
	defer func() {
		s.detach(conn)
		if !resumed {
			h.closeSession(s)
		}
	}()

	h.logger.Info("widget: connection opened", "session_id", s.id)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("widget: connection closed", "session_id", s.id, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if ev, ok := intentEvent(msg); ok {
			s.controller.Dispatch(ev)
		}
	}
}

// intentEvent maps an inbound message to a controller event.
func intentEvent(msg InboundMessage) (schedule.Event, bool) {
	switch msg.Type {
	case "select_date":
		return schedule.LoadRequested{Date: msg.Date}, true
	case "calendar_click":
		return schedule.CalendarDayClicked{Date: msg.Date}, true
	case "select_slot":
		return schedule.SlotPicked{Label: msg.Slot}, true
	case "submit":
		return schedule.SubmitRequested{Form: msg.Form}, true
	}
	return nil, false
}

// HandleIntent is the HTTP fallback for sending intents. An unknown or
// missing session ID starts a new session.
func (h *Handler) HandleIntent(w http.ResponseWriter, r *http.Request) {
	var msg InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ev, ok := intentEvent(msg)
	if !ok {
		http.Error(w, "unknown intent type", http.StatusBadRequest)
		return
	}

	s, found := (*session)(nil), false
	if msg.SessionID != "" {
		s, found = h.lookupSession(msg.SessionID)
	}
	if !found {
		id := msg.SessionID
		if id == "" {
			id = generateSessionID()
		}
		s = h.startSession(id)
	}

	s.controller.Dispatch(ev)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":     "accepted",
		"session_id": s.id,
	})
}

// HandleView returns the latest rendered view for a session.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	s, ok := h.lookupSession(sessionID)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	s.mu.RLock()
	v, has := s.lastView, s.hasView
	s.mu.RUnlock()
	if !has {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "pending"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
