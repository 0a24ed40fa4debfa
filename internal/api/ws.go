package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/observability"
)

// WSConfig configures WebSocket simulation sessions.
type WSConfig struct {
	// ReadTimeout is how long the server waits for the parameters message.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing frames.
	WriteTimeout time.Duration
	// ProgressStep is the minimum fraction increase between progress frames.
	ProgressStep float64
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Second,
		ProgressStep: 0.01,
	}
}

// Frame types sent to WebSocket clients.
const (
	FrameProgress = "progress"
	FrameResult   = "result"
	FrameError    = "error"
)

// Frame is one server-to-client WebSocket message.
type Frame struct {
	Type     string         `json:"type"`
	Fraction float64        `json:"fraction,omitempty"`
	Result   *domain.Result `json:"result,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// handleWSSimulate reads one parameter record, then streams progress frames
// and a final result or error frame. The run is cancelled when the client
// goes away.
func (s *Server) handleWSSimulate(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logf("WebSocket upgrade failed: %v", err)
		observability.RecordWSSession("upgrade_failed")
		return
	}
	defer conn.Close()

	sess := &wsSession{conn: conn, writeTimeout: s.ws.WriteTimeout}

	p := domain.DefaultParams()
	conn.SetReadDeadline(time.Now().Add(s.ws.ReadTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		observability.RecordWSSession("read_failed")
		return
	}
	if err := json.Unmarshal(data, &p); err != nil {
		sess.send(Frame{Type: FrameError, Message: "invalid json"})
		sess.close()
		observability.RecordWSSession("bad_request")
		return
	}
	conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Any read error after the parameters means the client left.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	var last float64
	result, err := s.orch.RunWithProgress(ctx, p, func(f float64) {
		if f < 1 && f-last < s.ws.ProgressStep {
			return
		}
		last = f
		sess.send(Frame{Type: FrameProgress, Fraction: f})
	})
	if err != nil {
		if ctx.Err() != nil {
			observability.RecordWSSession("client_gone")
			return
		}
		s.logf("WebSocket simulation error: %v", err)
		sess.send(Frame{Type: FrameError, Message: err.Error()})
		sess.close()
		observability.RecordWSSession("error")
		return
	}

	sess.send(Frame{Type: FrameResult, Result: result})
	sess.close()
	observability.RecordWSSession("ok")
}

// wsSession serializes writes to one connection.
type wsSession struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

func (s *wsSession) send(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteJSON(f)
}

func (s *wsSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
