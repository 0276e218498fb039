package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/projboard/projboard/internal/event"
	"github.com/projboard/projboard/internal/logging"
)

// StreamEvent is a single frame of the event stream.
type StreamEvent struct {
	Type       event.EventType `json:"type"`
	Properties any             `json:"properties"`
}

// ConnectedData is the payload of the first frame on every stream.
type ConnectedData struct {
	Version uint64 `json:"version"`
}

const (
	// SSEHeartbeatInterval is the interval for SSE heartbeats.
	SSEHeartbeatInterval = 30 * time.Second
)

// sseWriter wraps http.ResponseWriter for SSE.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	rc      *http.ResponseController
}

// newSSEWriter creates a new SSE writer.
func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	rc := http.NewResponseController(w)

	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	return &sseWriter{w: w, flusher: flusher, rc: rc}, nil
}

// writeEvent writes one SSE frame and flushes it.
func (s *sseWriter) writeEvent(eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", eventType, jsonData); err != nil {
		return err
	}

	// ResponseController sees through middleware wrappers; fall back to the Flusher.
	if flushErr := s.rc.Flush(); flushErr != nil {
		s.flusher.Flush()
	}
	return nil
}

// writeHeartbeat writes an SSE heartbeat comment.
func (s *sseWriter) writeHeartbeat() error {
	if _, err := fmt.Fprintf(s.w, ": heartbeat\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// allEvents handles GET /event
// Streams every board event until the client disconnects or the server shuts down.
func (s *Server) allEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	// Subscribe before announcing the version so no later change is missed.
	events, err := s.bus.Stream(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternalError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	sse.flusher.Flush()

	connected := StreamEvent{
		Type:       event.ServerConnected,
		Properties: ConnectedData{Version: s.board.Version()},
	}
	if err := sse.writeEvent("message", connected); err != nil {
		return
	}

	log := logging.Component("sse").With().Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("Event stream opened")
	defer log.Debug().Msg("Event stream closed")

	ticker := time.NewTicker(SSEHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			return
		case env, ok := <-events:
			if !ok {
				return
			}
			frame := StreamEvent{
				Type:       env.Type,
				Properties: env.Data,
			}
			if err := sse.writeEvent("message", frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := sse.writeHeartbeat(); err != nil {
				return
			}
		}
	}
}
