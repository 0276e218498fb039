package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/projboard/projboard/internal/event"
)

// mockResponseWriter implements http.Flusher for testing
type mockResponseWriter struct {
	*httptest.ResponseRecorder
	flushed int
}

func (m *mockResponseWriter) Flush() {
	m.flushed++
}

func newMockResponseWriter() *mockResponseWriter {
	return &mockResponseWriter{
		ResponseRecorder: httptest.NewRecorder(),
	}
}

func TestNewSSEWriter(t *testing.T) {
	w := newMockResponseWriter()
	sse, err := newSSEWriter(w)
	if err != nil {
		t.Fatalf("newSSEWriter failed: %v", err)
	}
	if sse == nil {
		t.Fatal("SSE writer should not be nil")
	}
}

func TestNewSSEWriter_NoFlusher(t *testing.T) {
	w := &noFlushWriter{}
	_, err := newSSEWriter(w)
	if err == nil {
		t.Error("Expected error for writer without Flusher")
	}
}

type noFlushWriter struct{}

func (n *noFlushWriter) Header() http.Header       { return http.Header{} }
func (n *noFlushWriter) Write([]byte) (int, error) { return 0, nil }
func (n *noFlushWriter) WriteHeader(int)           {}

func TestSSEWriter_WriteEvent(t *testing.T) {
	w := newMockResponseWriter()
	sse, _ := newSSEWriter(w)

	err := sse.writeEvent("message", StreamEvent{Type: event.ProjectsUpdated, Properties: map[string]int{"version": 3}})
	if err != nil {
		t.Fatalf("writeEvent failed: %v", err)
	}

	body := w.Body.String()
	want := "event: message\ndata: {\"type\":\"projects.updated\",\"properties\":{\"version\":3}}\n\n"
	if body != want {
		t.Errorf("Unexpected frame:\n%q\nwant\n%q", body, want)
	}
	if w.flushed == 0 {
		t.Error("Expected Flush to be called")
	}
}

func TestSSEWriter_WriteHeartbeat(t *testing.T) {
	w := newMockResponseWriter()
	sse, _ := newSSEWriter(w)

	if err := sse.writeHeartbeat(); err != nil {
		t.Fatalf("writeHeartbeat failed: %v", err)
	}

	body := w.Body.String()
	if body != ": heartbeat\n\n" {
		t.Errorf("Expected heartbeat comment, got: %q", body)
	}
	if w.flushed == 0 {
		t.Error("Expected Flush to be called")
	}
}

// readFrames decodes data lines from an SSE body until the scanner stops.
func readFrames(resp *http.Response, frames chan<- StreamEvent) {
	defer close(frames)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var evt struct {
			Type       event.EventType `json:"type"`
			Properties json.RawMessage `json:"properties"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt); err != nil {
			continue
		}
		frames <- StreamEvent{Type: evt.Type, Properties: evt.Properties}
	}
}

func openStream(t *testing.T, srv *Server) (*http.Response, <-chan StreamEvent) {
	t.Helper()

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/event", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to open stream: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	frames := make(chan StreamEvent, 16)
	go readFrames(resp, frames)
	return resp, frames
}

func nextFrame(t *testing.T, frames <-chan StreamEvent, eventType event.EventType) StreamEvent {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				t.Fatalf("Stream closed while waiting for %s", eventType)
			}
			if f.Type == eventType {
				return f
			}
		case <-timeout:
			t.Fatalf("Timed out waiting for %s", eventType)
		}
	}
}

func TestAllEvents_Headers(t *testing.T) {
	srv := setupTestServer(t)
	resp, frames := openStream(t, srv)

	if resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Error("Expected Content-Type: text/event-stream")
	}
	if resp.Header.Get("Cache-Control") != "no-cache" {
		t.Error("Expected Cache-Control: no-cache")
	}
	if resp.Header.Get("X-Accel-Buffering") != "no" {
		t.Error("Expected X-Accel-Buffering: no")
	}

	f := nextFrame(t, frames, event.ServerConnected)
	var data ConnectedData
	if err := json.Unmarshal(f.Properties.(json.RawMessage), &data); err != nil {
		t.Fatalf("Failed to decode connected data: %v", err)
	}
	if data.Version != 0 {
		t.Errorf("Expected version 0, got %d", data.Version)
	}
}

func TestAllEvents_StreamsBoardChanges(t *testing.T) {
	srv := setupTestServer(t)
	_, frames := openStream(t, srv)
	nextFrame(t, frames, event.ServerConnected)

	srv.store.AddProject("Build API", "Design and implement", 3)

	var rendered event.ListRenderedData
	for rendered.ListID != "active-projects-list" {
		f := nextFrame(t, frames, event.ListRendered)
		if err := json.Unmarshal(f.Properties.(json.RawMessage), &rendered); err != nil {
			t.Fatalf("Failed to decode list.rendered: %v", err)
		}
	}
	if rendered.Version != 1 || rendered.Count != 1 {
		t.Errorf("Unexpected render: %+v", rendered)
	}
	if !strings.Contains(rendered.HTML, "3 persons assigned") {
		t.Errorf("Expected card markup, got %s", rendered.HTML)
	}

	f := nextFrame(t, frames, event.ProjectsUpdated)
	var updated event.ProjectsUpdatedData
	if err := json.Unmarshal(f.Properties.(json.RawMessage), &updated); err != nil {
		t.Fatalf("Failed to decode projects.updated: %v", err)
	}
	if updated.Version != 1 || len(updated.Projects) != 1 {
		t.Errorf("Unexpected update: %+v", updated)
	}
}

func TestAllEvents_ClosesOnShutdown(t *testing.T) {
	srv := setupTestServer(t)
	_, frames := openStream(t, srv)
	nextFrame(t, frames, event.ServerConnected)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-frames:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("Stream did not close after shutdown")
		}
	}
}
