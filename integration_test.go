package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/inercaso/memory-scramble/board"
	"github.com/inercaso/memory-scramble/config"
	"github.com/inercaso/memory-scramble/transform"
	"github.com/inercaso/memory-scramble/web"
)

// setupTestServer creates a test HTTP server over a fresh 5x5 alternating
// A/B board.
func setupTestServer(t *testing.T) (*httptest.Server, *board.Board, func()) {
	t.Helper()

	values := make([]string, 25)
	for i := range values {
		if i%2 == 0 {
			values[i] = "A"
		} else {
			values[i] = "B"
		}
	}
	b, err := board.New(5, 5, values)
	if err != nil {
		t.Fatalf("board.New: %v", err)
	}

	cfg := config.Defaults()
	transforms := transform.Defaults()

	ctx, cancel := context.WithCancel(context.Background())
	hub := web.NewHub(cfg, b, transforms)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	h := web.NewHandler(cfg, b, transforms)
	h.Routes(mux, hub)

	server := httptest.NewServer(mux)
	cleanup := func() {
		server.Close()
		cancel()
	}
	return server, b, cleanup
}

// get performs a GET and returns status and body.
func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

// spotLine returns the SPOT line for cell index i of a BOARD_STATE body.
func spotLine(t *testing.T, body string, i int) string {
	t.Helper()
	lines := strings.Split(body, "\n")
	if i+1 >= len(lines) {
		t.Fatalf("body too short for spot %d:\n%s", i, body)
	}
	return lines[i+1]
}

func TestIntegration_LookAndFlip(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	status, body := get(t, server.URL+"/look/alice")
	if status != http.StatusOK {
		t.Fatalf("look status = %d", status)
	}
	if !strings.HasPrefix(body, "5x5\n") {
		t.Fatalf("look body starts with %q", body[:min(len(body), 10)])
	}

	status, body = get(t, server.URL+"/flip/alice/0,0")
	if status != http.StatusOK {
		t.Fatalf("flip status = %d, body %q", status, body)
	}
	if got := spotLine(t, body, 0); got != "my A" {
		t.Errorf("spot 0 = %q, want %q", got, "my A")
	}

	// Another player sees the same card as merely face-up.
	_, body = get(t, server.URL+"/look/bob")
	if got := spotLine(t, body, 0); got != "up A" {
		t.Errorf("bob's spot 0 = %q, want %q", got, "up A")
	}
}

func TestIntegration_FlipErrorStatuses(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	// Out of range
	status, _ := get(t, server.URL+"/flip/alice/9,9")
	if status != http.StatusBadRequest {
		t.Errorf("out-of-range flip status = %d, want 400", status)
	}

	// Controlled: alice holds (0,0), then tries it as her own second card.
	if status, _ := get(t, server.URL+"/flip/alice/0,0"); status != http.StatusOK {
		t.Fatalf("first flip status = %d", status)
	}
	status, _ = get(t, server.URL+"/flip/alice/0,0")
	if status != http.StatusConflict {
		t.Errorf("self-second flip status = %d, want 409", status)
	}

	// NoCard: remove (0,0) and (0,2) via a match, then flip one of them.
	for _, p := range []string{"0,0", "0,2", "1,1"} {
		if status, body := get(t, server.URL+"/flip/alice/"+p); status != http.StatusOK {
			t.Fatalf("flip %s status = %d, body %q", p, status, body)
		}
	}
	status, _ = get(t, server.URL+"/flip/bob/0,0")
	if status != http.StatusNotFound {
		t.Errorf("flip on removed cell status = %d, want 404", status)
	}

	// Invalid player id
	status, _ = get(t, server.URL+"/look/%20")
	if status != http.StatusBadRequest {
		t.Errorf("whitespace player id status = %d, want 400", status)
	}
}

func TestIntegration_WatchLongPoll(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	type result struct {
		status int
		body   string
	}
	done := make(chan result, 1)
	go func() {
		status, body := get(t, server.URL+"/watch/carol")
		done <- result{status, body}
	}()

	// Give the watch request time to register, then trigger a change.
	time.Sleep(200 * time.Millisecond)
	select {
	case res := <-done:
		t.Fatalf("watch returned before any change: %d %q", res.status, res.body)
	default:
	}

	if status, _ := get(t, server.URL+"/flip/alice/0,0"); status != http.StatusOK {
		t.Fatalf("flip failed")
	}

	select {
	case res := <-done:
		if res.status != http.StatusOK {
			t.Fatalf("watch status = %d", res.status)
		}
		if got := spotLine(t, res.body, 0); got != "up A" {
			t.Errorf("watch spot 0 = %q, want %q", got, "up A")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not wake after a change")
	}
}

func TestIntegration_MapTransform(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	if status, _ := get(t, server.URL+"/flip/alice/0,0"); status != http.StatusOK {
		t.Fatalf("flip failed")
	}

	status, body := get(t, server.URL+"/map/alice/lower")
	if status != http.StatusOK {
		t.Fatalf("map status = %d, body %q", status, body)
	}
	if got := spotLine(t, body, 0); got != "my a" {
		t.Errorf("spot 0 = %q, want %q", got, "my a")
	}

	status, _ = get(t, server.URL+"/map/alice/nope")
	if status != http.StatusBadRequest {
		t.Errorf("unknown transform status = %d, want 400", status)
	}
}

func TestIntegration_WebSocketFrames(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/dave"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readFrame := func() map[string]any {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal frame: %v\ndata: %s", err, data)
		}
		return msg
	}

	// Initial frame arrives unprompted.
	msg := readFrame()
	if msg["type"] != "board" {
		t.Fatalf("first frame type = %v, want board", msg["type"])
	}
	state, _ := msg["state"].(string)
	if !strings.HasPrefix(state, "5x5\n") {
		t.Fatalf("unexpected initial state %q", state)
	}

	// A flip command yields a direct reply and a change-driven frame.
	flip, _ := json.Marshal(web.FlipMsg{Type: "flip", Row: 0, Col: 0})
	if err := conn.WriteMessage(websocket.TextMessage, flip); err != nil {
		t.Fatalf("write: %v", err)
	}
	sawMy := false
	for i := 0; i < 2; i++ {
		msg = readFrame()
		if msg["type"] != "board" {
			t.Fatalf("frame type = %v, want board", msg["type"])
		}
		state, _ = msg["state"].(string)
		if spotLine(t, state, 0) == "my A" {
			sawMy = true
		}
	}
	if !sawMy {
		t.Error("never saw the flipped card as controlled")
	}

	// An unknown command is answered with an error frame.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg = readFrame()
	if msg["type"] != "error" {
		t.Fatalf("frame type = %v, want error", msg["type"])
	}
}
