package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

func testSnapshot(seq uint64) viewstate.Snapshot {
	return viewstate.Snapshot{
		ID:      "snap",
		Seq:     seq,
		PageURL: "http://localhost:3000",
		ViewState: viewstate.ViewState{
			"n1": {NodeID: "n1", Rect: viewstate.Rect{X: 10, Y: 20, Width: 100, Height: 50}},
		},
	}
}

type failingSink struct{ calls int }

func (f *failingSink) Send(context.Context, viewstate.Snapshot) error {
	f.calls++
	return errors.New("down")
}
func (f *failingSink) Close() error { return nil }

func TestRouter_FanOutDespiteError(t *testing.T) {
	bad := &failingSink{}
	var got []uint64
	good := NewCallback(func(_ context.Context, s viewstate.Snapshot) error {
		got = append(got, s.Seq)
		return nil
	})

	r := NewRouter(nil, bad, good)
	err := r.Send(context.Background(), testSnapshot(7))
	if err == nil {
		t.Fatal("expected the failing sink's error")
	}
	if bad.calls != 1 || len(got) != 1 || got[0] != 7 {
		t.Fatalf("fan-out: bad=%d good=%v", bad.calls, got)
	}
	if r.Len() != 2 {
		t.Errorf("Len: got %d", r.Len())
	}
}

func TestStdout_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdout(&buf)
	s.Send(context.Background(), testSnapshot(1))
	s.Send(context.Background(), testSnapshot(2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}
	var env struct {
		Type string             `json:"type"`
		Data viewstate.Snapshot `json:"data"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &env); err != nil {
		t.Fatal(err)
	}
	if env.Type != "snapshot" || env.Data.Seq != 2 {
		t.Fatalf("envelope: got %+v", env)
	}
	if env.Data.ViewState["n1"].Rect.Y != 20 {
		t.Errorf("rect lost in encoding: %+v", env.Data.ViewState["n1"])
	}
}

func TestWebhook_RetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type: %q", r.Header.Get("Content-Type"))
		}
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookBackoff(time.Millisecond))
	if err := wh.Send(context.Background(), testSnapshot(1)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("hits: got %d, want 3", hits.Load())
	}
}

func TestWebhook_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookRetries(1), WithWebhookBackoff(time.Millisecond))
	err := wh.Send(context.Background(), testSnapshot(1))
	if err == nil || !strings.Contains(err.Error(), "retries exhausted") {
		t.Fatalf("err: got %v", err)
	}
}

func TestWebhook_LogsTruncatedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("x", 3*maxErrorBody)))
	}))
	defer srv.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	wh := NewWebhook(srv.URL, WithWebhookRetries(0), WithWebhookLogger(logger))
	if err := wh.Send(context.Background(), testSnapshot(1)); err == nil {
		t.Fatal("bad status should fail")
	}

	out := logs.String()
	if !strings.Contains(out, "body="+strings.Repeat("x", maxErrorBody)) {
		t.Fatalf("log missing the %d-byte excerpt:\n%.200s", maxErrorBody, out)
	}
	if strings.Contains(out, strings.Repeat("x", maxErrorBody+1)) {
		t.Error("excerpt longer than the cap")
	}
}

func TestHub_PushesLatestAndRelaysCommands(t *testing.T) {
	cmds := make(chan Command, 1)
	hub := NewHub()
	hub.SetCommandHandler(func(_ context.Context, c Command) error {
		cmds <- c
		return nil
	})
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	// Published before the editor connects.
	hub.Send(context.Background(), testSnapshot(1))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var env struct {
		Type string             `json:"type"`
		Data viewstate.Snapshot `json:"data"`
	}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read latest: %v", err)
	}
	if env.Data.Seq != 1 {
		t.Fatalf("latest: got seq %d, want 1", env.Data.Seq)
	}

	// Wait for registration before publishing live.
	deadline := time.Now().Add(5 * time.Second)
	for hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.Send(context.Background(), testSnapshot(2))
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read live: %v", err)
	}
	if env.Data.Seq != 2 {
		t.Fatalf("live: got seq %d, want 2", env.Data.Seq)
	}

	id := "n1"
	if err := conn.WriteJSON(Command{Type: "select", NodeID: &id}); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-cmds:
		if c.Type != "select" || c.NodeID == nil || *c.NodeID != "n1" {
			t.Fatalf("command: got %+v", c)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("command not relayed")
	}
}
