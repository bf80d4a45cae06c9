package devtools

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pedronauck/reworm/pkg/reworm"
	"github.com/pedronauck/reworm/pkg/value"
)

func newTestServer(t *testing.T) (*reworm.Container, *Server, *httptest.Server) {
	t.Helper()
	c := reworm.NewContainer()
	c.Create("user", value.Record{"name": value.String("John")})
	c.Create("count", value.Int(0))

	s := New(c)
	ts := httptest.NewServer(s)
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return c, s, ts
}

func TestListStores(t *testing.T) {
	c, _, ts := newTestServer(t)
	if err := c.Use("count").Set(value.Int(3)); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/stores")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var stores []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&stores); err != nil {
		t.Fatal(err)
	}
	if len(stores) != 2 {
		t.Fatalf("stores = %v", stores)
	}
	if stores[0]["id"] != "user" || stores[1]["id"] != "count" {
		t.Errorf("order = %v, %v", stores[0]["id"], stores[1]["id"])
	}
	if stores[1]["initial"] != float64(0) || stores[1]["current"] != float64(3) {
		t.Errorf("count = %v", stores[1])
	}
	// The inspector follows broadcasts without activating stores.
	if stores[1]["phase"] != "initialized" {
		t.Errorf("phase = %v", stores[1]["phase"])
	}
}

func TestGetStore(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/stores/user")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	current, _ := info["current"].(map[string]any)
	if current["name"] != "John" {
		t.Errorf("info = %v", info)
	}
}

func TestGetStore_Unknown(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/stores/ghost")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "R002" || body["store"] != "ghost" {
		t.Errorf("body = %v", body)
	}
}

func dialStream(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev map[string]any
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	return ev
}

func waitForClients(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", s.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStream_SnapshotThenUpdates(t *testing.T) {
	c, s, ts := newTestServer(t)
	conn := dialStream(t, ts)

	first := readEvent(t, conn)
	second := readEvent(t, conn)
	if first["type"] != "snapshot" || first["store"] != "count" {
		t.Errorf("first = %v", first)
	}
	if second["type"] != "snapshot" || second["store"] != "user" {
		t.Errorf("second = %v", second)
	}

	waitForClients(t, s, 1)

	if err := c.Use("user").Set(value.Record{"name": value.String("Michael")}); err != nil {
		t.Fatal(err)
	}
	update := readEvent(t, conn)
	if update["type"] != "update" || update["store"] != "user" {
		t.Fatalf("update = %v", update)
	}
	v, _ := update["value"].(map[string]any)
	if v["name"] != "Michael" {
		t.Errorf("value = %v", update["value"])
	}

	// Suppressed writes produce no event; the next real change does.
	if err := c.Use("user").Set(value.Record{"name": value.String("Michael")}); err != nil {
		t.Fatal(err)
	}
	if err := c.Use("count").Set(value.Int(1)); err != nil {
		t.Fatal(err)
	}
	next := readEvent(t, conn)
	if next["store"] != "count" {
		t.Errorf("next = %v", next)
	}
}

func TestClose_DisconnectsClients(t *testing.T) {
	c, s, ts := newTestServer(t)
	conn := dialStream(t, ts)
	readEvent(t, conn)
	readEvent(t, conn)
	waitForClients(t, s, 1)

	s.Close()
	s.Close()

	if s.ClientCount() != 0 {
		t.Errorf("clients = %d", s.ClientCount())
	}
	if c.Emitter().Len() != 0 {
		t.Errorf("emitter listeners = %d", c.Emitter().Len())
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to be closed")
	}
}

func TestHandleBroadcast_DropsForSlowClients(t *testing.T) {
	c := reworm.NewContainer()
	s := New(c, WithBufferSize(1))
	defer s.Close()

	client := &streamClient{send: make(chan []byte, 1)}
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()

	s.handleBroadcast("a", value.Int(1))
	s.handleBroadcast("a", value.Int(2))

	if len(client.send) != 1 {
		t.Fatalf("queued = %d, want 1", len(client.send))
	}
	var ev Event
	raw := <-client.send
	if err := json.Unmarshal(raw, &struct {
		Type  *EventType `json:"type"`
		Store *string    `json:"store"`
	}{&ev.Type, &ev.Store}); err != nil {
		t.Fatal(err)
	}
	if ev.Type != EventUpdate || ev.Store != "a" {
		t.Errorf("event = %+v", ev)
	}
}

func TestStream_SnapshotLargerThanBuffer(t *testing.T) {
	c := reworm.NewContainer()
	for i := 0; i < 100; i++ {
		c.Create(fmt.Sprintf("store-%03d", i), value.Int(int64(i)))
	}
	s := New(c, WithBufferSize(4))
	ts := httptest.NewServer(s)
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})

	conn := dialStream(t, ts)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ev := readEvent(t, conn)
		if ev["type"] != "snapshot" {
			t.Fatalf("event %d = %v", i, ev)
		}
		seen[ev["store"].(string)] = true
	}
	if len(seen) != 100 {
		t.Errorf("snapshot covered %d of 100 stores", len(seen))
	}
}

func TestAttach_BroadcastsQueueAfterSnapshot(t *testing.T) {
	c := reworm.NewContainer()
	c.Create("a", value.Int(1))
	c.Create("b", value.Int(2))
	s := New(c, WithBufferSize(1))
	defer s.Close()

	client, ok := s.attach(nil)
	if !ok {
		t.Fatal("attach refused")
	}
	if s.ClientCount() != 1 {
		t.Fatalf("clients = %d", s.ClientCount())
	}

	if err := c.Use("a").Set(value.Int(10)); err != nil {
		t.Fatal(err)
	}

	var got []string
	for len(client.send) > 0 {
		var ev struct {
			Type  EventType `json:"type"`
			Store string    `json:"store"`
			Value any       `json:"value"`
		}
		if err := json.Unmarshal(<-client.send, &ev); err != nil {
			t.Fatal(err)
		}
		got = append(got, fmt.Sprintf("%s:%s=%v", ev.Type, ev.Store, ev.Value))
	}
	want := "snapshot:a=1,snapshot:b=2,update:a=10"
	if strings.Join(got, ",") != want {
		t.Errorf("queue = %v, want %s", got, want)
	}
}

func TestAttach_AfterClose(t *testing.T) {
	s := New(reworm.NewContainer())
	s.Close()
	if _, ok := s.attach(nil); ok {
		t.Error("attach should fail after Close")
	}
}
