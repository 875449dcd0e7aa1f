package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Lounge/internal/adapters/signal"
	"github.com/dkeye/Lounge/internal/app"
	"github.com/dkeye/Lounge/internal/config"
	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Mode:       "test",
		StaticPath: t.TempDir(),
		Secret:     "test-secret-test-secret-test-sec",
	}
	room := domain.NewRoom(domain.DefaultRoomID)
	hub := signal.NewHub()
	manager := app.NewRoomSessionManager(room, hub)
	ctrl := signal.NewSignalWSController(hub, manager, signal.Options{
		SendBuffer:   16,
		ReadLimit:    4096,
		PingPeriod:   time.Second,
		WriteTimeout: time.Second,
	})

	srv := httptest.NewServer(SetupRouter(ctx, cfg, ctrl, room))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	if err := conn.WriteJSON(core.Envelope[any]{Event: event, Data: data}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

// readUntil skips frames until one named event arrives and decodes its data.
func readUntil(t *testing.T, conn *websocket.Conn, event string, out any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var env core.Envelope[json.RawMessage]
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		if env.Event != event {
			continue
		}
		if out != nil {
			if err := json.Unmarshal(env.Data, out); err != nil {
				t.Fatalf("decode %s data %s: %v", event, env.Data, err)
			}
		}
		return
	}
}

func getRoom(t *testing.T, srv *httptest.Server) roomView {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/room")
	if err != nil {
		t.Fatalf("GET /api/room: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/room status = %d", resp.StatusCode)
	}
	var v roomView
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode room: %v", err)
	}
	return v
}

func TestUp(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/up")
	if err != nil {
		t.Fatalf("GET /up: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var hasSession bool
	for _, c := range resp.Cookies() {
		if c.Name == sessionName {
			hasSession = true
		}
	}
	if !hasSession {
		t.Fatalf("session cookie %q not set", sessionName)
	}
}

func TestAliceAndBobOverWebSocket(t *testing.T) {
	srv := newTestServer(t)

	a := dial(t, srv)
	var ackA core.ConnectionPayload
	readUntil(t, a, core.EventConnection, &ackA)
	if ackA.ClientID == "" {
		t.Fatalf("empty client id")
	}

	b := dial(t, srv)
	var ackB core.ConnectionPayload
	readUntil(t, b, core.EventConnection, &ackB)
	if ackB.ClientID == ackA.ClientID {
		t.Fatalf("connections share id %s", ackA.ClientID)
	}

	send(t, a, core.EventSetName, core.SetNamePayload{Name: "Alice"})
	var okA core.NameSetPayload
	readUntil(t, a, core.EventNameSet, &okA)
	if !okA.Success {
		t.Fatalf("nameSet success = false")
	}

	send(t, b, core.EventSetName, core.SetNamePayload{Name: "Bob"})
	var countB core.ClientsCountPayload
	readUntil(t, b, core.EventClientsCount, &countB)
	if countB.Count != 2 {
		t.Fatalf("B clientsCount = %d, want 2", countB.Count)
	}
	readUntil(t, b, core.EventNameSet, nil)

	var joinNotice string
	readUntil(t, a, core.EventJoinPerson, &joinNotice)
	if joinNotice != "Bob 님이 입장하셨습니다." {
		t.Fatalf("joinPerson = %q", joinNotice)
	}

	if v := getRoom(t, srv); v.ID != "1" || v.Count != 2 {
		t.Fatalf("room = %+v, want id 1 count 2", v)
	}

	send(t, a, core.EventMessage, core.MessagePayload{ID: ackA.ClientID, Message: "hi"})
	var stranger core.StrangerPayload
	readUntil(t, b, core.EventStranger, &stranger)
	if stranger != (core.StrangerPayload{ResCode: "0", Message: "hi", Name: "Alice"}) {
		t.Fatalf("stranger = %+v", stranger)
	}
	var result core.ResultPayload
	readUntil(t, a, core.EventResult, &result)
	if result != (core.ResultPayload{ResCode: "0", Message: "hi"}) {
		t.Fatalf("result = %+v", result)
	}

	_ = b.Close()
	var leaveNotice string
	readUntil(t, a, core.EventOutPerson, &leaveNotice)
	if leaveNotice != "Bob 님이 퇴장하셨습니다." {
		t.Fatalf("outPerson = %q", leaveNotice)
	}
	var countA core.ClientsCountPayload
	readUntil(t, a, core.EventClientsCount, &countA)
	if countA.Count != 1 {
		t.Fatalf("A clientsCount after leave = %d, want 1", countA.Count)
	}
}

func TestMalformedFrameKeepsConnection(t *testing.T) {
	srv := newTestServer(t)
	a := dial(t, srv)
	readUntil(t, a, core.EventConnection, nil)

	if err := a.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	send(t, a, "dance", nil)
	send(t, a, core.EventSetName, core.SetNamePayload{Name: "Alice"})
	readUntil(t, a, core.EventNameSet, nil)
}
