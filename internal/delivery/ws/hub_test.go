package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/media-api/internal/models"
	"github.com/Vovarama1992/media-api/internal/ports"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const mediaID = "67eb6236-f78d-402f-a044-69b4d2909873"

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	log := logger.NewZapLogger(zap.NewNop().Sugar())
	hub := NewHub(log)
	srv := httptest.NewServer(Handler(hub, log))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, hub *Hub, srv *httptest.Server, room string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })

	waitFor(t, func() bool { return hub.RoomSize(room) > 0 })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func readEvent(t *testing.T, conn *websocket.Conn) eventMessage {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Event   ports.MediaEventKind `json:"event"`
		MediaID string               `json:"mediaId"`
		Data    json.RawMessage      `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return eventMessage{Event: msg.Event, MediaID: msg.MediaID, Data: msg.Data}
}

func TestHub_PublishToAllAndMediaRoom(t *testing.T) {
	hub, srv := newTestHub(t)

	all := dial(t, hub, srv, RoomAll)
	one := dial(t, hub, srv, mediaID)

	hub.Publish(ports.MediaEvent{
		Kind:    ports.MediaCreated,
		MediaID: mediaID,
		Media:   &models.Media{ID: mediaID, Title: "Sulaa", Status: models.StatusActive},
	})

	for _, conn := range []*websocket.Conn{all, one} {
		ev := readEvent(t, conn)
		if ev.Event != ports.MediaCreated || ev.MediaID != mediaID {
			t.Errorf("event = %+v", ev)
		}
		if !strings.Contains(string(ev.Data.(json.RawMessage)), `"title":"Sulaa"`) {
			t.Errorf("data = %s", ev.Data)
		}
	}
}

func TestHub_DeletedEventHasEmptyData(t *testing.T) {
	hub, srv := newTestHub(t)
	all := dial(t, hub, srv, RoomAll)

	hub.Publish(ports.MediaEvent{Kind: ports.MediaDeleted, MediaID: mediaID})

	ev := readEvent(t, all)
	if ev.Event != ports.MediaDeleted {
		t.Errorf("event = %q", ev.Event)
	}
	if got := string(ev.Data.(json.RawMessage)); got != "{}" {
		t.Errorf("data = %s, want {}", got)
	}
}

func TestHub_OtherRoomsDoNotReceive(t *testing.T) {
	hub, srv := newTestHub(t)

	other := dial(t, hub, srv, "11111111-1111-1111-1111-111111111111")
	hub.Publish(ports.MediaEvent{Kind: ports.MediaUpdated, MediaID: mediaID})

	_ = other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("client in another room received an event")
	}
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, srv := newTestHub(t)

	conn := dial(t, hub, srv, RoomAll)
	conn.Close()

	waitFor(t, func() bool { return hub.RoomSize(RoomAll) == 0 })
}

func TestHandler_RejectsInvalidRoom(t *testing.T) {
	_, srv := newTestHub(t)

	resp, err := http.Get(srv.URL + "?room=not-a-uuid")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	var env models.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if env.Status != models.OperationError {
		t.Errorf("envelope = %+v", env)
	}
}
