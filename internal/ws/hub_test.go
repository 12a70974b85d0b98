package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameRecorder struct {
	frames chan Frame
	users  chan string
}

func (r *frameRecorder) HandleFrame(userID string, frame Frame) {
	r.users <- userID
	r.frames <- frame
}

func startHub(t *testing.T, redisClient *redis.Client) (*Hub, *httptest.Server) {
	hub, srv, _ := startHubWithFrames(t, redisClient)
	return hub, srv
}

func startHubWithFrames(t *testing.T, redisClient *redis.Client) (*Hub, *httptest.Server, *frameRecorder) {
	t.Helper()
	rec := &frameRecorder{frames: make(chan Frame, 8), users: make(chan string, 8)}
	hub := NewHub(redisClient)
	go hub.Run()
	t.Cleanup(hub.Stop)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("user"), rec)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return hub, srv, rec
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHubDeliversToUserOnly(t *testing.T) {
	hub, srv := startHub(t, nil)
	alice := dial(t, srv, "alice")
	dial(t, srv, "bob")
	require.Eventually(t, func() bool { return hub.ClientCount("alice") == 1 && hub.ClientCount("bob") == 1 }, time.Second, 5*time.Millisecond)

	key, err := domain.NewConversationKey("42", "7")
	require.NoError(t, err)
	hub.NotifyMessage("alice", key, domain.Message{ID: "5", Text: "hi", Sender: domain.SenderSelf, Timestamp: 1})

	ev := readEvent(t, alice)
	assert.Equal(t, "message", ev.Type)
	payload := ev.Payload.(map[string]interface{})
	assert.Equal(t, "chat_42_7", payload["conversation"])
	assert.Equal(t, "hi", payload["message"].(map[string]interface{})["text"])
}

func TestHubThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hub, srv := startHub(t, client)
	conn := dial(t, srv, "alice")
	require.Eventually(t, func() bool { return hub.ClientCount("alice") == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return mr.PubSubNumSub(redisPubSubChannel)[redisPubSubChannel] == 1 }, time.Second, 5*time.Millisecond)

	hub.SendToUser("alice", &Event{Type: "message", Payload: "x"})

	ev := readEvent(t, conn)
	assert.Equal(t, "x", ev.Payload)
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub, srv := startHub(t, nil)
	conn := dial(t, srv, "alice")
	require.Eventually(t, func() bool { return hub.ClientCount("alice") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount("alice") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestClientDispatchesFrames(t *testing.T) {
	_, srv, rec := startHubWithFrames(t, nil)
	conn := dial(t, srv, "alice")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(Frame{Type: FrameCompose, Conversation: "chat_42_7", Text: "hel"}))

	select {
	case frame := <-rec.frames:
		assert.Equal(t, "alice", <-rec.users)
		assert.Equal(t, Frame{Type: FrameCompose, Conversation: "chat_42_7", Text: "hel"}, frame)
	case <-time.After(2 * time.Second):
		t.Fatal("frame not dispatched")
	}
}
