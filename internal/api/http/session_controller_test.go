package http_test

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	httpapi "github.com/immxrtalbeast/vibe_chat/internal/api/http"
	"github.com/immxrtalbeast/vibe_chat/internal/domain"
	"github.com/immxrtalbeast/vibe_chat/internal/repository"
	"github.com/immxrtalbeast/vibe_chat/internal/service"
	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func startServer(t *testing.T, offerDelay time.Duration) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := testLogger()
	rooms := service.NewRoomService(repository.NewInMemoryRoomRepository(), offerDelay, log)
	sessions := service.NewSessionService(repository.NewInMemoryUserRepository(), rooms, log)

	router := httpapi.SetupRouter(
		httpapi.NewSessionController(sessions, log),
		httpapi.NewStatsController(sessions, rooms),
		[]string{"http://localhost:5173"},
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, name string) *websocket.Conn {
	t.Helper()
	url := strings.Replace(srv.URL, "http", "ws", 1) + "/ws?name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) domain.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev domain.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestConnect_FullExchange(t *testing.T) {
	srv := startServer(t, 40*time.Millisecond)

	alice := dial(t, srv, "alice")
	ev := readEvent(t, alice)
	assert.Equal(t, domain.EventLobby, ev.Type)

	bob := dial(t, srv, "bob")
	ev = readEvent(t, bob)
	assert.Equal(t, domain.EventLobby, ev.Type)

	ev = readEvent(t, alice)
	require.Equal(t, domain.EventRoomReady, ev.Type)
	assert.Equal(t, "1", ev.RoomID)

	ev = readEvent(t, bob)
	require.Equal(t, domain.EventRoomReady, ev.Type)
	assert.Equal(t, "1", ev.RoomID)

	// The delayed task tells alice, popped first, to make the offer.
	ev = readEvent(t, alice)
	require.Equal(t, domain.EventSendOffer, ev.Type)
	assert.Equal(t, "1", ev.RoomID)

	offerSDP := "v=0\r\no=- 42 2 IN IP4 127.0.0.1\r\ns=-"
	require.NoError(t, alice.WriteJSON(domain.Event{Type: domain.EventOffer, RoomID: "1", SDP: offerSDP}))

	ev = readEvent(t, bob)
	require.Equal(t, domain.EventOffer, ev.Type)
	assert.Equal(t, offerSDP, ev.SDP)
	assert.Equal(t, "1", ev.RoomID)

	answerSDP := "v=0\r\no=- 43 2 IN IP4 127.0.0.1\r\ns=-"
	require.NoError(t, bob.WriteJSON(domain.Event{Type: domain.EventAnswer, RoomID: "1", SDP: answerSDP}))

	ev = readEvent(t, alice)
	require.Equal(t, domain.EventAnswer, ev.Type)
	assert.Equal(t, answerSDP, ev.SDP)
	assert.NotEmpty(t, ev.SenderID)

	candidate := &webrtc.ICECandidateInit{Candidate: "candidate:0 1 UDP 2122252543 192.0.2.1 55555 typ host"}
	require.NoError(t, alice.WriteJSON(domain.Event{Type: domain.EventAddICECandidate, RoomID: "1", Candidate: candidate}))

	ev = readEvent(t, bob)
	require.Equal(t, domain.EventAddICECandidate, ev.Type)
	require.NotNil(t, ev.Candidate)
	assert.Equal(t, candidate.Candidate, ev.Candidate.Candidate)
	assert.NotEmpty(t, ev.SenderID)

	require.NoError(t, alice.WriteJSON(domain.Event{Type: domain.EventChatMessage, RoomID: "1", Message: "hi bob"}))

	ev = readEvent(t, bob)
	require.Equal(t, domain.EventReceiveMessage, ev.Type)
	assert.Equal(t, "hi bob", ev.Message)

	// bob leaves; alice hears about it and is re-queued.
	require.NoError(t, bob.Close())

	ev = readEvent(t, alice)
	assert.Equal(t, domain.EventUserDisconnected, ev.Type)

	carol := dial(t, srv, "carol")
	ev = readEvent(t, carol)
	assert.Equal(t, domain.EventLobby, ev.Type)

	ev = readEvent(t, alice)
	require.Equal(t, domain.EventRoomReady, ev.Type)
	assert.Equal(t, "2", ev.RoomID)

	ev = readEvent(t, carol)
	require.Equal(t, domain.EventRoomReady, ev.Type)
	assert.Equal(t, "2", ev.RoomID)
}

func TestConnect_NextUserRotatesPartners(t *testing.T) {
	srv := startServer(t, time.Hour)

	// Reading the lobby ack after each dial pins the registration order.
	x := dial(t, srv, "x")
	ev := readEvent(t, x)
	require.Equal(t, domain.EventLobby, ev.Type)
	y := dial(t, srv, "y")
	ev = readEvent(t, y)
	require.Equal(t, domain.EventLobby, ev.Type)

	for _, conn := range []*websocket.Conn{x, y} {
		ev = readEvent(t, conn)
		require.Equal(t, domain.EventRoomReady, ev.Type)
		require.Equal(t, "1", ev.RoomID)
	}

	z := dial(t, srv, "z")
	ev = readEvent(t, z)
	require.Equal(t, domain.EventLobby, ev.Type)

	require.NoError(t, x.WriteJSON(domain.Event{Type: domain.EventNextUser, RoomID: "1"}))

	// y is queued before x, so y pairs with the waiting z.
	ev = readEvent(t, y)
	require.Equal(t, domain.EventUserDisconnected, ev.Type)
	ev = readEvent(t, y)
	require.Equal(t, domain.EventRoomReady, ev.Type)
	assert.Equal(t, "2", ev.RoomID)

	ev = readEvent(t, z)
	require.Equal(t, domain.EventRoomReady, ev.Type)
	assert.Equal(t, "2", ev.RoomID)
}

func TestConnect_InvalidFramesAreDropped(t *testing.T) {
	srv := startServer(t, time.Hour)

	a := dial(t, srv, "a")
	ev := readEvent(t, a)
	require.Equal(t, domain.EventLobby, ev.Type)
	b := dial(t, srv, "b")
	ev = readEvent(t, b)
	require.Equal(t, domain.EventLobby, ev.Type)

	for _, conn := range []*websocket.Conn{a, b} {
		ev = readEvent(t, conn)
		require.Equal(t, domain.EventRoomReady, ev.Type)
	}

	// Missing sdp: dropped at the gateway, never relayed.
	require.NoError(t, a.WriteJSON(domain.Event{Type: domain.EventOffer, RoomID: "1"}))
	// A valid frame right after still goes through.
	require.NoError(t, a.WriteJSON(domain.Event{Type: domain.EventOffer, RoomID: "1", SDP: "v=0"}))

	ev = readEvent(t, b)
	require.Equal(t, domain.EventOffer, ev.Type)
	assert.Equal(t, "v=0", ev.SDP)
}

func TestHealthz(t *testing.T) {
	srv := startServer(t, time.Hour)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
}

func TestStatsEndpoints(t *testing.T) {
	srv := startServer(t, time.Hour)

	a := dial(t, srv, "a")
	ev := readEvent(t, a)
	require.Equal(t, domain.EventLobby, ev.Type)
	b := dial(t, srv, "b")
	ev = readEvent(t, b)
	require.Equal(t, domain.EventLobby, ev.Type)
	c := dial(t, srv, "c")
	ev = readEvent(t, c)
	require.Equal(t, domain.EventLobby, ev.Type)

	resp, err := srv.Client().Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var stats struct {
		Stats struct {
			Users   int `json:"users"`
			Waiting int `json:"waiting"`
			Rooms   int `json:"rooms"`
		} `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 3, stats.Stats.Users)
	assert.Equal(t, 1, stats.Stats.Waiting)
	assert.Equal(t, 1, stats.Stats.Rooms)

	resp, err = srv.Client().Get(srv.URL + "/api/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var rooms struct {
		Rooms []struct {
			ID           string   `json:"id"`
			Participants []string `json:"participants"`
		} `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rooms))
	require.Len(t, rooms.Rooms, 1)
	assert.Equal(t, "1", rooms.Rooms[0].ID)
	assert.ElementsMatch(t, []string{"a", "b"}, rooms.Rooms[0].Participants)
}
