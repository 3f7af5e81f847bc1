package chat

import (
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"WChat/tools/security"
)

var testJWT = security.DefaultOptions([]byte("gateway-test-secret"))

func newTestGateway(t *testing.T) (*Gateway, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw := NewGateway(NewMemoryRegistry(), GatewayConf{JWT: testJWT})
	r := gin.New()
	r.GET("/ws", gw.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return gw, srv
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	c, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func readEvent(t *testing.T, c *websocket.Conn, event string) *Frame {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, c.SetReadDeadline(deadline))
		_, raw, err := c.ReadMessage()
		require.NoError(t, err, "waiting for event %q", event)
		f, perr := ParseFrameJSON(raw)
		require.NoError(t, perr)
		if f.Event == event {
			return f
		}
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// waitOnlineUsers reads frames until an online-users snapshot matching
// want arrives. Intermediate snapshots are allowed; presence broadcasts
// are not coalesced.
func waitOnlineUsers(t *testing.T, c *websocket.Conn, want []string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var last []string
	for time.Now().Before(deadline) {
		_ = c.SetReadDeadline(deadline)
		_, raw, err := c.ReadMessage()
		if err != nil {
			break
		}
		f, perr := ParseFrameJSON(raw)
		if perr != nil || f.Event != EventOnlineUsers {
			continue
		}
		var users []string
		if json.Unmarshal(f.Data, &users) != nil {
			continue
		}
		last = users
		if sameSet(users, want) {
			return
		}
	}
	t.Fatalf("online-users never reached %v, last saw %v", want, last)
}

// expectNoEvent asserts the event does not arrive within the window.
func expectNoEvent(t *testing.T, c *websocket.Conn, event string) {
	t.Helper()
	deadline := time.Now().Add(300 * time.Millisecond)
	for {
		_ = c.SetReadDeadline(deadline)
		_, raw, err := c.ReadMessage()
		if err != nil {
			return // timeout or close, either way the event never came
		}
		f, perr := ParseFrameJSON(raw)
		if perr == nil && f.Event == event {
			t.Fatalf("unexpected event %q: %s", event, f.Data)
		}
	}
}

func TestHandshakeWithoutUserID(t *testing.T) {
	gw, srv := newTestGateway(t)

	c := dialWS(t, srv, "")
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := c.ReadMessage()
	require.Error(t, err, "connection without userId must be torn down")

	require.Empty(t, gw.Registry().ListOnline())
	require.Equal(t, 0, gw.Conns().Len())
}

func TestHandshakeBadToken(t *testing.T) {
	gw, srv := newTestGateway(t)

	// token signed for a different subject than the claimed userId
	otherTok, _, _, err := security.Generate(testJWT, "u2", nil)
	require.NoError(t, err)

	c := dialWS(t, srv, "?userId=u1&token="+otherTok)
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, rerr := c.ReadMessage()
	require.Error(t, rerr)
	require.Empty(t, gw.Registry().ListOnline())

	c2 := dialWS(t, srv, "?userId=u1&token=garbage")
	_ = c2.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, rerr = c2.ReadMessage()
	require.Error(t, rerr)
	require.Empty(t, gw.Registry().ListOnline())
}

func TestHandshakeValidToken(t *testing.T) {
	gw, srv := newTestGateway(t)

	tok, _, _, err := security.Generate(testJWT, "u1", nil)
	require.NoError(t, err)

	c := dialWS(t, srv, "?userId=u1&token="+tok)
	waitOnlineUsers(t, c, []string{"u1"})

	_, ok := gw.Registry().Lookup("u1")
	require.True(t, ok)
}

func TestPresenceBroadcasts(t *testing.T) {
	gw, srv := newTestGateway(t)

	a := dialWS(t, srv, "?userId=alice")
	waitOnlineUsers(t, a, []string{"alice"})

	b := dialWS(t, srv, "?userId=bob")
	waitOnlineUsers(t, b, []string{"alice", "bob"})
	waitOnlineUsers(t, a, []string{"alice", "bob"})

	// bob drops; every remaining connection gets the shrunken snapshot
	require.NoError(t, b.Close())
	waitOnlineUsers(t, a, []string{"alice"})

	require.Eventually(t, func() bool {
		_, ok := gw.Registry().Lookup("bob")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestEmitToUserOfflineIsSilent(t *testing.T) {
	gw, srv := newTestGateway(t)

	a := dialWS(t, srv, "?userId=alice")
	waitOnlineUsers(t, a, []string{"alice"})

	gw.EmitToUser("nobody", EventNewMessage, "hi")
	expectNoEvent(t, a, EventNewMessage)
}

func TestTypingRelay(t *testing.T) {
	_, srv := newTestGateway(t)

	a := dialWS(t, srv, "?userId=alice")
	waitOnlineUsers(t, a, []string{"alice"})
	b := dialWS(t, srv, "?userId=bob")
	waitOnlineUsers(t, b, []string{"alice", "bob"})

	frame := `{"event":"typing","data":{"senderId":"alice","receiverId":"bob"}}`
	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(frame)))

	f := readEvent(t, b, EventTyping)
	var sender string
	require.NoError(t, json.Unmarshal(f.Data, &sender))
	require.Equal(t, "alice", sender)

	frame = `{"event":"stop-typing","data":{"senderId":"alice","receiverId":"bob"}}`
	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(frame)))
	f = readEvent(t, b, EventStopTyping)
	require.NoError(t, json.Unmarshal(f.Data, &sender))
	require.Equal(t, "alice", sender)
}

func TestTypingWithoutReceiverIgnored(t *testing.T) {
	_, srv := newTestGateway(t)

	a := dialWS(t, srv, "?userId=alice")
	waitOnlineUsers(t, a, []string{"alice"})
	b := dialWS(t, srv, "?userId=bob")
	waitOnlineUsers(t, b, []string{"alice", "bob"})

	require.NoError(t, a.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"typing","data":{"senderId":"alice"}}`)))
	expectNoEvent(t, b, EventTyping)
}

func TestSecondConnectionWins(t *testing.T) {
	gw, srv := newTestGateway(t)

	tab1 := dialWS(t, srv, "?userId=alice")
	waitOnlineUsers(t, tab1, []string{"alice"})
	tab2 := dialWS(t, srv, "?userId=alice")
	waitOnlineUsers(t, tab2, []string{"alice"})

	// targeted events land on the newest registration only
	gw.EmitToUser("alice", EventNewMessage, "ping")
	f := readEvent(t, tab2, EventNewMessage)
	var body string
	require.NoError(t, json.Unmarshal(f.Data, &body))
	require.Equal(t, "ping", body)
	expectNoEvent(t, tab1, EventNewMessage)

	// the stale tab closing must not evict the newer registration
	require.NoError(t, tab1.Close())
	require.Eventually(t, func() bool {
		return gw.Conns().Len() == 1
	}, 2*time.Second, 20*time.Millisecond)
	_, ok := gw.Registry().Lookup("alice")
	require.True(t, ok)

	gw.EmitToUser("alice", EventNewMessage, "pong")
	f = readEvent(t, tab2, EventNewMessage)
	require.NoError(t, json.Unmarshal(f.Data, &body))
	require.Equal(t, "pong", body)
}

func TestBroadcastAll(t *testing.T) {
	gw, srv := newTestGateway(t)

	a := dialWS(t, srv, "?userId=alice")
	waitOnlineUsers(t, a, []string{"alice"})
	b := dialWS(t, srv, "?userId=bob")
	waitOnlineUsers(t, b, []string{"alice", "bob"})

	gw.BroadcastAll(EventUserDeleted, "carol")
	for _, c := range []*websocket.Conn{a, b} {
		f := readEvent(t, c, EventUserDeleted)
		var id string
		require.NoError(t, json.Unmarshal(f.Data, &id))
		require.Equal(t, "carol", id)
	}
}
