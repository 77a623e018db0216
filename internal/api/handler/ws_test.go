package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lovechat/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dial(t *testing.T, ts *testServer, srv *httptest.Server, user, peer string) *websocket.Conn {
	t.Helper()
	token, err := ts.handler.Auth.GenerateToken(user)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/hubs/message?user=" + peer + "&access_token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads events until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) wireEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var ev wireEvent
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Type == typ {
			return ev
		}
	}
}

func TestWebSocket_ConnectAndSend(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	ann := dial(t, ts, srv, "ann", "bob")
	readUntil(t, ann, models.EventThreadSnapshot)

	require.NoError(t, ann.WriteJSON(models.ClientCommand{
		Type:              models.CommandSendMessage,
		RecipientUsername: "bob",
		Content:           "hi",
	}))

	ev := readUntil(t, ann, models.EventMessageCreated)
	var msg models.Message
	require.NoError(t, json.Unmarshal(ev.Payload, &msg))
	assert.Equal(t, "hi", msg.Content)
	assert.Nil(t, msg.DateRead, "bob is offline")

	bob := dial(t, ts, srv, "bob", "ann")
	ev = readUntil(t, bob, models.EventThreadSnapshot)
	var snapshot []models.Message
	require.NoError(t, json.Unmarshal(ev.Payload, &snapshot))
	require.Len(t, snapshot, 1)
	assert.NotNil(t, snapshot[0].DateRead)
}

func TestWebSocket_SelfThreadRejected(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	conn := dial(t, ts, srv, "ann", "ann")
	ev := readUntil(t, conn, models.EventError)

	var payload models.ErrorPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "invalid_operation", payload.Code)
	assert.Equal(t, "You cannot open a chat with yourself.", payload.Message)
}

func TestWebSocket_RequiresToken(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/hubs/message?user=bob"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
