package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/recruitprefs"
)

type streamMsg struct {
	Type      string                      `json:"type"`
	Mode      string                      `json:"mode"`
	Selection recruitprefs.SelectionState `json:"selection"`
}

func dialStream(t *testing.T, srv *httptest.Server, id string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/" + id + "/ws"
	return websocket.DefaultDialer.Dial(wsURL, header)
}

func readStream(t *testing.T, conn *websocket.Conn) streamMsg {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg streamMsg
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestSelectionStreamNotFound(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	_, resp, err := dialStream(t, srv, "nonexistent", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSelectionStreamPushesChanges(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	id := env.newSession(t)
	conn, _, err := dialStream(t, srv, id, nil)
	require.NoError(t, err)
	defer conn.Close()

	snap := readStream(t, conn)
	assert.Equal(t, "snapshot", snap.Type)
	assert.Equal(t, "primary", snap.Mode)
	assert.True(t, snap.Selection.IsEmpty())

	sess, err := env.sessions.Get(id)
	require.NoError(t, err)
	_, err = sess.Selector.SelectByID("technical")
	require.NoError(t, err)

	msg := readStream(t, conn)
	assert.Equal(t, "change", msg.Type)
	assert.Equal(t, "technical", msg.Selection.PrimaryID())

	sess.Reset()
	msg = readStream(t, conn)
	assert.Equal(t, "change", msg.Type)
	assert.True(t, msg.Selection.IsEmpty())
}

func TestSelectionStreamRejectsForeignOrigin(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	id := env.newSession(t)
	_, resp, err := dialStream(t, srv, id, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
