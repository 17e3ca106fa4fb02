package bridge

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/sunflower/internal/logging"
	"github.com/iburimskiy/sunflower/internal/pose"
)

func TestDecode(t *testing.T) {
	res, ok, err := decode([]byte(`{"type":"results","data":{"multiHandLandmarks":[[{"x":0.1,"y":0.2,"z":0.3}]]}}`))
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, res.Hands, 1)
	assert.Equal(t, pose.Landmark{X: 0.1, Y: 0.2, Z: 0.3}, res.Hands[0][0])
	assert.False(t, res.At.IsZero())

	res, ok, err = decode([]byte(`{"type":"results","data":{"multiHandLandmarks":[]}}`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, res.Hands)

	_, ok, err = decode([]byte(`{"type":"status","data":{"camera":"started"}}`))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = decode([]byte(`{"type":"nope"}`))
	assert.Error(t, err)

	_, _, err = decode([]byte(`not json`))
	assert.Error(t, err)
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func TestBridgeForwardsResults(t *testing.T) {
	s := New(Config{Options: pose.DefaultOptions(), Width: 640, Height: 480}, logging.Discard())
	results := make(chan pose.Result, 4)
	s.onResult = func(r pose.Result) { results <- r }

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialWS(t, ts.URL)
	defer conn.Close()

	env := readEnvelope(t, conn)
	assert.Equal(t, "options", env.Type)
	var got captureSettings
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 1, got.MaxHands)
	assert.Equal(t, 0.75, got.MinDetectionConfidence)
	assert.Equal(t, 640, got.Width)

	hand := make([]pose.Landmark, pose.HandLandmarks)
	hand[pose.IndexFingerTip] = pose.Landmark{X: 0.5, Y: 0.5}
	data, _ := json.Marshal(map[string]any{"multiHandLandmarks": [][]pose.Landmark{hand}})
	msg, _ := json.Marshal(envelope{Type: "results", Data: data})

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`garbage`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))

	select {
	case r := <-results:
		tip, ok := r.Fingertip()
		require.True(t, ok)
		assert.Equal(t, 0.5, tip.X)
	case <-time.After(2 * time.Second):
		t.Fatal("no result forwarded")
	}
}

func TestBridgeServesPage(t *testing.T) {
	s := New(Config{}, logging.Discard())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestStartReportsBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := New(Config{Addr: ln.Addr().String()}, logging.Discard())
	err = s.Start(context.Background(), func(pose.Result) {})
	assert.Error(t, err)
	assert.Nil(t, s.Addr())
}

func TestStartAndShutdown(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0", Options: pose.DefaultOptions()}, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	results := make(chan pose.Result, 1)
	require.NoError(t, s.Start(ctx, func(r pose.Result) { results <- r }))
	addr := s.Addr()
	require.NotNil(t, addr)

	conn := dialWS(t, "http://"+addr.String())
	defer conn.Close()
	assert.Equal(t, "options", readEnvelope(t, conn).Type)

	cancel()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection closed on shutdown")
}
